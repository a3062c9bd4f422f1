package model

// ConversationTurn is one completed (query, answer) exchange. Immutable
// once appended to a session.
type ConversationTurn struct {
	Seq       int        `json:"seq"`
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
	Ctime     int64      `json:"ctime"`
}

// QueryResult is the terminal output of one orchestrated query.
type QueryResult struct {
	Answer         string         `json:"answer"`
	Citations      []Citation     `json:"citations"`
	Sources        []ContextEntry `json:"sources,omitempty"`
	RelatedQueries []string       `json:"related_queries,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	NoSources      bool           `json:"no_sources,omitempty"`
}
