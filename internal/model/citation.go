package model

// Citation is a resolved [Source N] marker from a generated answer.
type Citation struct {
	Ordinal     int    `json:"ordinal"`
	DocumentID  string `json:"document_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Occurrences int    `json:"occurrences"`
}

// CitationUsage is one row of the persisted citation history.
type CitationUsage struct {
	ID          int64  `json:"id"`
	DocumentID  string `json:"document_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Query       string `json:"query"`
	Ctime       int64  `json:"ctime"`
}

// CitedSource aggregates usage history per document.
type CitedSource struct {
	DocumentID  string `json:"document_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	UseCount    int64  `json:"use_count"`
	FirstUsed   int64  `json:"first_used"`
	LastUsed    int64  `json:"last_used"`
}
