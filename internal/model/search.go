package model

// RankedHit is a raw (document, score) pair as returned by one side of
// the index: ts_rank for the lexical side, cosine similarity for the
// semantic side.
type RankedHit struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
}

// SearchHit is a merged candidate. Combined is always in [0,1];
// LexicalScore and SemanticScore keep the per-source normalized values
// that produced it.
type SearchHit struct {
	DocumentID    string  `json:"document_id"`
	LexicalScore  float64 `json:"lexical_score"`
	SemanticScore float64 `json:"semantic_score"`
	Combined      float64 `json:"combined"`
}

// ContextEntry is one enumerated source in the generation prompt.
// Ordinals are contiguous starting at 1 and match the [Source N]
// markers the model is instructed to emit.
type ContextEntry struct {
	Ordinal     int       `json:"ordinal"`
	DocumentID  string    `json:"document_id"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	URL         string    `json:"url,omitempty"`
	Hit         SearchHit `json:"hit"`
}
