package model

const (
	ContentTypePaper   = "paper"
	ContentTypeVideo   = "video"
	ContentTypePodcast = "podcast"
)

// Document is a read-only record from the collection index. Rows are
// written by the ingestion side; this service never mutates them except
// for backfilling missing embedding vectors.
type Document struct {
	ID              string            `json:"id"`
	ContentType     string            `json:"content_type"`
	Title           string            `json:"title"`
	Abstract        string            `json:"abstract,omitempty"`
	Content         string            `json:"content,omitempty"`
	Transcript      string            `json:"transcript,omitempty"`
	Authors         []string          `json:"authors,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty"`
	URL             string            `json:"url,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Ctime           int64             `json:"ctime"`
	Mtime           int64             `json:"mtime"`
}

// PrimaryText returns the field used for context rendering: papers
// prefer content then abstract, recordings prefer the transcript.
func (d *Document) PrimaryText() string {
	switch {
	case d.Content != "":
		return d.Content
	case d.Transcript != "":
		return d.Transcript
	default:
		return d.Abstract
	}
}

// EmbeddingText is what gets embedded for the vector index. Mixing the
// title in improves recall for short documents.
func (d *Document) EmbeddingText() string {
	text := d.PrimaryText()
	if len(text) > 1000 {
		text = text[:1000]
	}
	return d.Title + "\n" + text
}
