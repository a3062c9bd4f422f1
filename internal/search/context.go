package search

import (
	"fmt"
	"strings"

	"github.com/xxxsen/mrag/internal/model"
)

// NoSourcesText is the rendered context when retrieval produced
// nothing. The orchestrator short-circuits on it and never calls the
// generator.
const NoSourcesText = "No sources available."

// BuildContext renders merged hits into the enumerated source block
// fed to the generation prompt. Ordinals start at 1 with no gaps and
// match the [Source N] markers the model is told to emit. Hits whose
// document is missing from docs are skipped without leaving a gap.
func BuildContext(hits []model.SearchHit, docs map[string]model.Document, maxCharsPerSource int) ([]model.ContextEntry, string) {
	if len(hits) == 0 {
		return nil, NoSourcesText
	}
	entries := make([]model.ContextEntry, 0, len(hits))
	var sb strings.Builder
	for _, hit := range hits {
		doc, ok := docs[hit.DocumentID]
		if !ok {
			continue
		}
		snippet := truncate(doc.PrimaryText(), maxCharsPerSource)
		entry := model.ContextEntry{
			Ordinal:     len(entries) + 1,
			DocumentID:  doc.ID,
			ContentType: doc.ContentType,
			Title:       doc.Title,
			Snippet:     snippet,
			URL:         doc.URL,
			Hit:         hit,
		}
		entries = append(entries, entry)

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Source %d (%s): %s", entry.Ordinal, entry.ContentType, entry.Title)
		if len(doc.Authors) > 0 {
			fmt.Fprintf(&sb, "\nAuthors: %s", strings.Join(doc.Authors, ", "))
		}
		if doc.PublicationDate != "" {
			fmt.Fprintf(&sb, "\nPublished: %s", doc.PublicationDate)
		}
		fmt.Fprintf(&sb, "\nContent: %s", snippet)
	}
	if len(entries) == 0 {
		return nil, NoSourcesText
	}
	return entries, sb.String()
}

// truncate cuts at maxChars characters (runes, to not split a
// multi-byte sequence). No word-boundary protection.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}
