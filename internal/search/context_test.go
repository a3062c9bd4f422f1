package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mrag/internal/model"
)

func testDocs() map[string]model.Document {
	return map[string]model.Document{
		"p1": {
			ID:          "p1",
			ContentType: model.ContentTypePaper,
			Title:       "Attention Is All You Need",
			Abstract:    "The dominant sequence transduction models are based on recurrent networks.",
			Authors:     []string{"Vaswani", "Shazeer"},
		},
		"v1": {
			ID:          "v1",
			ContentType: model.ContentTypeVideo,
			Title:       "Transformers Explained",
			Transcript:  "welcome back everyone today we talk about attention mechanisms in detail",
		},
	}
}

func TestBuildContext_OrdinalsContiguous(t *testing.T) {
	hits := []model.SearchHit{
		{DocumentID: "p1", Combined: 0.9},
		{DocumentID: "v1", Combined: 0.5},
	}
	entries, rendered := BuildContext(hits, testDocs(), 500)
	require.Len(t, entries, 2)
	for i, entry := range entries {
		require.Equal(t, i+1, entry.Ordinal)
	}
	require.Contains(t, rendered, "Source 1 (paper): Attention Is All You Need")
	require.Contains(t, rendered, "Source 2 (video): Transformers Explained")
	require.Contains(t, rendered, "Authors: Vaswani, Shazeer")
}

func TestBuildContext_MissingDocumentLeavesNoGap(t *testing.T) {
	hits := []model.SearchHit{
		{DocumentID: "p1"},
		{DocumentID: "gone"},
		{DocumentID: "v1"},
	}
	entries, rendered := BuildContext(hits, testDocs(), 500)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Ordinal)
	require.Equal(t, 2, entries[1].Ordinal)
	require.Equal(t, "v1", entries[1].DocumentID)
	require.NotContains(t, rendered, "Source 3")
}

func TestBuildContext_TruncatesSnippets(t *testing.T) {
	docs := map[string]model.Document{
		"p1": {
			ID:          "p1",
			ContentType: model.ContentTypePaper,
			Title:       "Long",
			Content:     strings.Repeat("x", 1000),
		},
	}
	entries, _ := BuildContext([]model.SearchHit{{DocumentID: "p1"}}, docs, 100)
	require.Len(t, entries, 1)
	require.Equal(t, strings.Repeat("x", 100)+"...", entries[0].Snippet)
}

func TestBuildContext_Empty(t *testing.T) {
	entries, rendered := BuildContext(nil, testDocs(), 500)
	require.Empty(t, entries)
	require.Equal(t, NoSourcesText, rendered)

	entries, rendered = BuildContext([]model.SearchHit{{DocumentID: "gone"}}, testDocs(), 500)
	require.Empty(t, entries)
	require.Equal(t, NoSourcesText, rendered)
}
