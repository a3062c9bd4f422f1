package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mrag/internal/memory"
	"github.com/xxxsen/mrag/internal/model"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
)

func TestTranscriptMarkdown(t *testing.T) {
	sessions := memory.NewStore(10, 16, time.Hour)
	conv := sessions.Get("s1")
	conv.Append("what is attention", "Attention weighs token pairs [Source 1].", []model.Citation{
		{Ordinal: 1, DocumentID: "doc-a", ContentType: model.ContentTypePaper, Title: "Attention Is All You Need"},
	})
	conv.Append("and multi-head", "It runs several attention heads in parallel.", nil)

	svc := NewExportService(sessions)
	markdown, err := svc.TranscriptMarkdown("s1")
	require.NoError(t, err)
	require.Contains(t, markdown, "# Session s1")
	require.Contains(t, markdown, "## Turn 1")
	require.Contains(t, markdown, "## Turn 2")
	require.Contains(t, markdown, "**Question:** what is attention")
	require.Contains(t, markdown, "- [Source 1] Attention Is All You Need (paper)")
}

func TestTranscriptHTML(t *testing.T) {
	sessions := memory.NewStore(10, 16, time.Hour)
	sessions.Get("s1").Append("q", "plain answer", nil)

	svc := NewExportService(sessions)
	html, err := svc.TranscriptHTML("s1")
	require.NoError(t, err)
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "plain answer")
}

func TestTranscriptUnknownSession(t *testing.T) {
	svc := NewExportService(memory.NewStore(10, 16, time.Hour))
	_, err := svc.TranscriptMarkdown("missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
