package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	rendererhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/xxxsen/mrag/internal/memory"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
)

// ExportService renders a session transcript as markdown or HTML.
type ExportService struct {
	sessions *memory.Store
	md       goldmark.Markdown
}

func NewExportService(sessions *memory.Store) *ExportService {
	return &ExportService{
		sessions: sessions,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererhtml.WithUnsafe()),
		),
	}
}

// TranscriptMarkdown renders the turns still held in memory for one
// session. Only the bounded recent window survives; evicted turns are
// gone.
func (s *ExportService) TranscriptMarkdown(sessionID string) (string, error) {
	conv, ok := s.sessions.Peek(sessionID)
	if !ok {
		return "", appErr.ErrNotFound
	}
	turns := conv.Recent(conv.Len())
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Session %s\n", sessionID)
	for _, turn := range turns {
		fmt.Fprintf(&sb, "\n## Turn %d\n\n", turn.Seq)
		fmt.Fprintf(&sb, "**Question:** %s\n\n", turn.Query)
		sb.WriteString(turn.Answer)
		sb.WriteString("\n")
		if len(turn.Citations) > 0 {
			sb.WriteString("\nSources cited:\n\n")
			for _, c := range turn.Citations {
				fmt.Fprintf(&sb, "- [Source %d] %s (%s)\n", c.Ordinal, c.Title, c.ContentType)
			}
		}
	}
	return sb.String(), nil
}

func (s *ExportService) TranscriptHTML(sessionID string) (string, error) {
	markdown, err := s.TranscriptMarkdown(sessionID)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
