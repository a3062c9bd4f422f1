package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/mrag/internal/model"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
	"github.com/xxxsen/mrag/internal/repo"
)

const (
	BibliographyFormatBibTeX = "bibtex"
	BibliographyFormatAPA    = "apa"
)

type CitationReport struct {
	CitedByType map[string]int64      `json:"cited_by_type"`
	MostCited   []model.CitedSource   `json:"most_cited"`
	Recent      []model.CitationUsage `json:"recent"`
}

// CitationService tracks which sources answers actually cite and
// turns the usage log into reports and bibliographies.
type CitationService struct {
	citations *repo.CitationRepo
	documents *repo.DocumentRepo
}

func NewCitationService(citations *repo.CitationRepo, documents *repo.DocumentRepo) *CitationService {
	return &CitationService{citations: citations, documents: documents}
}

// Record appends one usage row per cited source. Occurrence counts
// within a single answer do not multiply rows; a citation is one use.
func (s *CitationService) Record(ctx context.Context, query string, citations []model.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	now := time.Now().Unix()
	usages := make([]model.CitationUsage, 0, len(citations))
	for _, c := range citations {
		usages = append(usages, model.CitationUsage{
			DocumentID:  c.DocumentID,
			ContentType: c.ContentType,
			Title:       c.Title,
			URL:         c.URL,
			Query:       query,
			Ctime:       now,
		})
	}
	return s.citations.RecordUsage(ctx, usages)
}

func (s *CitationService) Report(ctx context.Context, topLimit, recentLimit int) (*CitationReport, error) {
	if topLimit <= 0 {
		topLimit = 10
	}
	if recentLimit <= 0 {
		recentLimit = 10
	}
	byType, err := s.citations.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	mostCited, err := s.citations.MostCited(ctx, topLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.citations.Recent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	return &CitationReport{
		CitedByType: byType,
		MostCited:   mostCited,
		Recent:      recent,
	}, nil
}

// Bibliography formats every paper ever cited, in the requested
// citation style. Only papers carry enough structure to cite formally;
// videos and podcasts are excluded.
func (s *CitationService) Bibliography(ctx context.Context, format string) (string, error) {
	ids, err := s.citations.CitedDocumentIDs(ctx, model.ContentTypePaper)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	docs, err := s.documents.ListByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	entries := make([]string, 0, len(docs))
	switch format {
	case BibliographyFormatBibTeX:
		for _, doc := range docs {
			entries = append(entries, formatBibTeX(doc))
		}
	case BibliographyFormatAPA:
		for _, doc := range docs {
			entries = append(entries, formatAPA(doc))
		}
	default:
		return "", fmt.Errorf("%w: unsupported bibliography format: %s", appErr.ErrInvalid, format)
	}
	return strings.Join(entries, "\n\n"), nil
}

func formatBibTeX(doc model.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@article{%s,\n", bibKey(doc))
	fmt.Fprintf(&sb, "  title = {%s},\n", doc.Title)
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&sb, "  author = {%s},\n", strings.Join(doc.Authors, " and "))
	}
	if year := publicationYear(doc.PublicationDate); year != "" {
		fmt.Fprintf(&sb, "  year = {%s},\n", year)
	}
	if doc.URL != "" {
		fmt.Fprintf(&sb, "  url = {%s},\n", doc.URL)
	}
	sb.WriteString("}")
	return sb.String()
}

func formatAPA(doc model.Document) string {
	var sb strings.Builder
	if len(doc.Authors) > 0 {
		sb.WriteString(strings.Join(doc.Authors, ", "))
	} else {
		sb.WriteString("Unknown")
	}
	if year := publicationYear(doc.PublicationDate); year != "" {
		fmt.Fprintf(&sb, " (%s).", year)
	} else {
		sb.WriteString(" (n.d.).")
	}
	fmt.Fprintf(&sb, " %s.", doc.Title)
	if doc.URL != "" {
		fmt.Fprintf(&sb, " %s", doc.URL)
	}
	return sb.String()
}

// bibKey builds a citation key from the document id, keeping only
// characters BibTeX accepts.
func bibKey(doc model.Document) string {
	var sb strings.Builder
	for _, r := range doc.ID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}

func publicationYear(date string) string {
	if len(date) >= 4 {
		year := date[:4]
		for _, r := range year {
			if r < '0' || r > '9' {
				return ""
			}
		}
		return year
	}
	return ""
}
