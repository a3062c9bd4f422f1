package service

import (
	"strings"
	"testing"

	"github.com/xxxsen/mrag/internal/model"
)

func TestFormatBibTeX(t *testing.T) {
	doc := model.Document{
		ID:              "arxiv-1706.03762",
		ContentType:     model.ContentTypePaper,
		Title:           "Attention Is All You Need",
		Authors:         []string{"Ashish Vaswani", "Noam Shazeer"},
		PublicationDate: "2017-06-12",
		URL:             "https://arxiv.org/abs/1706.03762",
	}
	got := formatBibTeX(doc)
	for _, want := range []string{
		"@article{arxiv_1706_03762,",
		"title = {Attention Is All You Need}",
		"author = {Ashish Vaswani and Noam Shazeer}",
		"year = {2017}",
		"url = {https://arxiv.org/abs/1706.03762}",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("bibtex entry missing %q:\n%s", want, got)
		}
	}
}

func TestFormatAPA(t *testing.T) {
	cases := []struct {
		name string
		doc  model.Document
		want string
	}{
		{
			name: "full",
			doc: model.Document{
				Title:           "Attention Is All You Need",
				Authors:         []string{"Vaswani, A.", "Shazeer, N."},
				PublicationDate: "2017-06-12",
				URL:             "https://arxiv.org/abs/1706.03762",
			},
			want: "Vaswani, A., Shazeer, N. (2017). Attention Is All You Need. https://arxiv.org/abs/1706.03762",
		},
		{
			name: "no author no date",
			doc:  model.Document{Title: "Untitled Notes"},
			want: "Unknown (n.d.). Untitled Notes.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatAPA(tc.doc); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPublicationYear(t *testing.T) {
	cases := map[string]string{
		"2017-06-12": "2017",
		"2020":       "2020",
		"n.d.":       "",
		"":           "",
		"20x0-01-01": "",
	}
	for input, want := range cases {
		if got := publicationYear(input); got != want {
			t.Fatalf("publicationYear(%q) = %q, want %q", input, got, want)
		}
	}
}
