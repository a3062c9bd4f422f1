package citation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mrag/internal/model"
)

func entries(n int) []model.ContextEntry {
	out := make([]model.ContextEntry, n)
	for i := range out {
		out[i] = model.ContextEntry{
			Ordinal:     i + 1,
			DocumentID:  string(rune('a' + i)),
			ContentType: model.ContentTypePaper,
			Title:       "title",
		}
	}
	return out
}

func TestExtract_CountsAndDropsOutOfRange(t *testing.T) {
	text := "First [Source 1], then [Source 3], again [Source 1], bogus [Source 7]."
	got := Extract(text, entries(3))

	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Ordinal)
	require.Equal(t, 2, got[0].Occurrences)
	require.Equal(t, 3, got[1].Ordinal)
	require.Equal(t, 1, got[1].Occurrences)
	require.Equal(t, 1, DroppedMarkers(text, 3))
}

func TestExtract_FirstOccurrenceOrder(t *testing.T) {
	text := "[Source 2] before [Source 1], and [Source 2] again"
	got := Extract(text, entries(2))
	require.Len(t, got, 2)
	require.Equal(t, 2, got[0].Ordinal)
	require.Equal(t, 1, got[1].Ordinal)
}

func TestExtract_IgnoresNonMarkers(t *testing.T) {
	text := "See [Vaswani, 2017] and [Source abc] and [source 1] and (Source 2)."
	require.Nil(t, Extract(text, entries(3)))
}

func TestExtract_ZeroOrdinalDropped(t *testing.T) {
	require.Nil(t, Extract("[Source 0]", entries(3)))
}

func TestExtract_NoEntries(t *testing.T) {
	require.Nil(t, Extract("[Source 1]", nil))
}

func TestExtract_Deterministic(t *testing.T) {
	text := "[Source 2] x [Source 1] y [Source 2] z [Source 3]"
	first := Extract(text, entries(3))
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Extract(text, entries(3)))
	}
}
