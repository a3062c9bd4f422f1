package citation

import (
	"regexp"
	"strconv"

	"github.com/xxxsen/mrag/internal/model"
)

// markerRegex is the whole citation grammar: a fixed prefix, a positive
// integer ordinal, a fixed suffix. Any other bracketed text in model
// output is simply not a marker.
var markerRegex = regexp.MustCompile(`\[Source\s+(\d+)\]`)

// Extract scans generated text for [Source N] markers and resolves
// them against the context entries of the same query. Ordinals outside
// 1..len(entries) are dropped; malformed model output must never fail
// a query. The result holds one Citation per distinct resolved
// ordinal, in order of first occurrence, with total occurrence counts.
// Output is deterministic for identical inputs.
func Extract(generatedText string, entries []model.ContextEntry) []model.Citation {
	matches := markerRegex.FindAllStringSubmatch(generatedText, -1)
	if len(matches) == 0 {
		return nil
	}
	counts := make(map[int]int, len(matches))
	order := make([]int, 0, len(matches))
	for _, m := range matches {
		ordinal, err := strconv.Atoi(m[1])
		if err != nil || ordinal < 1 || ordinal > len(entries) {
			continue
		}
		if counts[ordinal] == 0 {
			order = append(order, ordinal)
		}
		counts[ordinal]++
	}
	if len(order) == 0 {
		return nil
	}
	out := make([]model.Citation, 0, len(order))
	for _, ordinal := range order {
		entry := entries[ordinal-1]
		out = append(out, model.Citation{
			Ordinal:     ordinal,
			DocumentID:  entry.DocumentID,
			ContentType: entry.ContentType,
			Title:       entry.Title,
			URL:         entry.URL,
			Occurrences: counts[ordinal],
		})
	}
	return out
}

// DroppedMarkers counts markers that referenced ordinals outside the
// context; the orchestrator logs this at debug level.
func DroppedMarkers(generatedText string, entryCount int) int {
	dropped := 0
	for _, m := range markerRegex.FindAllStringSubmatch(generatedText, -1) {
		ordinal, err := strconv.Atoi(m[1])
		if err != nil || ordinal < 1 || ordinal > entryCount {
			dropped++
		}
	}
	return dropped
}
