package search

import (
	"sort"

	"github.com/xxxsen/mrag/internal/model"
)

// Merge combines one lexical and one semantic result list into a single
// ranking. Scores are min-max normalized per source so the engine's
// unbounded ts_rank values and the bounded cosine similarities become
// comparable, then combined as alpha*lexical + (1-alpha)*semantic.
// A document present in only one list scores 0 on the missing side.
// Ordering is deterministic: combined score descending, ties broken by
// the document's position in the lexical list, then the semantic list.
func Merge(lexical, semantic []model.RankedHit, alpha float64, limit int) []model.SearchHit {
	if limit <= 0 {
		return nil
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	lexNorm := minMaxNormalize(scores(lexical))
	semNorm := minMaxNormalize(scores(semantic))

	const unranked = int(^uint(0) >> 1)
	type candidate struct {
		hit    model.SearchHit
		lexIdx int
		semIdx int
	}
	byID := make(map[string]*candidate, len(lexical)+len(semantic))
	order := make([]*candidate, 0, len(lexical)+len(semantic))

	for i, h := range lexical {
		if _, ok := byID[h.DocumentID]; ok {
			continue
		}
		c := &candidate{
			hit:    model.SearchHit{DocumentID: h.DocumentID, LexicalScore: lexNorm[i]},
			lexIdx: i,
			semIdx: unranked,
		}
		byID[h.DocumentID] = c
		order = append(order, c)
	}
	for i, h := range semantic {
		if c, ok := byID[h.DocumentID]; ok {
			if c.semIdx == unranked {
				c.hit.SemanticScore = semNorm[i]
				c.semIdx = i
			}
			continue
		}
		c := &candidate{
			hit:    model.SearchHit{DocumentID: h.DocumentID, SemanticScore: semNorm[i]},
			lexIdx: unranked,
			semIdx: i,
		}
		byID[h.DocumentID] = c
		order = append(order, c)
	}

	for _, c := range order {
		c.hit.Combined = alpha*c.hit.LexicalScore + (1-alpha)*c.hit.SemanticScore
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.hit.Combined != b.hit.Combined {
			return a.hit.Combined > b.hit.Combined
		}
		if a.lexIdx != b.lexIdx {
			return a.lexIdx < b.lexIdx
		}
		return a.semIdx < b.semIdx
	})

	if limit > len(order) {
		limit = len(order)
	}
	out := make([]model.SearchHit, 0, limit)
	for _, c := range order[:limit] {
		out = append(out, c.hit)
	}
	return out
}

func scores(hits []model.RankedHit) []float64 {
	if len(hits) == 0 {
		return nil
	}
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.Score
	}
	return out
}

// minMaxNormalize scales a score list to [0,1]. A list where every
// score is equal maps to all 1.0 so perfect ties are not penalized.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if min == max {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	span := max - min
	for i, v := range values {
		out[i] = (v - min) / span
	}
	return out
}
