package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mrag/internal/ai"
	"github.com/xxxsen/mrag/internal/memory"
	"github.com/xxxsen/mrag/internal/model"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string { return "stub" }

type stubIndex struct {
	lexHits []model.RankedHit
	semHits []model.RankedHit
	lexErr  error
	semErr  error
}

func (s *stubIndex) Lexical(ctx context.Context, query string, limit int) ([]model.RankedHit, error) {
	return s.lexHits, s.lexErr
}

func (s *stubIndex) Semantic(ctx context.Context, vec []float32, limit int) ([]model.RankedHit, error) {
	return s.semHits, s.semErr
}

type stubDocs struct {
	docs map[string]model.Document
}

func (s *stubDocs) ListByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	var out []model.Document
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

type stubGenerator struct {
	answer     string
	answerErr  error
	related    []string
	relatedErr error
	calls      int
}

func (s *stubGenerator) Answer(ctx context.Context, contextBlock, history, question string) (string, error) {
	s.calls++
	return s.answer, s.answerErr
}

func (s *stubGenerator) RelatedQueries(ctx context.Context, query, answer string, max int) ([]string, error) {
	return s.related, s.relatedErr
}

func testDocuments() map[string]model.Document {
	return map[string]model.Document{
		"doc-a": {ID: "doc-a", ContentType: model.ContentTypePaper, Title: "Attention Is All You Need", Content: "transformer architecture"},
		"doc-b": {ID: "doc-b", ContentType: model.ContentTypeVideo, Title: "Intro to Transformers", Transcript: "welcome to the lecture"},
		"doc-c": {ID: "doc-c", ContentType: model.ContentTypePodcast, Title: "AI Weekly", Abstract: "episode on attention"},
	}
}

func newTestService(index *stubIndex, docs *stubDocs, gen *stubGenerator) *QueryService {
	sessions := memory.NewStore(10, 64, time.Hour)
	svc := NewQueryService(index, docs, gen, sessions, nil, QueryConfig{Alpha: 0.5, TopK: 10})
	svc.SetEmbedderSource(func() (ai.IEmbedder, error) {
		return &stubEmbedder{vec: []float32{0.1, 0.2}}, nil
	})
	return svc
}

func TestProcessSuccess(t *testing.T) {
	index := &stubIndex{
		lexHits: []model.RankedHit{{DocumentID: "doc-a", Score: 3.0}, {DocumentID: "doc-b", Score: 1.0}},
		semHits: []model.RankedHit{{DocumentID: "doc-b", Score: 0.9}, {DocumentID: "doc-c", Score: 0.7}},
	}
	gen := &stubGenerator{
		answer:  "Transformers rely on attention [Source 1]. The lecture covers it too [Source 2] [Source 1].",
		related: []string{"what is self-attention"},
	}
	svc := newTestService(index, &stubDocs{docs: testDocuments()}, gen)

	result, err := svc.Process(context.Background(), "s1", "how do transformers work")
	require.NoError(t, err)
	require.False(t, result.NoSources)
	require.Empty(t, result.Warnings)
	require.Len(t, result.Sources, 3)
	for i, entry := range result.Sources {
		require.Equal(t, i+1, entry.Ordinal)
	}
	require.Len(t, result.Citations, 2)
	require.Equal(t, 1, result.Citations[0].Ordinal)
	require.Equal(t, 2, result.Citations[0].Occurrences)
	require.Equal(t, 2, result.Citations[1].Ordinal)
	require.Equal(t, 1, result.Citations[1].Occurrences)
	require.Equal(t, []string{"what is self-attention"}, result.RelatedQueries)
}

func TestProcessIsDeterministic(t *testing.T) {
	index := &stubIndex{
		lexHits: []model.RankedHit{{DocumentID: "doc-a", Score: 2.0}, {DocumentID: "doc-b", Score: 2.0}},
		semHits: []model.RankedHit{{DocumentID: "doc-c", Score: 0.8}, {DocumentID: "doc-a", Score: 0.8}},
	}
	gen := &stubGenerator{answer: "See [Source 1] and [Source 3]."}
	docs := &stubDocs{docs: testDocuments()}

	first, err := newTestService(index, docs, gen).Process(context.Background(), "s1", "attention")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := newTestService(index, docs, gen).Process(context.Background(), "s1", "attention")
		require.NoError(t, err)
		require.Equal(t, first.Sources, again.Sources)
		require.Equal(t, first.Citations, again.Citations)
		require.Equal(t, first.Answer, again.Answer)
	}
}

func TestProcessEmptyIndexSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{answer: "should never be used"}
	svc := newTestService(&stubIndex{}, &stubDocs{}, gen)

	result, err := svc.Process(context.Background(), "s1", "anything at all")
	require.NoError(t, err)
	require.True(t, result.NoSources)
	require.Equal(t, NoSourcesMessage, result.Answer)
	require.Empty(t, result.Citations)
	require.Zero(t, gen.calls)
}

func TestProcessLexicalLegFailureDegrades(t *testing.T) {
	index := &stubIndex{
		lexErr:  errors.New("index timeout"),
		semHits: []model.RankedHit{{DocumentID: "doc-a", Score: 0.9}, {DocumentID: "doc-c", Score: 0.5}},
	}
	gen := &stubGenerator{answer: "Answer citing [Source 1]."}
	svc := newTestService(index, &stubDocs{docs: testDocuments()}, gen)

	result, err := svc.Process(context.Background(), "s1", "attention")
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Len(t, result.Sources, 2)
	require.Equal(t, "doc-a", result.Sources[0].DocumentID)
}

func TestProcessBothLegsFail(t *testing.T) {
	index := &stubIndex{lexErr: errors.New("down"), semErr: errors.New("also down")}
	svc := newTestService(index, &stubDocs{}, &stubGenerator{})

	_, err := svc.Process(context.Background(), "s1", "attention")
	require.ErrorIs(t, err, appErr.ErrIndexUnavailable)
}

func TestProcessEmbeddingFailure(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(&stubIndex{}, &stubDocs{}, gen)
	svc.SetEmbedderSource(func() (ai.IEmbedder, error) {
		return nil, errors.New("model load failed")
	})

	_, err := svc.Process(context.Background(), "s1", "attention")
	require.ErrorIs(t, err, appErr.ErrEmbeddingUnavailable)
	require.Zero(t, gen.calls)
}

func TestProcessGenerationFailure(t *testing.T) {
	index := &stubIndex{lexHits: []model.RankedHit{{DocumentID: "doc-a", Score: 1.0}}}
	gen := &stubGenerator{answerErr: errors.New("model overloaded")}
	sessions := memory.NewStore(10, 64, time.Hour)
	svc := NewQueryService(index, &stubDocs{docs: testDocuments()}, gen, sessions, nil, QueryConfig{Alpha: 0.5, TopK: 10})
	svc.SetEmbedderSource(func() (ai.IEmbedder, error) {
		return &stubEmbedder{vec: []float32{0.1}}, nil
	})

	_, err := svc.Process(context.Background(), "s1", "attention")
	require.ErrorIs(t, err, appErr.ErrGenerationFailed)
	conv, ok := sessions.Peek("s1")
	require.True(t, ok)
	require.Zero(t, conv.Len())
}

func TestProcessMemoryAccumulates(t *testing.T) {
	index := &stubIndex{lexHits: []model.RankedHit{{DocumentID: "doc-a", Score: 1.0}}}
	gen := &stubGenerator{answer: "First answer [Source 1]."}
	sessions := memory.NewStore(10, 64, time.Hour)
	svc := NewQueryService(index, &stubDocs{docs: testDocuments()}, gen, sessions, nil, QueryConfig{Alpha: 0.5, TopK: 10})
	svc.SetEmbedderSource(func() (ai.IEmbedder, error) {
		return &stubEmbedder{vec: []float32{0.1}}, nil
	})

	_, err := svc.Process(context.Background(), "s1", "first question")
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), "s1", "second question")
	require.NoError(t, err)

	conv, ok := sessions.Peek("s1")
	require.True(t, ok)
	turns := conv.Recent(10)
	require.Len(t, turns, 2)
	require.Equal(t, "first question", turns[0].Query)
	require.Equal(t, "second question", turns[1].Query)
}

func TestProcessRepeatedQueryServedFromCache(t *testing.T) {
	index := &stubIndex{lexHits: []model.RankedHit{{DocumentID: "doc-a", Score: 1.0}}}
	gen := &stubGenerator{answer: "Cached answer [Source 1]."}
	svc := newTestService(index, &stubDocs{docs: testDocuments()}, gen)

	first, err := svc.Process(context.Background(), "s1", "attention")
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), "s1", "attention")
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, first, second)
}

func TestProcessRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(&stubIndex{}, &stubDocs{}, &stubGenerator{})
	_, err := svc.Process(context.Background(), "s1", "   ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestRenderHistory(t *testing.T) {
	require.Equal(t, "", renderHistory(nil))
	got := renderHistory([]model.ConversationTurn{
		{Query: "q1", Answer: "a1"},
		{Query: "q2", Answer: "a2"},
	})
	require.Equal(t, "User: q1\nAssistant: a1\nUser: q2\nAssistant: a2", got)
}
