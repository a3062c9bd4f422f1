package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mrag/internal/ai"
	"github.com/xxxsen/mrag/internal/citation"
	"github.com/xxxsen/mrag/internal/memory"
	"github.com/xxxsen/mrag/internal/model"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
	"github.com/xxxsen/mrag/internal/search"
)

// NoSourcesMessage is the fixed fallback returned when retrieval finds
// nothing; the generator is not called in that case.
const NoSourcesMessage = "I could not find any sources in the collection relevant to your question. Try rephrasing it or broadening the topic."

// SearchIndex is the query contract of the document index.
type SearchIndex interface {
	Lexical(ctx context.Context, query string, limit int) ([]model.RankedHit, error)
	Semantic(ctx context.Context, vec []float32, limit int) ([]model.RankedHit, error)
}

// DocumentStore fetches display fields for merged hits.
type DocumentStore interface {
	ListByIDs(ctx context.Context, ids []string) ([]model.Document, error)
}

// Generator is the completion side of the AI manager.
type Generator interface {
	Answer(ctx context.Context, contextBlock, history, question string) (string, error)
	RelatedQueries(ctx context.Context, query, answer string, max int) ([]string, error)
}

type QueryConfig struct {
	Alpha             float64
	TopK              int
	FetchK            int
	MaxCharsPerSource int
	HistoryTurns      int
	RelatedMax        int
	RetrievalTimeout  time.Duration
	AnswerCacheTTL    time.Duration
}

const answerCacheSize = 1024

// QueryService runs one query end to end: embed, retrieve both index
// sides, merge, build context, generate, extract citations, update the
// session. Each query reaches exactly one terminal state; a failed
// retrieval leg degrades recall, a failed generation fails the query.
type QueryService struct {
	index     SearchIndex
	docs      DocumentStore
	generator Generator
	sessions  *memory.Store
	citations *CitationService
	embedder  func() (ai.IEmbedder, error)
	answers   *expirable.LRU[string, *model.QueryResult]
	cfg       QueryConfig
}

func NewQueryService(index SearchIndex, docs DocumentStore, generator Generator, sessions *memory.Store, citations *CitationService, cfg QueryConfig) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.FetchK <= 0 {
		cfg.FetchK = 2 * cfg.TopK
	}
	if cfg.MaxCharsPerSource <= 0 {
		cfg.MaxCharsPerSource = 500
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 10
	}
	if cfg.RelatedMax <= 0 {
		cfg.RelatedMax = 3
	}
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = 10 * time.Second
	}
	if cfg.AnswerCacheTTL <= 0 {
		cfg.AnswerCacheTTL = 5 * time.Minute
	}
	return &QueryService{
		index:     index,
		docs:      docs,
		generator: generator,
		sessions:  sessions,
		citations: citations,
		embedder:  ai.GetOrCreateEmbedder,
		answers:   expirable.NewLRU[string, *model.QueryResult](answerCacheSize, nil, cfg.AnswerCacheTTL),
		cfg:       cfg,
	}
}

// SetEmbedderSource overrides the embedder accessor; used by tests.
func (s *QueryService) SetEmbedderSource(source func() (ai.IEmbedder, error)) {
	s.embedder = source
}

func (s *QueryService) Process(ctx context.Context, sessionID, query string) (*model.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || sessionID == "" {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))

	// Repeating the same question in the same session within the cache
	// window replays the stored result; memory and usage history do not
	// move again.
	cacheKey := sessionID + "\x00" + query
	if cached, ok := s.answers.Get(cacheKey); ok {
		logger.Debug("answer served from cache", zap.String("query", query))
		return cached, nil
	}

	// Embed
	embedder, err := s.embedder()
	if err != nil {
		logger.Error("embedder unavailable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbeddingUnavailable, err)
	}
	embedCtx, cancelEmbed := context.WithTimeout(ctx, s.cfg.RetrievalTimeout)
	vec, err := embedder.Embed(embedCtx, query, "RETRIEVAL_QUERY")
	cancelEmbed()
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbeddingUnavailable, err)
	}

	// Retrieve both sides concurrently; neither blocks the other's
	// failure handling.
	var (
		lexHits, semHits []model.RankedHit
		lexErr, semErr   error
		wg               sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		searchCtx, cancel := context.WithTimeout(ctx, s.cfg.RetrievalTimeout)
		defer cancel()
		lexHits, lexErr = s.index.Lexical(searchCtx, query, s.cfg.FetchK)
	}()
	go func() {
		defer wg.Done()
		searchCtx, cancel := context.WithTimeout(ctx, s.cfg.RetrievalTimeout)
		defer cancel()
		semHits, semErr = s.index.Semantic(searchCtx, vec, s.cfg.FetchK)
	}()
	wg.Wait()

	if lexErr != nil && semErr != nil {
		logger.Error("both retrieval legs failed", zap.Error(lexErr), zap.NamedError("semantic_error", semErr))
		return nil, fmt.Errorf("%w: lexical: %v; semantic: %v", appErr.ErrIndexUnavailable, lexErr, semErr)
	}
	var warnings []string
	if lexErr != nil {
		logger.Warn("lexical retrieval failed, continuing with semantic hits only", zap.Error(lexErr))
		warnings = append(warnings, "lexical search unavailable, results may have reduced recall")
		lexHits = nil
	}
	if semErr != nil {
		logger.Warn("semantic retrieval failed, continuing with lexical hits only", zap.Error(semErr))
		warnings = append(warnings, "semantic search unavailable, results may have reduced recall")
		semHits = nil
	}

	// Merge + build context
	merged := search.Merge(lexHits, semHits, s.cfg.Alpha, s.cfg.TopK)
	docs, err := s.fetchDocuments(ctx, merged)
	if err != nil {
		logger.Error("document fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrIndexUnavailable, err)
	}
	entries, rendered := search.BuildContext(merged, docs, s.cfg.MaxCharsPerSource)
	if len(entries) == 0 {
		logger.Info("no sources found", zap.String("query", query))
		return &model.QueryResult{
			Answer:    NoSourcesMessage,
			Citations: []model.Citation{},
			Warnings:  warnings,
			NoSources: true,
		}, nil
	}

	// Generate; failure here is fatal for the query, no partial answer.
	conv := s.sessions.Get(sessionID)
	history := renderHistory(conv.Recent(s.cfg.HistoryTurns))
	answer, err := s.generator.Answer(ctx, rendered, history, query)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrGenerationFailed, err)
	}

	// Extract citations; malformed markers reduce the list, never fail.
	citations := citation.Extract(answer, entries)
	if dropped := citation.DroppedMarkers(answer, len(entries)); dropped > 0 {
		logger.Debug("dropped out-of-range citation markers", zap.Int("count", dropped))
	}
	if citations == nil {
		citations = []model.Citation{}
	}

	conv.Append(query, answer, citations)
	s.recordCitations(ctx, query, citations)

	result := &model.QueryResult{
		Answer:    answer,
		Citations: citations,
		Sources:   entries,
		Warnings:  warnings,
	}
	// Follow-up suggestions are best-effort.
	if related, err := s.generator.RelatedQueries(ctx, query, answer, s.cfg.RelatedMax); err != nil {
		logger.Warn("related query generation failed", zap.Error(err))
	} else {
		result.RelatedQueries = related
	}
	s.answers.Add(cacheKey, result)
	return result, nil
}

func (s *QueryService) fetchDocuments(ctx context.Context, hits []model.SearchHit) (map[string]model.Document, error) {
	if len(hits) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.DocumentID)
	}
	docs, err := s.docs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Document, len(docs))
	for _, doc := range docs {
		out[doc.ID] = doc
	}
	return out, nil
}

func (s *QueryService) recordCitations(ctx context.Context, query string, citations []model.Citation) {
	if s.citations == nil || len(citations) == 0 {
		return
	}
	if err := s.citations.Record(ctx, query, citations); err != nil {
		logutil.GetLogger(ctx).Warn("citation usage tracking failed", zap.Error(err))
	}
}

func renderHistory(turns []model.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, turn := range turns {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s", turn.Query, turn.Answer)
	}
	return sb.String()
}
