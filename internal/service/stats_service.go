package service

import (
	"context"

	"github.com/xxxsen/mrag/internal/model"
	"github.com/xxxsen/mrag/internal/repo"
)

type CollectionStats struct {
	Total         int64            `json:"total"`
	CountByType   map[string]int64 `json:"count_by_type"`
	OldestPubDate string           `json:"oldest_pub_date,omitempty"`
	NewestPubDate string           `json:"newest_pub_date,omitempty"`
}

// StatsService summarizes the indexed collection.
type StatsService struct {
	documents *repo.DocumentRepo
}

func NewStatsService(documents *repo.DocumentRepo) *StatsService {
	return &StatsService{documents: documents}
}

func (s *StatsService) Collection(ctx context.Context) (*CollectionStats, error) {
	byType, err := s.documents.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, count := range byType {
		total += count
	}
	oldest, newest, err := s.documents.DateSpan(ctx)
	if err != nil {
		return nil, err
	}
	return &CollectionStats{
		Total:         total,
		CountByType:   byType,
		OldestPubDate: oldest,
		NewestPubDate: newest,
	}, nil
}

func (s *StatsService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	return s.documents.Get(ctx, id)
}

func (s *StatsService) ListDocuments(ctx context.Context, contentType string, limit, offset uint) ([]model.Document, error) {
	if limit == 0 || limit > 100 {
		limit = 100
	}
	return s.documents.List(ctx, contentType, limit, offset)
}
