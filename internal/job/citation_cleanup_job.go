package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mrag/internal/repo"
)

// CitationCleanupJob drops citation usage rows older than the
// retention window.
type CitationCleanupJob struct {
	citations     *repo.CitationRepo
	retentionDays int
}

func NewCitationCleanupJob(citations *repo.CitationRepo, retentionDays int) *CitationCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 180
	}
	return &CitationCleanupJob{citations: citations, retentionDays: retentionDays}
}

func (j *CitationCleanupJob) Name() string {
	return "citation_cleanup"
}

func (j *CitationCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays).Unix()
	deleted, err := j.citations.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("citation cleanup done", zap.Int64("deleted", deleted))
	return nil
}
