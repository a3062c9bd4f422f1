package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mrag/internal/ai"
	"github.com/xxxsen/mrag/internal/repo"
)

// EmbeddingBackfillJob re-embeds documents whose vector is missing or
// stale. It runs off the query path so index writes never compete with
// live retrieval for embedder throughput.
type EmbeddingBackfillJob struct {
	docs      *repo.DocumentRepo
	batchSize int
}

func NewEmbeddingBackfillJob(docs *repo.DocumentRepo, batchSize int) *EmbeddingBackfillJob {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &EmbeddingBackfillJob{docs: docs, batchSize: batchSize}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	embedder, err := ai.GetOrCreateEmbedder()
	if err != nil {
		return err
	}
	stale, err := j.docs.ListStaleEmbeddings(ctx, j.batchSize)
	if err != nil {
		return err
	}
	var embedded, skipped, failed int
	for _, doc := range stale {
		text := doc.EmbeddingText()
		sum := sha256.Sum256([]byte(text))
		hash := hex.EncodeToString(sum[:])

		prev, err := j.docs.EmbeddingHash(ctx, doc.ID)
		if err == nil && prev == hash {
			// Text unchanged, only the row's mtime moved.
			if err := j.docs.TouchEmbedding(ctx, doc.ID, doc.Mtime); err != nil {
				logger.Warn("touch embedding failed", zap.String("id", doc.ID), zap.Error(err))
				failed++
				continue
			}
			skipped++
			continue
		}

		vec, err := embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
		if err != nil {
			logger.Warn("embed document failed", zap.String("id", doc.ID), zap.Error(err))
			failed++
			continue
		}
		if err := j.docs.UpdateEmbedding(ctx, doc.ID, vec, hash, doc.Mtime); err != nil {
			logger.Warn("store embedding failed", zap.String("id", doc.ID), zap.Error(err))
			failed++
			continue
		}
		embedded++
		// Keep a floor between upstream calls to dodge rate limits.
		time.Sleep(200 * time.Millisecond)
	}
	logger.Info("embedding backfill done",
		zap.Int("embedded", embedded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}
