package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/mrag/internal/model"
)

// SearchRepo is the query side of the document index. The two methods
// mirror the engine contract: boosted multi-field lexical match and
// nearest-neighbor similarity over the stored vectors. Relevance
// scoring itself is the engine's (Postgres') concern.
type SearchRepo struct {
	db *sql.DB
}

func NewSearchRepo(db *sql.DB) *SearchRepo {
	return &SearchRepo{db: db}
}

// Lexical runs a full-text query over the weighted search vector
// (title > abstract > content/transcript, see the migration) and
// returns ts_rank scores. Scores are on the engine's own scale.
func (r *SearchRepo) Lexical(ctx context.Context, query string, limit int) ([]model.RankedHit, error) {
	const stmt = `
		SELECT id, ts_rank(search_vector, plainto_tsquery('english', $1)) AS score
		FROM documents
		WHERE search_vector @@ plainto_tsquery('english', $1)
		ORDER BY score DESC, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, stmt, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRankedHits(rows)
}

// Semantic runs cosine kNN over the embedding column. The similarity
// returned is 1 - cosine distance, matching the metric the vectors
// were stored under.
func (r *SearchRepo) Semantic(ctx context.Context, vec []float32, limit int) ([]model.RankedHit, error) {
	const stmt = `
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, stmt, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRankedHits(rows)
}

func scanRankedHits(rows *sql.Rows) ([]model.RankedHit, error) {
	var out []model.RankedHit
	for rows.Next() {
		var hit model.RankedHit
		if err := rows.Scan(&hit.DocumentID, &hit.Score); err != nil {
			return nil, err
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}
