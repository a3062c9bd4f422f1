package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/mrag/internal/model"
	"github.com/xxxsen/mrag/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mrag/internal/pkg/errors"
)

var documentFields = []string{
	"id", "content_type", "title", "abstract", "content", "transcript",
	"authors", "publication_date", "url", "metadata", "ctime", "mtime",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*model.Document, error) {
	docs, err := r.ListByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &docs[0], nil
}

func (r *DocumentRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	where := map[string]interface{}{
		"id in": ids,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *DocumentRepo) List(ctx context.Context, contentType string, limit, offset uint) ([]model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "mtime desc",
	}
	if contentType != "" {
		where["content_type"] = contentType
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *DocumentRepo) CountByType(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT content_type, COUNT(*) FROM documents GROUP BY content_type`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var contentType string
		var count int64
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, err
		}
		out[contentType] = count
	}
	return out, rows.Err()
}

func (r *DocumentRepo) DateSpan(ctx context.Context) (string, string, error) {
	const query = `
		SELECT coalesce(min(publication_date), ''), coalesce(max(publication_date), '')
		FROM documents
		WHERE publication_date <> ''
	`
	var oldest, newest string
	if err := r.db.QueryRowContext(ctx, query).Scan(&oldest, &newest); err != nil {
		return "", "", err
	}
	return oldest, newest, nil
}

// ListStaleEmbeddings returns documents whose vector is missing or
// older than the row itself; the backfill job re-embeds them.
func (r *DocumentRepo) ListStaleEmbeddings(ctx context.Context, limit int) ([]model.Document, error) {
	const query = `
		SELECT id, content_type, title, abstract, content, transcript,
		       authors, publication_date, url, metadata, ctime, mtime
		FROM documents
		WHERE embedding IS NULL OR embedding_mtime < mtime
		ORDER BY mtime
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *DocumentRepo) UpdateEmbedding(ctx context.Context, id string, vec []float32, contentHash string, mtime int64) error {
	const query = `
		UPDATE documents
		SET embedding = $1, embedding_hash = $2, embedding_mtime = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, pgvector.NewVector(vec), contentHash, mtime, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// TouchEmbedding marks the current vector as up to date without
// rewriting it; used when the embeddable text did not change.
func (r *DocumentRepo) TouchEmbedding(ctx context.Context, id string, mtime int64) error {
	const query = `UPDATE documents SET embedding_mtime = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, mtime, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) EmbeddingHash(ctx context.Context, id string) (string, error) {
	const query = `SELECT embedding_hash FROM documents WHERE id = $1`
	var hash string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", appErr.ErrNotFound
		}
		return "", err
	}
	return hash, nil
}

func scanDocuments(rows *sql.Rows) ([]model.Document, error) {
	var out []model.Document
	for rows.Next() {
		var doc model.Document
		var metadata []byte
		if err := rows.Scan(
			&doc.ID, &doc.ContentType, &doc.Title, &doc.Abstract,
			&doc.Content, &doc.Transcript, pq.Array(&doc.Authors),
			&doc.PublicationDate, &doc.URL, &metadata, &doc.Ctime, &doc.Mtime,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
