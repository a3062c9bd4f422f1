package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mrag/internal/model"
	"github.com/xxxsen/mrag/internal/pkg/dbutil"
)

type CitationRepo struct {
	db *sql.DB
}

func NewCitationRepo(db *sql.DB) *CitationRepo {
	return &CitationRepo{db: db}
}

func (r *CitationRepo) RecordUsage(ctx context.Context, usages []model.CitationUsage) error {
	if len(usages) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(usages))
	for _, u := range usages {
		data = append(data, map[string]interface{}{
			"document_id":  u.DocumentID,
			"content_type": u.ContentType,
			"title":        u.Title,
			"url":          u.URL,
			"query":        u.Query,
			"ctime":        u.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("citation_usage", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CitationRepo) CountByType(ctx context.Context) (map[string]int64, error) {
	const query = `
		SELECT content_type, COUNT(DISTINCT document_id)
		FROM citation_usage
		GROUP BY content_type
	`
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

func (r *CitationRepo) MostCited(ctx context.Context, limit int) ([]model.CitedSource, error) {
	const query = `
		SELECT document_id, content_type, max(title), max(url),
		       COUNT(*), min(ctime), max(ctime)
		FROM citation_usage
		GROUP BY document_id, content_type
		ORDER BY COUNT(*) DESC, document_id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CitedSource
	for rows.Next() {
		var item model.CitedSource
		if err := rows.Scan(
			&item.DocumentID, &item.ContentType, &item.Title, &item.URL,
			&item.UseCount, &item.FirstUsed, &item.LastUsed,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *CitationRepo) Recent(ctx context.Context, limit int) ([]model.CitationUsage, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc, id desc",
		"_limit":   []uint{0, uint(limit)},
	}
	fields := []string{"id", "document_id", "content_type", "title", "url", "query", "ctime"}
	sqlStr, args, err := builder.BuildSelect("citation_usage", where, fields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CitationUsage
	for rows.Next() {
		var item model.CitationUsage
		if err := rows.Scan(
			&item.ID, &item.DocumentID, &item.ContentType, &item.Title,
			&item.URL, &item.Query, &item.Ctime,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CitedDocumentIDs lists distinct documents of one content type that
// were ever cited, for bibliography export.
func (r *CitationRepo) CitedDocumentIDs(ctx context.Context, contentType string) ([]string, error) {
	const query = `
		SELECT DISTINCT document_id
		FROM citation_usage
		WHERE content_type = $1
		ORDER BY document_id
	`
	rows, err := r.db.QueryContext(ctx, query, contentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *CitationRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM citation_usage WHERE ctime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
