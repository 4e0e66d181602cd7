package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
)

// Ensure documentRepo implements repository.DocumentRepository
var _ repository.DocumentRepository = (*documentRepo)(nil)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

func (r *documentRepo) Save(ctx context.Context, tx repository.Tx, d *model.Document) error {
	const q = `
INSERT INTO documents (
  id, user_id, title, subtitle, slug, status, generation_count, edit_count, render_count, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  title=$3, subtitle=$4, slug=$5, status=$6, updated_at=$11;`
	_, err := execSQL(ctx, r.pool, tx, q,
		d.ID, d.UserID, d.Title, d.Subtitle, d.Slug, string(d.Status),
		d.GenerationCount, d.EditCount, d.RenderCount, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return mapExecError(err)
	}
	return r.saveSections(ctx, tx, d)
}

// saveSections rewrites the whole section list. Documents are small
// enough that a delete-and-reinsert keeps positions trivially dense.
func (r *documentRepo) saveSections(ctx context.Context, tx repository.Tx, d *model.Document) error {
	const del = `DELETE FROM document_sections WHERE document_id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, del, d.ID); err != nil {
		return mapExecError(err)
	}
	const ins = `
INSERT INTO document_sections (id, document_id, position, title, body)
VALUES ($1,$2,$3,$4,$5);`
	for _, s := range d.Sections {
		if _, err := execSQL(ctx, r.pool, tx, ins, s.ID, d.ID, s.Position, s.Title, s.Body); err != nil {
			return mapExecError(err)
		}
	}
	return nil
}

func (r *documentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	const q = `
SELECT id, user_id, title, subtitle, slug, status, generation_count, edit_count, render_count, created_at, updated_at
  FROM documents
 WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *documentRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Document, error) {
	const q = `
SELECT id, user_id, title, subtitle, slug, status, generation_count, edit_count, render_count, created_at, updated_at
  FROM documents
 WHERE slug=$1 AND slug<>'' AND status='published';`
	return r.queryOne(ctx, tx, q, slug)
}

func (r *documentRepo) CountByOwner(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, tx repository.Tx, userID string) ([]*model.Document, error) {
	const q = `
SELECT id, user_id, title, subtitle, slug, status, generation_count, edit_count, render_count, created_at, updated_at
  FROM documents
 WHERE user_id=$1
 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	// Listing skips section bodies; FindByID loads them when needed.
	return out, nil
}

func (r *documentRepo) IncrementCounter(ctx context.Context, tx repository.Tx, documentID string, field repository.CounterField, delta int) error {
	// Column name is interpolated, so it must come off the whitelist.
	switch field {
	case repository.CounterGenerations, repository.CounterEdits, repository.CounterRenders:
	default:
		return domain.ErrInvalidArgument
	}
	q := fmt.Sprintf(`UPDATE documents SET %s = %s + $2, updated_at=NOW() WHERE id=$1;`, field, field)
	tag, err := execSQL(ctx, r.pool, tx, q, documentID, delta)
	if err != nil {
		return mapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.DocumentStatus, slug string) error {
	const q = `UPDATE documents SET status=$2, slug=$3, updated_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, string(status), slug)
	if err != nil {
		return mapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Document, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	d := &model.Document{}
	var status string
	if err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Subtitle, &d.Slug, &status,
		&d.GenerationCount, &d.EditCount, &d.RenderCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	d.Status = model.DocumentStatus(status)
	if err := r.loadSections(ctx, tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *documentRepo) loadSections(ctx context.Context, tx repository.Tx, d *model.Document) error {
	const q = `
SELECT id, position, title, body
  FROM document_sections
 WHERE document_id=$1
 ORDER BY position ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, d.ID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	defer rows.Close()
	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.Position, &s.Title, &s.Body); err != nil {
			return domain.ErrReadDatabaseRow
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return domain.ErrReadDatabaseRow
	}
	d.Sections = sections
	return nil
}

func scanDocument(rows pgx.Rows) (*model.Document, error) {
	d := &model.Document{}
	var status string
	if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Subtitle, &d.Slug, &status,
		&d.GenerationCount, &d.EditCount, &d.RenderCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	d.Status = model.DocumentStatus(status)
	return d, nil
}
