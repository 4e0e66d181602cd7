package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
)

// Ensure artifactRepo implements repository.ArtifactRepository
var _ repository.ArtifactRepository = (*artifactRepo)(nil)

type artifactRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactRepo(pool *pgxpool.Pool) *artifactRepo {
	return &artifactRepo{pool: pool}
}

func (r *artifactRepo) Upsert(ctx context.Context, tx repository.Tx, a *model.Artifact) error {
	// One row per (document, kind); a re-render swings the pointer.
	const q = `
INSERT INTO artifacts (id, document_id, kind, storage_path, public_url, size_bytes, rendered_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (document_id, kind) DO UPDATE SET
  storage_path=$4, public_url=$5, size_bytes=$6, rendered_at=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.DocumentID, string(a.Kind), a.StoragePath, a.PublicURL, a.SizeBytes, a.RenderedAt)
	if err != nil {
		return mapExecError(err)
	}
	return nil
}

func (r *artifactRepo) Find(ctx context.Context, tx repository.Tx, documentID string, kind model.ArtifactKind) (*model.Artifact, error) {
	const q = `
SELECT id, document_id, kind, storage_path, public_url, size_bytes, rendered_at
  FROM artifacts
 WHERE document_id=$1 AND kind=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, documentID, string(kind))
	if err != nil {
		return nil, err
	}
	a := &model.Artifact{}
	var k string
	if err := row.Scan(&a.ID, &a.DocumentID, &k, &a.StoragePath, &a.PublicURL, &a.SizeBytes, &a.RenderedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.Kind = model.ArtifactKind(k)
	return a, nil
}
