package repository

import (
	"context"

	"docstudio/internal/domain/model"
)

// ArtifactRepository keeps one current pointer per (document, kind).
type ArtifactRepository interface {
	// Upsert replaces the pointer for (a.DocumentID, a.Kind).
	Upsert(ctx context.Context, tx Tx, a *model.Artifact) error
	Find(ctx context.Context, tx Tx, documentID string, kind model.ArtifactKind) (*model.Artifact, error)
}
