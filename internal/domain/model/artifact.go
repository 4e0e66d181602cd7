package model

import (
	"time"

	"docstudio/internal/domain"
)

type ArtifactKind string

const ArtifactKindPDF ArtifactKind = "rendered-output"

// Artifact is the current pointer to a rendered binary for one
// (document, kind) pair. A re-render replaces the pointer; the old
// object may linger in storage unreferenced.
type Artifact struct {
	ID          string // UUID
	DocumentID  string // UUID
	Kind        ArtifactKind
	StoragePath string
	PublicURL   string
	SizeBytes   int64
	RenderedAt  time.Time
}

func NewArtifact(id, documentID string, kind ArtifactKind, storagePath, publicURL string, size int64) (*Artifact, error) {
	if id == "" || documentID == "" || kind == "" || storagePath == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Artifact{
		ID:          id,
		DocumentID:  documentID,
		Kind:        kind,
		StoragePath: storagePath,
		PublicURL:   publicURL,
		SizeBytes:   size,
		RenderedAt:  time.Now(),
	}, nil
}
