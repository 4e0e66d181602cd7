package repository

import (
	"context"

	"docstudio/internal/domain/model"
)

// CounterField names a document usage counter for atomic increments.
type CounterField string

const (
	CounterGenerations CounterField = "generation_count"
	CounterEdits       CounterField = "edit_count"
	CounterRenders     CounterField = "render_count"
)

// DocumentRepository persists documents with their ordered sections.
type DocumentRepository interface {
	Save(ctx context.Context, tx Tx, doc *model.Document) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Document, error)
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.Document, error)
	CountByOwner(ctx context.Context, tx Tx, userID string) (int, error)
	ListByOwner(ctx context.Context, tx Tx, userID string) ([]*model.Document, error)

	// IncrementCounter adds delta to one counter column in a single
	// UPDATE so concurrent requests against the same document cannot
	// lose increments.
	IncrementCounter(ctx context.Context, tx Tx, documentID string, field CounterField, delta int) error

	UpdateStatus(ctx context.Context, tx Tx, id string, status model.DocumentStatus, slug string) error
}
