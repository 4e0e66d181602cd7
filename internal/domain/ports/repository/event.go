package repository

import "context"

// ProcessedEventRepository is the append-only dedup set for processor
// event ids.
type ProcessedEventRepository interface {
	// MarkProcessed records eventID; returns (false, nil) when the id
	// was already present. Must be called inside the same transaction
	// as the state change the event causes.
	MarkProcessed(ctx context.Context, tx Tx, eventID string) (fresh bool, err error)

	IsProcessed(ctx context.Context, tx Tx, eventID string) (bool, error)
}
