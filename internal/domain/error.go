package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrLockContended      = errors.New("could not acquire lock")

	// Payment event processing
	ErrVerificationFailed = errors.New("event signature verification failed")
	ErrCorrelationMissing = errors.New("no pending checkout matches event")

	// External calls
	ErrUpstreamTimeout = errors.New("upstream call exceeded its deadline")
	ErrStorageFailure  = errors.New("artifact storage operation failed")
)
