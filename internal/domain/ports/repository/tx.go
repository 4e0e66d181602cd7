package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function inside a database transaction,
// passing the tx handle through the `tx` argument so repository methods
// sharing the transaction can detect it. Repositories must accept a nil
// handle for the non-transactional path.
//
// The reconciler depends on this: the dedup record and the state
// mutation it guards commit or roll back together.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
