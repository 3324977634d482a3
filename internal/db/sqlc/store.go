package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is a DBTX that can also open transactions, such as *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store adds transaction support on top of the generated queries.
type Store struct {
	*Queries
	pool TxBeginner
}

func NewStore(pool TxBeginner) *Store {
	return &Store{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn in a single transaction. The transaction is committed when
// fn returns nil and rolled back otherwise.
func (s *Store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.WithTx(tx))
	})
}
