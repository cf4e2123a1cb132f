package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a guarded UPDATE matched no row: the record
// was no longer in the state the caller expected. Lost races surface here.
var ErrConflict = errors.New("state conflict")

// ErrActiveJobExists is returned when the partial unique index on
// (project_id, stage) for active jobs rejects an insert.
var ErrActiveJobExists = errors.New("active job already exists")

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
