package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Clark-Hu/imdb-titles-api/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates an entity with the same identifier already exists.
	ErrConflict = errors.New("repository: already exists")
)

const uniqueViolation = "23505"

// DB is the data-access capability repositories need: parameterized reads and transactions.
// *pgxpool.Pool satisfies it; every call acquires and releases one pooled connection.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies *MoviesRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithDB(st.Pool())
}

// NewWithDB allows constructing repositories directly from a pgx pool or any DB.
func NewWithDB(db DB) *Repository {
	return &Repository{
		Movies: &MoviesRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
