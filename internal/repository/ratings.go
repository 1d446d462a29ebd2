package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertRating writes the rating row for a newly created title. Vote count starts at zero
// and is never updated by this API.
func insertRating(ctx context.Context, db execer, tconst string, average float64) error {
	const query = `
        INSERT INTO title_ratings (tconst, averagerating, numvotes)
        VALUES ($1, $2, 0)
    `
	_, err := db.Exec(ctx, query, tconst, average)
	return err
}
