package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
	"github.com/Clark-Hu/imdb-titles-api/internal/listing"
)

// MoviesRepository provides persistence helpers for movie titles.
type MoviesRepository struct {
	db DB
}

// MoviePage is one page of a listing plus the cursor for the next one.
// NextCursor is nil when the page is empty.
type MoviePage struct {
	Items      []domain.Movie
	NextCursor *string
}

const insertTitleQuery = `
    INSERT INTO title_basics (tconst, titletype, primarytitle, originaltitle, isadult, startyear, endyear, runtimeminutes, genres)
    VALUES ($1, $2, $3, $3, FALSE, $4, NULL, $5, $6)
`

// List runs one keyset-paginated query for the validated request.
func (r *MoviesRepository) List(ctx context.Context, req listing.Request) (MoviePage, error) {
	query, args, err := listing.Build(req)
	if err != nil {
		return MoviePage{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return MoviePage{}, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0, req.Limit)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MoviePage{}, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MoviePage{}, fmt.Errorf("list movies: %w", err)
	}

	var nextCursor *string
	if len(items) > 0 {
		sortKey := req.Sort.Key
		if sortKey == "" {
			sortKey = listing.DefaultSort.Key
		}
		token := listing.EncodeCursor(sortKey, items[len(items)-1])
		nextCursor = &token
	}

	return MoviePage{Items: items, NextCursor: nextCursor}, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query, args, err := listing.SelectMovies().
		Where("tb.tconst = ?", id).
		Where("tb.titletype = ?", domain.TitleTypeMovie).
		ToSql()
	if err != nil {
		return domain.Movie{}, fmt.Errorf("build movie lookup: %w", err)
	}

	movie, err := scanMovie(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, fmt.Errorf("get movie %s: %w", id, err)
	}
	return movie, nil
}

// Create inserts the title and its rating in one transaction.
// A duplicate identifier yields ErrConflict and leaves the existing rows untouched.
func (r *MoviesRepository) Create(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	if movie.Rating == nil {
		return domain.Movie{}, fmt.Errorf("create movie %s: rating is required", movie.ID)
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTitleQuery,
			movie.ID, domain.TitleTypeMovie, movie.Title, movie.Year, movie.Runtime, movie.Genres); err != nil {
			return err
		}
		return insertRating(ctx, tx, movie.ID, *movie.Rating)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Movie{}, ErrConflict
		}
		return domain.Movie{}, fmt.Errorf("create movie %s: %w", movie.ID, err)
	}
	return movie, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie  domain.Movie
		genres *string
		rating *float64
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&genres,
		&movie.Year,
		&movie.Runtime,
		&rating,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	if genres != nil {
		movie.Genres = *genres
	}
	movie.Rating = rating
	return movie, nil
}
