package listing

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// MovieColumns is the column list every movie query selects, in scan order.
var MovieColumns = []string{
	"tb.tconst",
	"tb.primarytitle",
	"tb.genres",
	"tb.startyear",
	"tb.runtimeminutes",
	"tr.averagerating",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SelectMovies returns the base title/rating join shared by listing and lookup.
func SelectMovies() sq.SelectBuilder {
	return psql.Select(MovieColumns...).
		From("title_basics tb").
		LeftJoin("title_ratings tr ON tb.tconst = tr.tconst")
}

// Build composes the listing statement. Every user-supplied value, the limit included, is a bound parameter.
func Build(req Request) (string, []any, error) {
	if req.Limit < 1 {
		return "", nil, fmt.Errorf("listing: limit must be positive, got %d", req.Limit)
	}
	sort := req.Sort
	if sort.Key == "" {
		sort = DefaultSort
	}

	builder := SelectMovies()
	for _, pred := range req.Filter.Predicates() {
		builder = builder.Where(pred)
	}
	if req.After != nil {
		if req.After.Key != sort.Key {
			return "", nil, fmt.Errorf("listing: cursor key %q does not match sort key %q", req.After.Key, sort.Key)
		}
		builder = builder.Where(req.After.Predicate(sort.Direction))
	}

	query, args, err := builder.
		OrderBy(sort.OrderBy()...).
		Suffix("LIMIT ?", req.Limit).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build movie list query: %w", err)
	}
	return query, args, nil
}
