package listing

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

const ratingExpr = "COALESCE(tr.averagerating, -1)"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter holds the optional listing filters. Zero values mean "no filter".
type Filter struct {
	Genre     string
	RatingMin *float64
	RatingMax *float64
}

// ParseFilter validates the raw genre, rating_gt and rating_lt parameters.
func ParseFilter(genre, ratingGT, ratingLT string) (Filter, error) {
	f := Filter{Genre: strings.TrimSpace(genre)}
	if !validText(f.Genre) {
		return Filter{}, domain.NewValidationError("genre", "Invalid genre value")
	}

	lower, err := parseRatingBound("rating_gt", ratingGT)
	if err != nil {
		return Filter{}, err
	}
	upper, err := parseRatingBound("rating_lt", ratingLT)
	if err != nil {
		return Filter{}, err
	}
	f.RatingMin = lower
	f.RatingMax = upper
	return f, nil
}

func parseRatingBound(param, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.NewValidationError(param, "Invalid "+param+" value")
	}
	return &v, nil
}

// Predicates returns the WHERE fragments for the filter, always restricted to movies.
func (f Filter) Predicates() []sq.Sqlizer {
	preds := []sq.Sqlizer{sq.Eq{"tb.titletype": domain.TitleTypeMovie}}
	if f.Genre != "" {
		preds = append(preds, sq.Expr("tb.genres ILIKE ?", "%"+likeEscaper.Replace(f.Genre)+"%"))
	}
	if f.RatingMin != nil {
		preds = append(preds, sq.GtOrEq{ratingExpr: *f.RatingMin})
	}
	if f.RatingMax != nil {
		preds = append(preds, sq.LtOrEq{ratingExpr: *f.RatingMax})
	}
	return preds
}

// validText reports whether s can be bound as a Postgres text parameter.
func validText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
