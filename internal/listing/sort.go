package listing

import (
	"strings"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

// SortKey is a logical sort key accepted by the sort query parameter.
type SortKey string

const (
	SortPrimaryTitle  SortKey = "primarytitle"
	SortAverageRating SortKey = "averagerating"
	SortStartYear     SortKey = "startyear"
)

// tieBreakColumn makes every ordering a strict total order.
const tieBreakColumn = "tb.tconst"

// allowedSortKeys is ordered so error messages are stable.
var allowedSortKeys = []SortKey{SortPrimaryTitle, SortAverageRating, SortStartYear}

var sortExpressions = map[SortKey]string{
	SortPrimaryTitle:  "tb.primarytitle",
	SortAverageRating: "COALESCE(tr.averagerating, -1)",
	SortStartYear:     "tb.startyear",
}

// Direction is the ordering of the primary sort expression.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Sort is a resolved sort parameter.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort is used when no sort parameter is supplied.
var DefaultSort = Sort{Key: SortStartYear, Direction: Asc}

// ParseSort resolves "<key>[,<direction>]" against the allow-list.
func ParseSort(raw string) (Sort, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultSort, nil
	}

	parts := strings.Split(raw, ",")
	key := SortKey(strings.ToLower(strings.TrimSpace(parts[0])))
	if _, ok := sortExpressions[key]; !ok {
		return Sort{}, domain.NewValidationError("sort", "Invalid sort key. Allowed keys: "+allowedKeysList())
	}

	dir := Asc
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		dir = Desc
	}
	return Sort{Key: key, Direction: dir}, nil
}

// Expr returns the physical expression the key orders by.
func (s Sort) Expr() string {
	return sortExpressions[s.Key]
}

// OrderBy returns the ORDER BY terms, tie-broken by identifier ascending.
func (s Sort) OrderBy() []string {
	return []string{
		s.Expr() + " " + s.Direction.String(),
		tieBreakColumn + " ASC",
	}
}

func allowedKeysList() string {
	names := make([]string, len(allowedSortKeys))
	for i, k := range allowedSortKeys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
