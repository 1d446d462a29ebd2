package listing

import (
	"math"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

const cursorFormatMessage = `Invalid "after" parameter format. Use "<value>,<tconst>"`

// Cursor is a decoded keyset position: the last row's sort value and identifier.
// Value is an int for startyear, a float64 for averagerating and a string for primarytitle.
type Cursor struct {
	Key   SortKey
	Value any
	ID    string
}

// DecodeCursor parses "<value>,<id>" for the active sort key. An empty token yields a nil cursor.
// The token is split at its last comma because titles may contain commas and identifiers never do.
func DecodeCursor(raw string, key SortKey) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	idx := strings.LastIndex(raw, ",")
	if idx < 0 {
		return nil, invalidCursor()
	}
	valuePart, id := raw[:idx], strings.TrimSpace(raw[idx+1:])
	if id == "" || !validText(id) {
		return nil, invalidCursor()
	}

	c := &Cursor{Key: key, ID: id}
	switch key {
	case SortStartYear:
		year, err := strconv.ParseInt(strings.TrimSpace(valuePart), 10, 32)
		if err != nil {
			return nil, invalidCursor()
		}
		c.Value = int(year)
	case SortAverageRating:
		rating, err := parseCursorRating(valuePart)
		if err != nil {
			return nil, invalidCursor()
		}
		c.Value = rating
	case SortPrimaryTitle:
		if !validText(valuePart) {
			return nil, invalidCursor()
		}
		c.Value = valuePart
	default:
		return nil, invalidCursor()
	}
	return c, nil
}

func parseCursorRating(raw string) (float64, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	switch token {
	case "", "null", "none":
		return domain.MissingRating, nil
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// EncodeCursor renders the cursor pointing just past m for the given sort key.
func EncodeCursor(key SortKey, m domain.Movie) string {
	var value string
	switch key {
	case SortAverageRating:
		value = strconv.FormatFloat(m.RatingOrSentinel(), 'f', -1, 64)
	case SortPrimaryTitle:
		value = m.Title
	default:
		value = strconv.Itoa(m.Year)
	}
	return value + "," + m.ID
}

// Predicate returns the keyset condition selecting rows strictly after the cursor.
// The primary comparison follows dir; the identifier is always ascending.
func (c Cursor) Predicate(dir Direction) sq.Sqlizer {
	expr := sortExpressions[c.Key]
	op := ">"
	if dir == Desc {
		op = "<"
	}
	return sq.Or{
		sq.Expr(expr+" "+op+" ?", c.Value),
		sq.And{
			sq.Eq{expr: c.Value},
			sq.Gt{tieBreakColumn: c.ID},
		},
	}
}

func invalidCursor() error {
	return domain.NewValidationError("after", cursorFormatMessage)
}
