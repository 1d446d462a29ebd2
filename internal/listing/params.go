package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

// Limits bounds the page size. Max <= 0 disables the upper bound.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits mirrors the configuration defaults.
var DefaultLimits = Limits{Default: 20, Max: 100}

// Request is a fully validated listing request.
type Request struct {
	Filter Filter
	Sort   Sort
	After  *Cursor
	Limit  int
}

// ParseRequest validates the listing query parameters. Every failure is a *domain.ValidationError.
func ParseRequest(query url.Values, limits Limits) (Request, error) {
	var req Request

	filter, err := ParseFilter(query.Get("genre"), query.Get("rating_gt"), query.Get("rating_lt"))
	if err != nil {
		return Request{}, err
	}
	req.Filter = filter

	limit, err := parseLimit(query.Get("limit"), limits)
	if err != nil {
		return Request{}, err
	}
	req.Limit = limit

	sort, err := ParseSort(query.Get("sort"))
	if err != nil {
		return Request{}, err
	}
	req.Sort = sort

	after, err := DecodeCursor(query.Get("after"), sort.Key)
	if err != nil {
		return Request{}, err
	}
	req.After = after

	return req, nil
}

func parseLimit(raw string, limits Limits) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return limits.Default, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("limit", "Invalid limit value")
	}
	if limit < 1 {
		return 0, domain.NewValidationError("limit", "limit must be a positive integer")
	}
	if limits.Max > 0 && limit > limits.Max {
		limit = limits.Max
	}
	return limit, nil
}
