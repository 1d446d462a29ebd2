package listing

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

func TestParseRequest_Defaults(t *testing.T) {
	req, err := ParseRequest(url.Values{}, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, req.Sort)
	assert.Equal(t, 20, req.Limit)
	assert.Nil(t, req.After)
	assert.Equal(t, Filter{}, req.Filter)
}

func TestParseRequest_Limit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"50", 50, false},
		{"100", 100, false},
		{"5000", 100, false},
		{" 7 ", 7, false},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := ParseRequest(url.Values{"limit": {tt.raw}}, DefaultLimits)
			if tt.wantErr {
				var vErr *domain.ValidationError
				require.True(t, errors.As(err, &vErr), "got %v", err)
				assert.Equal(t, "limit", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Limit)
		})
	}
}

func TestParseRequest_UnboundedLimit(t *testing.T) {
	req, err := ParseRequest(url.Values{"limit": {"5000"}}, Limits{Default: 20})
	require.NoError(t, err)
	assert.Equal(t, 5000, req.Limit)
}

func TestParseRequest_CursorFollowsSortKey(t *testing.T) {
	req, err := ParseRequest(url.Values{"sort": {"averagerating"}, "after": {"null,tt0000001"}}, DefaultLimits)
	require.NoError(t, err)
	require.NotNil(t, req.After)
	assert.Equal(t, SortAverageRating, req.After.Key)
	assert.Equal(t, -1.0, req.After.Value)

	_, err = ParseRequest(url.Values{"after": {"Casablanca,tt0034583"}}, DefaultLimits)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "after", vErr.Field)
}

func FuzzParseRequest(f *testing.F) {
	seeds := []string{
		"sort=primarytitle,desc&after=Alien,tt0078748&limit=5",
		"sort=averagerating&after=null,tt1",
		"genre=Drama&rating_gt=7&rating_lt=9",
		"limit=abc",
		"after=bad",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		req, err := ParseRequest(values, DefaultLimits)
		if err != nil {
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("non-validation error for %q: %v", raw, err)
			}
			return
		}
		if _, _, err := Build(req); err != nil {
			t.Fatalf("Build failed for accepted request %q: %v", raw, err)
		}
	})
}
