package listing

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	query, args, err := Build(Request{Sort: DefaultSort, Limit: 20})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query,
		"SELECT tb.tconst, tb.primarytitle, tb.genres, tb.startyear, tb.runtimeminutes, tr.averagerating FROM title_basics tb LEFT JOIN title_ratings tr ON tb.tconst = tr.tconst"),
		query)
	assert.Contains(t, query, "WHERE tb.titletype = $1")
	assert.Contains(t, query, "ORDER BY tb.startyear ASC, tb.tconst ASC")
	assert.True(t, strings.HasSuffix(query, "LIMIT $2"), query)
	assert.Equal(t, []any{"movie", 20}, args)
}

func TestBuild_AllFragments(t *testing.T) {
	values := url.Values{
		"genre":     {"drama"},
		"rating_gt": {"7"},
		"rating_lt": {"9"},
		"sort":      {"averagerating,desc"},
		"after":     {"8.5,tt0000010"},
		"limit":     {"5"},
	}
	req, err := ParseRequest(values, DefaultLimits)
	require.NoError(t, err)

	query, args, err := Build(req)
	require.NoError(t, err)

	assert.Contains(t, query, "tb.titletype = $1")
	assert.Contains(t, query, "tb.genres ILIKE $2")
	assert.Contains(t, query, "COALESCE(tr.averagerating, -1) >= $3")
	assert.Contains(t, query, "COALESCE(tr.averagerating, -1) <= $4")
	assert.Contains(t, query, "(COALESCE(tr.averagerating, -1) < $5 OR (COALESCE(tr.averagerating, -1) = $6 AND tb.tconst > $7))")
	assert.Contains(t, query, "ORDER BY COALESCE(tr.averagerating, -1) DESC, tb.tconst ASC")
	assert.True(t, strings.HasSuffix(query, "LIMIT $8"), query)
	assert.Equal(t, []any{"movie", "%drama%", 7.0, 9.0, 8.5, 8.5, "tt0000010", 5}, args)
}

func TestBuild_NoUserTextInSQL(t *testing.T) {
	values := url.Values{
		"genre": {"x'; DROP TABLE title_basics; --"},
		"sort":  {"primarytitle"},
		"after": {"Robert'); DROP TABLE title_ratings;--,tt1"},
	}
	req, err := ParseRequest(values, DefaultLimits)
	require.NoError(t, err)

	query, _, err := Build(req)
	require.NoError(t, err)
	assert.NotContains(t, query, "DROP")
}

func TestBuild_RejectsInvalidRequests(t *testing.T) {
	_, _, err := Build(Request{Sort: DefaultSort})
	assert.Error(t, err)

	_, _, err = Build(Request{
		Sort:  DefaultSort,
		Limit: 10,
		After: &Cursor{Key: SortPrimaryTitle, Value: "A", ID: "tt1"},
	})
	assert.Error(t, err)
}

func TestSelectMovies(t *testing.T) {
	query, args, err := SelectMovies().Where("tb.tconst = ?", "tt1").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "LEFT JOIN title_ratings tr ON tb.tconst = tr.tconst")
	assert.Contains(t, query, "WHERE tb.tconst = $1")
	assert.Equal(t, []any{"tt1"}, args)
}
