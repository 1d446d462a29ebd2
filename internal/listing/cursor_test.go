package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
)

func TestDecodeCursor(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		key       SortKey
		wantValue any
		wantID    string
	}{
		{"year", "1994,tt0111161", SortStartYear, 1994, "tt0111161"},
		{"rating", "9.3,tt0111161", SortAverageRating, 9.3, "tt0111161"},
		{"rating null token", "null,tt0000001", SortAverageRating, -1.0, "tt0000001"},
		{"rating None token", "None,tt0000001", SortAverageRating, -1.0, "tt0000001"},
		{"rating empty value", ",tt0000001", SortAverageRating, -1.0, "tt0000001"},
		{"rating sentinel", "-1,tt0000001", SortAverageRating, -1.0, "tt0000001"},
		{"title", "The Godfather,tt0068646", SortPrimaryTitle, "The Godfather", "tt0068646"},
		{"title with comma", "Good, Bad and Ugly,tt0060196", SortPrimaryTitle, "Good, Bad and Ugly", "tt0060196"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCursor(tt.raw, tt.key)
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, tt.key, c.Key)
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestDecodeCursor_Empty(t *testing.T) {
	c, err := DecodeCursor("", SortStartYear)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  SortKey
	}{
		{"no comma", "bad", SortStartYear},
		{"missing id", "1994,", SortStartYear},
		{"year not integer", "abc,tt1", SortStartYear},
		{"year float", "1994.5,tt1", SortStartYear},
		{"year overflow", "99999999999,tt1", SortStartYear},
		{"rating not number", "great,tt1", SortAverageRating},
		{"rating NaN", "NaN,tt1", SortAverageRating},
		{"title invalid utf8", "\xff,tt1", SortPrimaryTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.raw, tt.key)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, "after", vErr.Field)
		})
	}
}

func TestEncodeCursor(t *testing.T) {
	rating := 7.1
	rated := domain.Movie{ID: "tt0000002", Title: "Le Voyage, dans la lune", Year: 1902, Rating: &rating}
	unrated := domain.Movie{ID: "tt0000003", Title: "Untitled", Year: 1905}

	assert.Equal(t, "1902,tt0000002", EncodeCursor(SortStartYear, rated))
	assert.Equal(t, "7.1,tt0000002", EncodeCursor(SortAverageRating, rated))
	assert.Equal(t, "-1,tt0000003", EncodeCursor(SortAverageRating, unrated))
	assert.Equal(t, "Le Voyage, dans la lune,tt0000002", EncodeCursor(SortPrimaryTitle, rated))
}

func TestCursorRoundTrip(t *testing.T) {
	rating := 8.123456789
	m := domain.Movie{ID: "tt0000004", Title: "A, B, C", Year: 2001, Rating: &rating}

	for _, key := range allowedSortKeys {
		t.Run(string(key), func(t *testing.T) {
			c, err := DecodeCursor(EncodeCursor(key, m), key)
			require.NoError(t, err)
			assert.Equal(t, m.ID, c.ID)
			switch key {
			case SortStartYear:
				assert.Equal(t, m.Year, c.Value)
			case SortAverageRating:
				assert.Equal(t, rating, c.Value)
			case SortPrimaryTitle:
				assert.Equal(t, m.Title, c.Value)
			}
		})
	}
}

func TestCursorPredicate(t *testing.T) {
	c := Cursor{Key: SortStartYear, Value: 1994, ID: "tt0111161"}

	t.Run("ascending", func(t *testing.T) {
		query, args, err := c.Predicate(Asc).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "(tb.startyear > ? OR (tb.startyear = ? AND tb.tconst > ?))", query)
		assert.Equal(t, []any{1994, 1994, "tt0111161"}, args)
	})

	t.Run("descending flips only the primary comparison", func(t *testing.T) {
		query, args, err := c.Predicate(Desc).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "(tb.startyear < ? OR (tb.startyear = ? AND tb.tconst > ?))", query)
		assert.Equal(t, []any{1994, 1994, "tt0111161"}, args)
	})
}
