package domain

import "fmt"

// TitleTypeMovie is the only title type exposed by the API.
const TitleTypeMovie = "movie"

const imdbLinkTemplate = "https://www.imdb.com/title/%s/"

// Movie is a title_basics row joined with its optional title_ratings row.
type Movie struct {
	ID      string
	Title   string
	Genres  string
	Year    int
	Runtime int
	// Rating is nil when the title has no ratings row.
	Rating *float64
}

// IMDbLink returns the public IMDb page for the movie.
func (m Movie) IMDbLink() string {
	return fmt.Sprintf(imdbLinkTemplate, m.ID)
}

// RatingOrSentinel returns the rating, or -1 when the movie is unrated.
func (m Movie) RatingOrSentinel() float64 {
	if m.Rating == nil {
		return MissingRating
	}
	return *m.Rating
}

// MissingRating is the value an absent rating takes for sorting, filtering and cursors.
const MissingRating = -1.0
