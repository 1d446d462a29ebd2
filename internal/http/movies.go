package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/imdb-titles-api/internal/domain"
	"github.com/Clark-Hu/imdb-titles-api/internal/listing"
	"github.com/Clark-Hu/imdb-titles-api/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	msgInvalidJSON      = "Invalid JSON payload"
	msgMissingFields    = "Missing required fields"
	msgYearNotInteger   = "Year must be an integer"
	msgRatingNotNumber  = "Rating must be a number"
	msgRuntimeNotInt    = "Runtime must be an integer"
	msgMovieNotFound    = "Movie not found"
	msgMovieExists      = "Movie with that ID already exists"
	msgInternalError    = "Internal server error"
	msgBodyTooLarge     = "Request body too large"
	msgInvalidFieldType = "Invalid value for field %s"
)

type errorResponse struct {
	Error string `json:"error"`
}

// movieCreateRequest keeps numeric fields raw so integers and numeric strings are both accepted.
type movieCreateRequest struct {
	TConst  *string         `json:"tconst"`
	Title   *string         `json:"title"`
	Genre   *string         `json:"genre"`
	Year    json.RawMessage `json:"year"`
	Rating  json.RawMessage `json:"rating"`
	Runtime json.RawMessage `json:"runtime"`
}

type movieListResponse struct {
	Movies     []movieResponse `json:"movies"`
	NextCursor *string         `json:"next_cursor"`
}

type movieResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Genre    string   `json:"genre"`
	Year     int      `json:"year"`
	Rating   *float64 `json:"rating"`
	Runtime  int      `json:"runtime"`
	IMDbLink string   `json:"imdb_link"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	req, err := listing.ParseRequest(r.URL.Query(), s.limits)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	page, err := s.movies.List(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, fmt.Errorf("list movies: %w", err))
		return
	}

	items := make([]movieResponse, 0, len(page.Items))
	for _, movie := range page.Items {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{
		Movies:     items,
		NextCursor: page.NextCursor,
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusNotFound, msgMovieNotFound)
		return
	}

	movie, err := s.movies.GetByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := req.toMovie()
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if err := domain.ValidateNewMovie(movie); err != nil {
		s.respondServiceError(w, err)
		return
	}

	created, err := s.movies.Create(r.Context(), movie)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/movies/"+url.PathEscape(created.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(created))
}

// toMovie checks presence and coerces the numeric fields. Range checks are left to domain.ValidateNewMovie.
func (req movieCreateRequest) toMovie() (domain.Movie, error) {
	if req.TConst == nil || req.Title == nil || req.Genre == nil ||
		isAbsent(req.Year) || isAbsent(req.Rating) || isAbsent(req.Runtime) {
		return domain.Movie{}, domain.NewValidationError("", msgMissingFields)
	}

	year, ok := coerceInt(req.Year)
	if !ok {
		return domain.Movie{}, domain.NewValidationError("year", msgYearNotInteger)
	}
	rating, ok := coerceFloat(req.Rating)
	if !ok {
		return domain.Movie{}, domain.NewValidationError("rating", msgRatingNotNumber)
	}
	runtime, ok := coerceInt(req.Runtime)
	if !ok {
		return domain.Movie{}, domain.NewValidationError("runtime", msgRuntimeNotInt)
	}

	return domain.Movie{
		ID:      strings.TrimSpace(*req.TConst),
		Title:   strings.TrimSpace(*req.Title),
		Genres:  strings.TrimSpace(*req.Genre),
		Year:    year,
		Runtime: runtime,
		Rating:  &rating,
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// numericText returns the literal text of a JSON number or the trimmed content of a JSON string.
func numericText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func coerceInt(raw json.RawMessage) (int, bool) {
	text, ok := numericText(raw)
	if !ok {
		return 0, false
	}
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int(v), true
	}
	// Whole-valued floats such as 2020.0 are accepted.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func coerceFloat(raw json.RawMessage) (float64, bool) {
	text, ok := numericText(raw)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON body")

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Warn("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.As(err, &typeError) && typeError.Field != "":
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf(msgInvalidFieldType, typeError.Field))
	default:
		s.respondError(w, http.StatusBadRequest, msgInvalidJSON)
	}
}

// respondServiceError maps domain and repository errors to status codes.
// Unknown errors are logged and reported without their text.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, msgMovieNotFound)
	case errors.Is(err, repository.ErrConflict):
		s.respondError(w, http.StatusConflict, msgMovieExists)
	default:
		s.logger.Error("internal error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:       movie.ID,
		Title:    movie.Title,
		Genre:    movie.Genres,
		Year:     movie.Year,
		Rating:   movie.Rating,
		Runtime:  movie.Runtime,
		IMDbLink: movie.IMDbLink(),
	}
}

func decodeIDParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return "", fmt.Errorf("missing id parameter")
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid id parameter")
	}
	if !utf8.ValidString(id) || strings.ContainsRune(id, 0) {
		return "", fmt.Errorf("invalid id parameter")
	}
	return id, nil
}
