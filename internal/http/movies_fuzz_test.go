package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func FuzzHandleListMovies(f *testing.F) {
	seeds := []string{
		"sort=primarytitle,desc&after=Alpha,%20Beta,tt0000001",
		"sort=averagerating&after=null,tt1",
		"limit=abc",
		"limit=200&genre=%25_",
		"rating_gt=1e400",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	srv := buildTestServer(f, newFakeMovieStore(), fakeHealth{})
	f.Fuzz(func(t *testing.T, raw string) {
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.URL.RawQuery = raw
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK && rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d", raw, rec.Code)
		}
	})
}

func FuzzHandleCreateMovie(f *testing.F) {
	seeds := []string{
		`{"tconst":"tt1","title":"T","genre":"G","year":2000,"rating":5,"runtime":90}`,
		`{"tconst":"tt1","title":"T","genre":"G","year":"2000","rating":"5.5","runtime":"90"}`,
		`{"year":null}`,
		`[]`,
		`{`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, body string) {
		srv := buildTestServer(t, newFakeMovieStore(), fakeHealth{})
		req := httptest.NewRequest(http.MethodPost, "/movies", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		switch rec.Code {
		case http.StatusCreated, http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		default:
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	})
}
