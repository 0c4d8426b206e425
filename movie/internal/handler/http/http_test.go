package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exmosaul/queteparece/movie/pkg/model"
	"github.com/exmosaul/queteparece/movie/pkg/testutil"
	"github.com/exmosaul/queteparece/pkg/locale"
	socialtestutil "github.com/exmosaul/queteparece/social/pkg/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler, repo := testutil.NewMovieHandler(testutil.StaticUsers{
		"alice": {UID: "alice", Username: "alice"},
	})
	require.NoError(t, repo.PutMovie(context.Background(), &model.Movie{
		ID:    "m1",
		Title: locale.New(map[string]string{"es": "El Padrino", "en": "The Godfather"}),
	}))
	handler.Register(router, socialtestutil.StaticValidator{"tok-alice": "alice"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok-alice")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetMovieLocale(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodGet, "/movies/m1?locale=en", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var details model.MovieDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&details))
	assert.Equal(t, "The Godfather", details.Title)
}

func TestGetMovieNotFound(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodGet, "/movies/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateAndReadBack(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/movies/m1/ratings", `{"rating":8}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/movies/m1/ratings/me", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Rating int `json:"rating"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 8, body.Rating)
}

func TestRateOutOfRange(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPost, "/movies/m1/ratings", `{"rating":11}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReviewLifecycle(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/movies/m1/reviews", `{"text":"great"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rev model.Review
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rev))

	resp = do(t, srv, http.MethodPost, "/movies/m1/reviews/"+rev.ID+"/votes", `{"like":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voted model.Review
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&voted))
	assert.Equal(t, 1, voted.Likes)
	assert.Equal(t, []string{"alice"}, voted.LikedBy)

	resp = do(t, srv, http.MethodDelete, "/movies/m1/reviews/"+rev.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEmptyReviewRejected(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPost, "/movies/m1/reviews", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
