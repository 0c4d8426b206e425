package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exmosaul/queteparece/social/pkg/model"
	"github.com/exmosaul/queteparece/social/pkg/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler, repo := testutil.NewSocialHandler()
	for _, uid := range []string{"alice", "bob"} {
		require.NoError(t, repo.Put(context.Background(), &model.User{UID: uid, Username: uid}))
	}
	handler.Register(router, testutil.StaticValidator{"tok-alice": "alice", "tok-bob": "bob"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthRequired(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodGet, "/friends", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/friends", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFriendRequestFlow(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/friends/requests", "tok-alice", `{"receiverId":"bob"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/friends/status/bob", "tok-alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/friends/requests/alice/accept", "tok-bob", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/friends", "tok-alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSelfRequestRejected(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPost, "/friends/requests", "tok-alice", `{"receiverId":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownReceiver(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPost, "/friends/requests", "tok-alice", `{"receiverId":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFavorites(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPut, "/favorites/m1", "tok-alice", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/favorites/m1", "tok-alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/favorites/m1", "tok-alice", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRecommendationsCap(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPut, "/recommendations", "tok-alice",
		`{"movieIds":["m1","m2","m3","m4","m5"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
