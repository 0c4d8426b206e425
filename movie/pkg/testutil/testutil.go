package testutil

import (
	"context"

	"github.com/uber-go/tally/v4"

	moviectrl "github.com/exmosaul/queteparece/movie/internal/controller/movie"
	"github.com/exmosaul/queteparece/movie/internal/controller/rating"
	"github.com/exmosaul/queteparece/movie/internal/controller/review"
	httphandler "github.com/exmosaul/queteparece/movie/internal/handler/http"
	"github.com/exmosaul/queteparece/movie/internal/repository/memory"
	"github.com/exmosaul/queteparece/pkg/locale"
	usermodel "github.com/exmosaul/queteparece/social/pkg/model"
)

// StaticUsers is an in-process user gateway, to be used in tests.
type StaticUsers map[string]*usermodel.User

// Get returns the user or review.ErrNotFound.
func (s StaticUsers) Get(_ context.Context, uid string) (*usermodel.User, error) {
	u, ok := s[uid]
	if !ok {
		return nil, review.ErrNotFound
	}
	return u, nil
}

// NewMovieHandler creates a movie HTTP handler backed by memory storage, to
// be used in tests.
func NewMovieHandler(users StaticUsers) (*httphandler.Handler, *memory.Repository) {
	repo := memory.New()
	movies := moviectrl.New(repo, locale.DefaultLocale)
	reviews := review.New(repo, users)
	ratings := rating.New(repo, nil)
	return httphandler.New(movies, reviews, ratings, tally.NoopScope), repo
}
