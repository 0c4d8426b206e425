package testutil

import (
	"context"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/exmosaul/queteparece/internal/auth"
	"github.com/exmosaul/queteparece/social/internal/controller/favorites"
	"github.com/exmosaul/queteparece/social/internal/controller/recommend"
	"github.com/exmosaul/queteparece/social/internal/controller/relationship"
	httphandler "github.com/exmosaul/queteparece/social/internal/handler/http"
	"github.com/exmosaul/queteparece/social/internal/repository/memory"
)

// NewSocialHandler creates a social HTTP handler backed by memory storage,
// to be used in tests.
func NewSocialHandler() (*httphandler.Handler, *memory.Repository) {
	repo := memory.New()
	relationships := relationship.New(repo, zap.NewNop())
	return httphandler.New(relationships, favorites.New(repo), recommend.New(repo), repo, tally.NoopScope), repo
}

// StaticValidator maps bearer tokens to uids, to be used in tests.
type StaticValidator map[string]string

// Validate implements auth.TokenValidator.
func (v StaticValidator) Validate(_ context.Context, token string) (string, error) {
	uid, ok := v[token]
	if !ok {
		return "", auth.ErrInvalidToken
	}
	return uid, nil
}
