package movie

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exmosaul/queteparece/movie/internal/repository/memory"
	"github.com/exmosaul/queteparece/movie/pkg/model"
	"github.com/exmosaul/queteparece/pkg/locale"
)

func TestGetResolvesLocale(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.PutMovie(ctx, &model.Movie{
		ID:          "m1",
		Title:       locale.New(map[string]string{"es": "El Padrino", "en": "The Godfather"}),
		Description: locale.New(map[string]string{"es": "Un clásico"}),
		Rating:      8.5,
		RatingCount: 12,
	}))
	c := New(repo, "es")

	details, err := c.Get(ctx, "m1", "en")
	require.NoError(t, err)
	assert.Equal(t, "The Godfather", details.Title)
	assert.Equal(t, "Un clásico", details.Description, "missing locale falls back to default")
	assert.Equal(t, 8.5, details.Rating)
	assert.Equal(t, 12, details.RatingCount)
}

func TestGetLegacyPlainTitle(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.PutMovie(ctx, &model.Movie{ID: "m1", Title: locale.Plain("Casablanca")}))
	c := New(repo, "es")

	details, err := c.Get(ctx, "m1", "en")
	require.NoError(t, err)
	assert.Equal(t, "Casablanca", details.Title)
	assert.Empty(t, details.Description)
}

func TestGetNotFound(t *testing.T) {
	c := New(memory.New(), "es")
	_, err := c.Get(context.Background(), "missing", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}
