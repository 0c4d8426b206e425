package favorites

import (
	"context"
	"errors"

	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

// ErrNotFound is returned when the user does not exist.
var ErrNotFound = errors.New("user not found")

type userRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	Update(ctx context.Context, uid string, fn func(*model.User) error) error
}

// Controller owns a user's favorite-movie membership set. Single-document
// state with no cross-record invariant, so plain overwrites suffice.
type Controller struct {
	repo userRepository
}

// New creates a favorites controller.
func New(repo userRepository) *Controller {
	return &Controller{repo: repo}
}

// Add puts the movie in the user's favorites set. Idempotent.
func (c *Controller) Add(ctx context.Context, uid, movieID string) error {
	return wrapNotFound(c.repo.Update(ctx, uid, func(u *model.User) error {
		u.AddFavorite(movieID)
		return nil
	}))
}

// Remove drops the movie from the user's favorites set. Idempotent.
func (c *Controller) Remove(ctx context.Context, uid, movieID string) error {
	return wrapNotFound(c.repo.Update(ctx, uid, func(u *model.User) error {
		u.RemoveFavorite(movieID)
		return nil
	}))
}

// IsFavorite reports membership of the movie in the user's favorites set.
func (c *Controller) IsFavorite(ctx context.Context, uid, movieID string) (bool, error) {
	u, err := c.repo.Get(ctx, uid)
	if err != nil {
		return false, wrapNotFound(err)
	}
	return u.IsFavorite(movieID), nil
}

// List returns the user's favorite movie ids.
func (c *Controller) List(ctx context.Context, uid string) ([]string, error) {
	u, err := c.repo.Get(ctx, uid)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return u.Favorites, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
