package recommend

import (
	"context"
	"errors"

	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

// MaxRecommended is the number of movies a profile may showcase.
const MaxRecommended = 4

// ErrNotFound is returned when the user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrTooMany is returned when more than MaxRecommended distinct movies are
// submitted.
var ErrTooMany = errors.New("too many recommended movies")

type userRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	Update(ctx context.Context, uid string, fn func(*model.User) error) error
}

// Controller owns the ordered recommended-movies list shown on a profile.
type Controller struct {
	repo userRepository
}

// New creates a recommendations controller.
func New(repo userRepository) *Controller {
	return &Controller{repo: repo}
}

// Set replaces the user's recommended list with the given movie ids,
// deduplicated with order preserved.
func (c *Controller) Set(ctx context.Context, uid string, movieIDs []string) error {
	deduped := make([]string, 0, len(movieIDs))
	seen := map[string]bool{}
	for _, id := range movieIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	if len(deduped) > MaxRecommended {
		return ErrTooMany
	}
	err := c.repo.Update(ctx, uid, func(u *model.User) error {
		u.RecommendedMovies = deduped
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// List returns the user's recommended movie ids in display order.
func (c *Controller) List(ctx context.Context, uid string) ([]string, error) {
	u, err := c.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u.RecommendedMovies, nil
}
