package movie

import (
	"context"
	"errors"

	"github.com/exmosaul/queteparece/movie/internal/repository"
	"github.com/exmosaul/queteparece/movie/pkg/model"
)

// ErrNotFound is returned when the movie does not exist.
var ErrNotFound = errors.New("movie not found")

type movieRepository interface {
	GetMovie(ctx context.Context, id string) (*model.Movie, error)
}

// Controller serves the per-locale read view of a movie: localized fields
// resolved to single strings with the aggregate rating alongside.
type Controller struct {
	repo          movieRepository
	defaultLocale string
}

// New creates a movie controller resolving text against the given default
// locale.
func New(repo movieRepository, defaultLocale string) *Controller {
	return &Controller{repo: repo, defaultLocale: defaultLocale}
}

// Get returns the movie details with title and description resolved for the
// requested locale.
func (c *Controller) Get(ctx context.Context, id, localeCode string) (*model.MovieDetails, error) {
	m, err := c.repo.GetMovie(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.MovieDetails{
		ID:          m.ID,
		Title:       m.Title.Resolve(localeCode, c.defaultLocale),
		Description: m.Description.Resolve(localeCode, c.defaultLocale),
		ImageURL:    m.ImageURL,
		Genres:      m.Genres,
		Type:        m.Type,
		Rating:      m.Rating,
		RatingCount: m.RatingCount,
		Trailer:     m.Trailer,
	}, nil
}
