package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/exmosaul/queteparece/movie/internal/repository"
	"github.com/exmosaul/queteparece/movie/pkg/model"
)

// Rating values are a fixed 1..10 integer scale.
const (
	MinRating = 1
	MaxRating = 10
)

// ErrNotFound is returned when the movie or the user's sample does not exist.
var ErrNotFound = errors.New("not found")

// ErrOutOfRange is returned for a rating value outside the 1..10 scale.
var ErrOutOfRange = fmt.Errorf("rating value must be between %d and %d", MinRating, MaxRating)

type ratingRepository interface {
	PutRating(ctx context.Context, movieID string, sample *model.RatingSample) error
	GetRating(ctx context.Context, movieID, userID string) (*model.RatingSample, error)
	ListRatings(ctx context.Context, movieID string) ([]model.RatingSample, error)
	DeleteRating(ctx context.Context, movieID, userID string) error
	SetAggregate(ctx context.Context, movieID string, rating float64, count int) error
}

// Ingester feeds rating events from an external source such as Kafka.
type Ingester interface {
	Ingest(ctx context.Context) (chan model.RatingEvent, error)
}

// Controller owns per-user rating samples and the movie's displayed
// aggregate. The aggregate is recomputed from all samples on every write
// rather than maintained incrementally; concurrent submissions may race on
// the final aggregate write and the last writer wins.
type Controller struct {
	repo     ratingRepository
	ingester Ingester
	now      func() time.Time
}

// New creates a rating controller. ingester may be nil if event ingestion is
// not used.
func New(repo ratingRepository, ingester Ingester) *Controller {
	return &Controller{repo: repo, ingester: ingester, now: time.Now}
}

// Submit writes or overwrites the user's rating sample for the movie, then
// recomputes the movie's aggregate from the full sample set.
func (c *Controller) Submit(ctx context.Context, movieID, userID string, value int) error {
	if value < MinRating || value > MaxRating {
		return ErrOutOfRange
	}
	sample := &model.RatingSample{
		UserID:    userID,
		Rating:    value,
		Timestamp: c.now().UnixMilli(),
	}
	if err := c.repo.PutRating(ctx, movieID, sample); err != nil {
		return wrapNotFound(err)
	}
	return c.recompute(ctx, movieID)
}

// Delete removes the user's rating sample and recomputes the aggregate.
func (c *Controller) Delete(ctx context.Context, movieID, userID string) error {
	if err := c.repo.DeleteRating(ctx, movieID, userID); err != nil {
		return wrapNotFound(err)
	}
	return c.recompute(ctx, movieID)
}

// UserRating returns the user's current rating of the movie.
func (c *Controller) UserRating(ctx context.Context, movieID, userID string) (int, error) {
	s, err := c.repo.GetRating(ctx, movieID, userID)
	if err != nil {
		return 0, wrapNotFound(err)
	}
	return s.Rating, nil
}

func (c *Controller) recompute(ctx context.Context, movieID string) error {
	samples, err := c.repo.ListRatings(ctx, movieID)
	if err != nil {
		return wrapNotFound(err)
	}
	var sum int
	for _, s := range samples {
		sum += s.Rating
	}
	avg := 0.0
	if len(samples) > 0 {
		avg = float64(sum) / float64(len(samples))
	}
	return wrapNotFound(c.repo.SetAggregate(ctx, movieID, avg, len(samples)))
}

// StartIngestion applies rating events from the ingester until the context
// is cancelled or the event channel closes.
func (c *Controller) StartIngestion(ctx context.Context, logger *zap.Logger) error {
	ch, err := c.ingester.Ingest(ctx)
	if err != nil {
		return err
	}
	for e := range ch {
		var err error
		switch e.EventType {
		case model.RatingEventTypePut:
			err = c.Submit(ctx, e.MovieID, e.UserID, e.Rating)
		case model.RatingEventTypeDelete:
			err = c.Delete(ctx, e.MovieID, e.UserID)
		default:
			logger.Warn("Skipping rating event of unknown type", zap.String("eventType", string(e.EventType)))
			continue
		}
		if err != nil {
			logger.Error("Failed to apply rating event",
				zap.String("movieId", e.MovieID), zap.String("userId", e.UserID), zap.Error(err))
		}
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
