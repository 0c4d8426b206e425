package memory

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/exmosaul/queteparece/movie/internal/repository"
	"github.com/exmosaul/queteparece/movie/pkg/model"
)

const tracerID = "movie-repository-memory"

// Repository defines a memory movie repository: catalog documents, their
// review subcollection and their rating samples. Updates run under the
// repository lock, which stands in for the store's transactional
// read-modify-write primitive.
type Repository struct {
	sync.RWMutex
	movies  map[string]*model.Movie
	reviews map[string]map[string]*model.Review
	ratings map[string]map[string]*model.RatingSample
}

// New creates a new memory repository.
func New() *Repository {
	return &Repository{
		movies:  map[string]*model.Movie{},
		reviews: map[string]map[string]*model.Review{},
		ratings: map[string]map[string]*model.RatingSample{},
	}
}

// GetMovie retrieves a movie document by id.
func (r *Repository) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetMovie")
	defer span.End()

	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.Clone(), nil
}

// PutMovie stores a movie document under its id, overwriting any existing one.
func (r *Repository) PutMovie(ctx context.Context, movie *model.Movie) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/PutMovie")
	defer span.End()

	r.movies[movie.ID] = movie.Clone()
	return nil
}

// SetAggregate writes the recomputed rating aggregate onto the movie document.
func (r *Repository) SetAggregate(ctx context.Context, movieID string, rating float64, count int) error {
	r.Lock()
	defer r.Unlock()
	m, ok := r.movies[movieID]
	if !ok {
		return repository.ErrNotFound
	}
	m.Rating = rating
	m.RatingCount = count
	return nil
}

// CreateReview stores a new review under the movie.
func (r *Repository) CreateReview(ctx context.Context, movieID string, review *model.Review) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.movies[movieID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.reviews[movieID]; !ok {
		r.reviews[movieID] = map[string]*model.Review{}
	}
	r.reviews[movieID][review.ID] = review.Clone()
	return nil
}

// GetReview retrieves one review of a movie.
func (r *Repository) GetReview(ctx context.Context, movieID, reviewID string) (*model.Review, error) {
	r.RLock()
	defer r.RUnlock()
	rev, ok := r.reviews[movieID][reviewID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rev.Clone(), nil
}

// ListReviews returns the movie's reviews ordered by id.
func (r *Repository) ListReviews(ctx context.Context, movieID string) ([]model.Review, error) {
	r.RLock()
	defer r.RUnlock()
	if _, ok := r.movies[movieID]; !ok {
		return nil, repository.ErrNotFound
	}
	res := make([]model.Review, 0, len(r.reviews[movieID]))
	for _, rev := range r.reviews[movieID] {
		res = append(res, *rev.Clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// UpdateReview applies fn to the review document as an atomic
// read-modify-write. If fn returns an error no write happens.
func (r *Repository) UpdateReview(ctx context.Context, movieID, reviewID string, fn func(*model.Review) error) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateReview")
	defer span.End()

	rev, ok := r.reviews[movieID][reviewID]
	if !ok {
		return repository.ErrNotFound
	}
	c := rev.Clone()
	if err := fn(c); err != nil {
		return err
	}
	r.reviews[movieID][reviewID] = c
	return nil
}

// DeleteReview removes a review of a movie. Idempotent.
func (r *Repository) DeleteReview(ctx context.Context, movieID, reviewID string) error {
	r.Lock()
	defer r.Unlock()
	delete(r.reviews[movieID], reviewID)
	return nil
}

// PutRating stores the user's rating sample for a movie, overwriting any
// previous sample by the same user.
func (r *Repository) PutRating(ctx context.Context, movieID string, sample *model.RatingSample) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.movies[movieID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.ratings[movieID]; !ok {
		r.ratings[movieID] = map[string]*model.RatingSample{}
	}
	c := *sample
	r.ratings[movieID][sample.UserID] = &c
	return nil
}

// GetRating retrieves the user's rating sample for a movie.
func (r *Repository) GetRating(ctx context.Context, movieID, userID string) (*model.RatingSample, error) {
	r.RLock()
	defer r.RUnlock()
	s, ok := r.ratings[movieID][userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *s
	return &c, nil
}

// ListRatings returns all rating samples for a movie.
func (r *Repository) ListRatings(ctx context.Context, movieID string) ([]model.RatingSample, error) {
	r.RLock()
	defer r.RUnlock()
	if _, ok := r.movies[movieID]; !ok {
		return nil, repository.ErrNotFound
	}
	res := make([]model.RatingSample, 0, len(r.ratings[movieID]))
	for _, s := range r.ratings[movieID] {
		res = append(res, *s)
	}
	return res, nil
}

// DeleteRating removes the user's rating sample for a movie. Idempotent.
func (r *Repository) DeleteRating(ctx context.Context, movieID, userID string) error {
	r.Lock()
	defer r.Unlock()
	delete(r.ratings[movieID], userID)
	return nil
}
