package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/exmosaul/queteparece/movie/internal/gateway"
	"github.com/exmosaul/queteparece/movie/internal/repository"
	"github.com/exmosaul/queteparece/movie/pkg/model"
	usermodel "github.com/exmosaul/queteparece/social/pkg/model"
)

// ErrNotFound is returned when the movie, review or author does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptyText is returned when a submitted review body is empty after
// trimming.
var ErrEmptyText = errors.New("review text must not be empty")

type reviewRepository interface {
	CreateReview(ctx context.Context, movieID string, review *model.Review) error
	GetReview(ctx context.Context, movieID, reviewID string) (*model.Review, error)
	ListReviews(ctx context.Context, movieID string) ([]model.Review, error)
	UpdateReview(ctx context.Context, movieID, reviewID string, fn func(*model.Review) error) error
	DeleteReview(ctx context.Context, movieID, reviewID string) error
}

type userGateway interface {
	Get(ctx context.Context, uid string) (*usermodel.User, error)
}

// Controller owns review submission and the like/dislike vote state. A voter
// is in at most one of the two voter sets, and the denormalized counts always
// equal the set cardinalities after a committed vote.
type Controller struct {
	repo  reviewRepository
	users userGateway
}

// New creates a review controller.
func New(repo reviewRepository, users userGateway) *Controller {
	return &Controller{repo: repo, users: users}
}

// Create submits a review with a snapshot of the author's display identity.
func (c *Controller) Create(ctx context.Context, movieID, authorID, text string) (*model.Review, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}
	author, err := c.users.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	username := author.Username
	if username == "" {
		username = author.Email
	}
	rev := &model.Review{
		ID:         uuid.NewString(),
		UserID:     authorID,
		Username:   username,
		UserPhoto:  author.PhotoURL,
		MovieID:    movieID,
		Text:       trimmed,
		LikedBy:    []string{},
		DislikedBy: []string{},
	}
	if err := c.repo.CreateReview(ctx, movieID, rev); err != nil {
		return nil, wrapNotFound(err)
	}
	return rev, nil
}

// ToggleVote moves the voter between like, dislike and neither. Requesting
// the direction the voter already holds withdraws the vote; requesting the
// opposite direction moves it. The whole transition, including the count
// rewrite, happens inside one repository transaction.
func (c *Controller) ToggleVote(ctx context.Context, movieID, reviewID, voterID string, wantLike bool) (*model.Review, error) {
	var updated *model.Review
	err := c.repo.UpdateReview(ctx, movieID, reviewID, func(r *model.Review) error {
		liked := contains(r.LikedBy, voterID)
		disliked := contains(r.DislikedBy, voterID)
		switch {
		case wantLike && liked:
			r.LikedBy = remove(r.LikedBy, voterID)
		case wantLike && disliked:
			r.DislikedBy = remove(r.DislikedBy, voterID)
			r.LikedBy = append(r.LikedBy, voterID)
		case wantLike:
			r.LikedBy = append(r.LikedBy, voterID)
		case disliked:
			r.DislikedBy = remove(r.DislikedBy, voterID)
		case liked:
			r.LikedBy = remove(r.LikedBy, voterID)
			r.DislikedBy = append(r.DislikedBy, voterID)
		default:
			r.DislikedBy = append(r.DislikedBy, voterID)
		}
		r.Likes = len(r.LikedBy)
		r.Dislikes = len(r.DislikedBy)
		updated = r.Clone()
		return nil
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return updated, nil
}

// List returns the movie's reviews.
func (c *Controller) List(ctx context.Context, movieID string) ([]model.Review, error) {
	res, err := c.repo.ListReviews(ctx, movieID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return res, nil
}

// Get returns one review of a movie.
func (c *Controller) Get(ctx context.Context, movieID, reviewID string) (*model.Review, error) {
	rev, err := c.repo.GetReview(ctx, movieID, reviewID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return rev, nil
}

// Delete removes a review.
func (c *Controller) Delete(ctx context.Context, movieID, reviewID string) error {
	return wrapNotFound(c.repo.DeleteReview(ctx, movieID, reviewID))
}

func wrapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := make([]string, 0, len(s))
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
