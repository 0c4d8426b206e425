package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uber-go/tally/v4"

	"github.com/exmosaul/queteparece/internal/auth"
	moviectrl "github.com/exmosaul/queteparece/movie/internal/controller/movie"
	"github.com/exmosaul/queteparece/movie/internal/controller/rating"
	"github.com/exmosaul/queteparece/movie/internal/controller/review"
	"github.com/exmosaul/queteparece/movie/internal/repository"
)

// Handler defines the movie service HTTP handlers.
type Handler struct {
	movies  *moviectrl.Controller
	reviews *review.Controller
	ratings *rating.Controller
	metrics tally.Scope
}

// New creates a new movie service HTTP handler.
func New(movies *moviectrl.Controller, reviews *review.Controller, ratings *rating.Controller, metrics tally.Scope) *Handler {
	return &Handler{movies: movies, reviews: reviews, ratings: ratings, metrics: metrics}
}

// Register mounts the movie routes. All routes require a valid bearer token.
func (h *Handler) Register(r gin.IRouter, v auth.TokenValidator) {
	g := r.Group("/", auth.Middleware(v), h.count)
	g.GET("/movies/:id", h.getMovie)
	g.POST("/movies/:id/ratings", h.submitRating)
	g.GET("/movies/:id/ratings/me", h.userRating)
	g.GET("/movies/:id/reviews", h.listReviews)
	g.POST("/movies/:id/reviews", h.createReview)
	g.DELETE("/movies/:id/reviews/:reviewId", h.deleteReview)
	g.POST("/movies/:id/reviews/:reviewId/votes", h.toggleVote)
}

func (h *Handler) count(c *gin.Context) {
	h.metrics.Counter("http_requests").Inc(1)
	c.Next()
}

func (h *Handler) getMovie(c *gin.Context) {
	details, err := h.movies.Get(c.Request.Context(), c.Param("id"), c.Query("locale"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) submitRating(c *gin.Context) {
	var req struct {
		Rating *int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.ratings.Submit(c.Request.Context(), c.Param("id"), auth.UID(c), *req.Rating); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) userRating(c *gin.Context) {
	v, err := h.ratings.UserRating(c.Request.Context(), c.Param("id"), auth.UID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": v})
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) createReview(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rev, err := h.reviews.Create(c.Request.Context(), c.Param("id"), auth.UID(c), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

func (h *Handler) deleteReview(c *gin.Context) {
	movieID, reviewID := c.Param("id"), c.Param("reviewId")
	rev, err := h.reviews.Get(c.Request.Context(), movieID, reviewID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rev.UserID != auth.UID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete a review"})
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), movieID, reviewID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toggleVote(c *gin.Context) {
	var req struct {
		Like *bool `json:"like" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rev, err := h.reviews.ToggleVote(c.Request.Context(), c.Param("id"), c.Param("reviewId"), auth.UID(c), *req.Like)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.metrics.Counter("http_errors").Inc(1)
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, review.ErrEmptyText), errors.Is(err, rating.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, moviectrl.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, rating.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
