package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uber-go/tally/v4"

	"github.com/exmosaul/queteparece/internal/auth"
	"github.com/exmosaul/queteparece/social/internal/controller/favorites"
	"github.com/exmosaul/queteparece/social/internal/controller/recommend"
	"github.com/exmosaul/queteparece/social/internal/controller/relationship"
	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

type userGetter interface {
	Get(ctx context.Context, uid string) (*model.User, error)
}

// Handler defines the social service HTTP handlers.
type Handler struct {
	relationships   *relationship.Controller
	favorites       *favorites.Controller
	recommendations *recommend.Controller
	users           userGetter
	metrics         tally.Scope
}

// New creates a new social service HTTP handler.
func New(relationships *relationship.Controller, favs *favorites.Controller, recommendations *recommend.Controller, users userGetter, metrics tally.Scope) *Handler {
	return &Handler{
		relationships:   relationships,
		favorites:       favs,
		recommendations: recommendations,
		users:           users,
		metrics:         metrics,
	}
}

// Register mounts the social routes. All routes require a valid bearer token.
func (h *Handler) Register(r gin.IRouter, v auth.TokenValidator) {
	// User documents are read service-to-service (author snapshots) and by
	// the client's profile views; no caller identity is involved.
	r.GET("/users/:id", h.count, h.getUser)

	g := r.Group("/", auth.Middleware(v), h.count)
	g.GET("/friends", h.listFriends)
	g.DELETE("/friends/:friendId", h.removeFriend)
	g.GET("/friends/status/:targetId", h.friendStatus)
	g.GET("/friends/requests", h.listRequests)
	g.POST("/friends/requests", h.sendRequest)
	g.POST("/friends/requests/:senderId/accept", h.acceptRequest)
	g.DELETE("/friends/requests/:senderId", h.rejectRequest)

	g.GET("/favorites", h.listFavorites)
	g.GET("/favorites/:movieId", h.isFavorite)
	g.PUT("/favorites/:movieId", h.addFavorite)
	g.DELETE("/favorites/:movieId", h.removeFavorite)

	g.PUT("/recommendations", h.setRecommendations)
}

func (h *Handler) count(c *gin.Context) {
	h.metrics.Counter("http_requests").Inc(1)
	c.Next()
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) listFriends(c *gin.Context) {
	ids, err := h.relationships.Friends(c.Request.Context(), auth.UID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": emptyIfNil(ids)})
}

func (h *Handler) listRequests(c *gin.Context) {
	ids, err := h.relationships.Requests(c.Request.Context(), auth.UID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friendRequests": emptyIfNil(ids)})
}

func (h *Handler) friendStatus(c *gin.Context) {
	status, err := h.relationships.Status(c.Request.Context(), auth.UID(c), c.Param("targetId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) sendRequest(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.relationships.SendRequest(c.Request.Context(), auth.UID(c), req.ReceiverID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) acceptRequest(c *gin.Context) {
	if err := h.relationships.Accept(c.Request.Context(), auth.UID(c), c.Param("senderId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) rejectRequest(c *gin.Context) {
	if err := h.relationships.Reject(c.Request.Context(), auth.UID(c), c.Param("senderId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFriend(c *gin.Context) {
	if err := h.relationships.RemoveFriend(c.Request.Context(), auth.UID(c), c.Param("friendId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listFavorites(c *gin.Context) {
	ids, err := h.favorites.List(c.Request.Context(), auth.UID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": emptyIfNil(ids)})
}

func (h *Handler) isFavorite(c *gin.Context) {
	fav, err := h.favorites.IsFavorite(c.Request.Context(), auth.UID(c), c.Param("movieId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": fav})
}

func (h *Handler) addFavorite(c *gin.Context) {
	if err := h.favorites.Add(c.Request.Context(), auth.UID(c), c.Param("movieId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.favorites.Remove(c.Request.Context(), auth.UID(c), c.Param("movieId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setRecommendations(c *gin.Context) {
	var req struct {
		MovieIDs []string `json:"movieIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.recommendations.Set(c.Request.Context(), auth.UID(c), req.MovieIDs); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.metrics.Counter("http_errors").Inc(1)
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, relationship.ErrSelfRequest), errors.Is(err, recommend.ErrTooMany):
		return http.StatusBadRequest
	case errors.Is(err, relationship.ErrNotFound),
		errors.Is(err, favorites.ErrNotFound),
		errors.Is(err, recommend.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, relationship.ErrPartialState):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
