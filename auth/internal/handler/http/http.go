package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SecretProvider supplies the HMAC signing secret. A func rather than a
// value so the secret can be rotated without restarting the service.
type SecretProvider func() []byte

// Handler issues and validates the signed tokens the other services trust.
type Handler struct {
	secretProvider SecretProvider
}

func New(secretProvider SecretProvider) *Handler {
	return &Handler{secretProvider: secretProvider}
}

// Register mounts the auth routes.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/token", h.getToken)
	r.GET("/validate", h.validateToken)
}

func (h *Handler) getToken(c *gin.Context) {
	var req struct {
		UID      string `json:"uid" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validCredentials(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      req.UID,
		"username": req.Username,
		"iat":      time.Now().Unix(),
	})
	tokenString, err := token.SignedString(h.secretProvider())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func validCredentials(username string, password string) bool {
	return username != "" && password != ""
}

func (h *Handler) validateToken(c *gin.Context) {
	raw, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.secretProvider(), nil
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":      stringClaim(claims, "uid"),
		"username": stringClaim(claims, "username"),
	})
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
