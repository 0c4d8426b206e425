package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/exmosaul/queteparece/internal/auth"
	"github.com/exmosaul/queteparece/internal/httputil"
	"github.com/exmosaul/queteparece/pkg/discovery"
)

// Client validates bearer tokens against the auth service, resolved through
// the service registry.
type Client struct {
	registry discovery.Registry
}

// New creates an auth service client.
func New(registry discovery.Registry) *Client {
	return &Client{registry: registry}
}

// Validate implements auth.TokenValidator.
func (c *Client) Validate(ctx context.Context, token string) (string, error) {
	base, err := httputil.ServiceURL(ctx, "auth", c.registry)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/validate", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := httputil.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return "", auth.ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth service responded with %v", resp.StatusCode)
	}
	var body struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.UID, nil
}
