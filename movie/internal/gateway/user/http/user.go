package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/exmosaul/queteparece/internal/httputil"
	"github.com/exmosaul/queteparece/movie/internal/gateway"
	"github.com/exmosaul/queteparece/pkg/discovery"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

// Gateway defines an HTTP gateway for the social service's user documents.
type Gateway struct {
	registry discovery.Registry
}

// New creates a new user gateway.
func New(registry discovery.Registry) *Gateway {
	return &Gateway{registry: registry}
}

// Get returns the user document for uid or gateway.ErrNotFound.
func (g *Gateway) Get(ctx context.Context, uid string) (*model.User, error) {
	base, err := httputil.ServiceURL(ctx, "social", g.registry)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/users/"+uid, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httputil.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, gateway.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("social service responded with %v", resp.StatusCode)
	}
	var u model.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
