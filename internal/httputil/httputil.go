package httputil

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/exmosaul/queteparece/pkg/discovery"
)

// Client is the shared HTTP client for service-to-service calls.
var Client = &http.Client{Timeout: 5 * time.Second}

// ServiceURL resolves a base URL for a registered service, picking a random
// active instance.
func ServiceURL(ctx context.Context, serviceName string, registry discovery.Registry) (string, error) {
	addrs, err := registry.ServiceAddresses(ctx, serviceName)
	if err != nil {
		return "", err
	}
	return "http://" + addrs[rand.Intn(len(addrs))], nil
}
