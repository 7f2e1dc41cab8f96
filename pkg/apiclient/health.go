package apiclient

import (
	"context"
	"net/http"

	"github.com/marmos91/shapeview/internal/cli/health"
)

// Health queries the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*health.Response, error) {
	return getResource[health.Response](ctx, c, "/health", nil)
}

// Ready queries the readiness endpoint. A 503 is not an error: the body
// explains why the server is not ready.
func (c *Client) Ready(ctx context.Context) (*health.ReadyResponse, error) {
	resp, err := c.do(ctx, "/health/ready", nil, func(status int) bool {
		return status == http.StatusServiceUnavailable
	})
	if err != nil {
		return nil, err
	}

	var ready health.ReadyResponse
	if err := decode(resp.body, &ready); err != nil {
		return nil, err
	}
	return &ready, nil
}
