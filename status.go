package recallbricks

import (
	"context"
	"net/http"

	"github.com/BaSui01/recallbricks/internal/parse"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/types"
)

// Health reports the API's health.
func (c *Client) Health(ctx context.Context) (types.JSONMap, error) {
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "health",
		Method:    http.MethodGet,
		Path:      "/health",
	})
	if err != nil {
		return nil, err
	}
	return parse.Map(raw)
}

// GetRateLimit returns the caller's current quota window.
func (c *Client) GetRateLimit(ctx context.Context) (*types.RateLimitStatus, error) {
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "rate_limit",
		Method:    http.MethodGet,
		Path:      "/rate-limit",
	})
	if err != nil {
		return nil, err
	}
	status, err := parse.Decode[types.RateLimitStatus](raw, parse.ObjectShape())
	if err != nil {
		return nil, err
	}
	return &status, nil
}
