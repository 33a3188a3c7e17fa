package recallbricks

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BaSui01/recallbricks/internal/parse"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

// GetRelationships returns the relationships of one memory.
func (c *Client) GetRelationships(ctx context.Context, memoryID string) (types.JSONMap, error) {
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "relationships",
		Method:    http.MethodGet,
		Path:      transport.Path("/relationships/memory", memoryID),
	})
	if err != nil {
		return nil, err
	}
	return parse.Map(raw)
}

// GetGraphContext returns the relationship graph around a memory, traversed
// up to depth hops. depth must be within [0, validate.MaxGraphDepth].
func (c *Client) GetGraphContext(ctx context.Context, memoryID string, depth int) (types.JSONMap, error) {
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	d, err := validate.Depth(depth)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "graph_context",
		Method:    http.MethodGet,
		Path:      transport.Path("/relationships/graph", memoryID),
		Query:     url.Values{"depth": {strconv.Itoa(d)}},
	})
	if err != nil {
		return nil, err
	}
	return parse.Map(raw)
}
