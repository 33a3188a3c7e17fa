package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const searchPath = BasePath + "/search"

// Sort orders accepted by SearchClient.Filtered.
const (
	SortRelevance  = "relevance"
	SortRecency    = "recency"
	SortImportance = "importance"
)

// Aggregations accepted by SearchClient.Aggregate.
const (
	AggregateCount = "count"
	AggregateAvg   = "avg"
	AggregateSum   = "sum"
)

// SearchClient runs advanced searches across an agent's memories.
type SearchClient struct{ s *service }

// SemanticSearchOptions configures SearchClient.Semantic.
type SemanticSearchOptions struct {
	// Limit defaults to 10.
	Limit       int
	MinScore    float64
	MemoryTypes []string
	Metadata    types.JSONMap
}

type semanticSearchRequest struct {
	AgentID     string        `json:"agent_id"`
	Query       string        `json:"query"`
	Limit       int           `json:"limit"`
	MinScore    float64       `json:"min_score"`
	MemoryTypes []string      `json:"memory_types,omitempty"`
	Metadata    types.JSONMap `json:"metadata,omitempty"`
}

// Semantic runs a semantic search.
func (c *SearchClient) Semantic(ctx context.Context, agent, query string, opts SemanticSearchOptions) (types.JSONMap, error) {
	id, q, err := agentAndQuery(agent, query)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 10)
	if err != nil {
		return nil, err
	}
	if err := validate.FloatRange("min_score", opts.MinScore, 0, 1); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "search.semantic", searchPath, semanticSearchRequest{
		AgentID:     id,
		Query:       q,
		Limit:       n,
		MinScore:    opts.MinScore,
		MemoryTypes: opts.MemoryTypes,
		Metadata:    opts.Metadata,
	})
}

// FilteredSearchOptions configures SearchClient.Filtered.
type FilteredSearchOptions struct {
	Query   string
	Filters types.JSONMap
	// Limit defaults to 10.
	Limit int
	// SortBy defaults to SortRelevance.
	SortBy string
}

// Filtered searches with structured filters and an optional query.
func (c *SearchClient) Filtered(ctx context.Context, agent string, opts FilteredSearchOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 10)
	if err != nil {
		return nil, err
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortRelevance
	}
	if err := validate.OneOf("sort_by", sortBy, SortRelevance, SortRecency, SortImportance); err != nil {
		return nil, err
	}
	body := map[string]any{"agent_id": id, "limit": n, "sort_by": sortBy}
	if q := sanitize.Content(opts.Query); q != "" {
		body["query"] = q
	}
	if len(opts.Filters) > 0 {
		body["filters"] = opts.Filters
	}
	return c.s.post(ctx, "search.filtered", searchPath+"/filtered", body)
}

// HybridSearchOptions configures SearchClient.Hybrid. Nil weights default to
// 0.3 keyword and 0.7 semantic.
type HybridSearchOptions struct {
	KeywordWeight  *float64
	SemanticWeight *float64
	Limit          int
}

// Hybrid combines keyword and semantic ranking.
func (c *SearchClient) Hybrid(ctx context.Context, agent, query string, opts HybridSearchOptions) (types.JSONMap, error) {
	id, q, err := agentAndQuery(agent, query)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 10)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "search.hybrid", searchPath+"/hybrid", map[string]any{
		"agent_id":        id,
		"query":           q,
		"keyword_weight":  unit(opts.KeywordWeight, 0.3),
		"semantic_weight": unit(opts.SemanticWeight, 0.7),
		"limit":           n,
	})
}

// Similar finds memories similar to memoryID, excluding memoryID itself
// unless includeSelf is set. maxResults 0 means 10.
func (c *SearchClient) Similar(ctx context.Context, agent, memoryID string, maxResults int, includeSelf bool) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 10)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "search.similar", searchPath+"/similar", map[string]any{
		"agent_id":     id,
		"memory_id":    memoryID,
		"limit":        n,
		"exclude_self": !includeSelf,
	})
}

// TemporalSearchOptions configures SearchClient.Temporal. Times are RFC 3339.
type TemporalSearchOptions struct {
	StartTime string
	EndTime   string
	Query     string
	// Limit defaults to 20.
	Limit int
}

// Temporal searches memories within a time range.
func (c *SearchClient) Temporal(ctx context.Context, agent string, opts TemporalSearchOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 20)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"agent_id": id, "limit": n}
	if opts.StartTime != "" {
		body["start_time"] = opts.StartTime
	}
	if opts.EndTime != "" {
		body["end_time"] = opts.EndTime
	}
	if q := sanitize.Content(opts.Query); q != "" {
		body["query"] = q
	}
	return c.s.post(ctx, "search.temporal", searchPath+"/temporal", body)
}

// Aggregate groups memories by groupBy. An empty aggregation means
// AggregateCount.
func (c *SearchClient) Aggregate(ctx context.Context, agent, groupBy, query, aggregation string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if err := validate.NonEmpty("group_by", groupBy); err != nil {
		return nil, err
	}
	if aggregation == "" {
		aggregation = AggregateCount
	}
	if err := validate.OneOf("aggregation", aggregation, AggregateCount, AggregateAvg, AggregateSum); err != nil {
		return nil, err
	}
	body := map[string]any{"agent_id": id, "group_by": groupBy, "aggregation": aggregation}
	if q := sanitize.Content(query); q != "" {
		body["query"] = q
	}
	return c.s.post(ctx, "search.aggregate", searchPath+"/aggregate", body)
}

// Suggest completes a partial query. maxResults 0 means 5.
func (c *SearchClient) Suggest(ctx context.Context, agent, partial string, maxResults int) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	p, err := required("partial_query", partial, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 5)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "search.suggest", searchPath+"/suggest", map[string]any{
		"agent_id":      id,
		"partial_query": p,
		"limit":         n,
	})
}

func agentAndQuery(agent, query string) (string, string, error) {
	id, err := agentID(agent)
	if err != nil {
		return "", "", err
	}
	q, err := required("query", query, sanitize.MaxContentLength)
	if err != nil {
		return "", "", err
	}
	return id, q, nil
}
