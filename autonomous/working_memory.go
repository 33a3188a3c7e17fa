package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const workingMemoryPath = BasePath + "/working-memory"

// Consolidation strategies accepted by WorkingMemoryClient.Consolidate.
const (
	StrategyImportance = "importance"
	StrategyRecency    = "recency"
	StrategyRelevance  = "relevance"
)

// WorkingMemoryClient manages an agent's short-term, active memory.
type WorkingMemoryClient struct{ s *service }

// StoreOptions configures WorkingMemoryClient.Store.
type StoreOptions struct {
	// MemoryType defaults to "context".
	MemoryType string
	// Priority is clamped to [0,1]; nil means 0.5.
	Priority   *float64
	TTLSeconds *int
	Metadata   types.JSONMap
}

type storeRequest struct {
	AgentID    string        `json:"agent_id"`
	Content    string        `json:"content"`
	MemoryType string        `json:"memory_type"`
	Priority   float64       `json:"priority"`
	TTLSeconds *int          `json:"ttl_seconds,omitempty"`
	Metadata   types.JSONMap `json:"metadata,omitempty"`
}

// Store adds content to the agent's working memory.
func (c *WorkingMemoryClient) Store(ctx context.Context, agent, content string, opts StoreOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	text, err := required("content", content, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if opts.TTLSeconds != nil {
		if _, err := validate.NonNegativeInt("ttl_seconds", *opts.TTLSeconds); err != nil {
			return nil, err
		}
	}
	memType := opts.MemoryType
	if memType == "" {
		memType = "context"
	}
	return c.s.post(ctx, "working_memory.store", workingMemoryPath, storeRequest{
		AgentID:    id,
		Content:    text,
		MemoryType: memType,
		Priority:   unit(opts.Priority, 0.5),
		TTLSeconds: opts.TTLSeconds,
		Metadata:   opts.Metadata,
	})
}

// RetrieveOptions configures WorkingMemoryClient.Retrieve.
type RetrieveOptions struct {
	MemoryType string
	// Limit defaults to 10.
	Limit       int
	MinPriority *float64
}

// Retrieve lists the agent's working memory.
func (c *WorkingMemoryClient) Retrieve(ctx context.Context, agent string, opts RetrieveOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 10)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("limit", itoa(n))
	if opts.MemoryType != "" {
		q.Set("memory_type", opts.MemoryType)
	}
	if opts.MinPriority != nil {
		q.Set("min_priority", ftoa(validate.Clamp(*opts.MinPriority, 0, 1)))
	}
	return c.s.get(ctx, "working_memory.retrieve", workingMemoryPath, q)
}

// UpdateOptions lists the mutable fields of a working memory entry. At least
// one must be set.
type UpdateOptions struct {
	Content  *string
	Priority *float64
	Metadata types.JSONMap
}

type updateRequest struct {
	Content  *string       `json:"content,omitempty"`
	Priority *float64      `json:"priority,omitempty"`
	Metadata types.JSONMap `json:"metadata,omitempty"`
}

// Update changes an existing entry.
func (c *WorkingMemoryClient) Update(ctx context.Context, memoryID string, opts UpdateOptions) (types.JSONMap, error) {
	path, err := resourcePath("memory_id", memoryID, workingMemoryPath)
	if err != nil {
		return nil, err
	}
	var req updateRequest
	if opts.Content != nil {
		req.Content = types.Ptr(sanitize.Content(*opts.Content))
	}
	if opts.Priority != nil {
		req.Priority = types.Ptr(validate.Clamp(*opts.Priority, 0, 1))
	}
	if opts.Metadata != nil {
		req.Metadata = opts.Metadata
	}
	if req.Content == nil && req.Priority == nil && req.Metadata == nil {
		return nil, types.NewValidationError("update", "At least one field must be provided for update")
	}
	return c.s.put(ctx, "working_memory.update", path, req)
}

// Delete removes one entry.
func (c *WorkingMemoryClient) Delete(ctx context.Context, memoryID string) (types.JSONMap, error) {
	path, err := resourcePath("memory_id", memoryID, workingMemoryPath)
	if err != nil {
		return nil, err
	}
	return c.s.delete(ctx, "working_memory.delete", path, nil)
}

// Clear removes all of the agent's entries, optionally only those of one type.
func (c *WorkingMemoryClient) Clear(ctx context.Context, agent, memoryType string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	if memoryType != "" {
		q.Set("memory_type", memoryType)
	}
	return c.s.delete(ctx, "working_memory.clear", workingMemoryPath, q)
}

// Consolidate moves important entries to long-term storage. An empty
// strategy means StrategyImportance.
func (c *WorkingMemoryClient) Consolidate(ctx context.Context, agent, strategy string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = StrategyImportance
	}
	if err := validate.OneOf("strategy", strategy, StrategyImportance, StrategyRecency, StrategyRelevance); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "working_memory.consolidate", workingMemoryPath+"/consolidate", map[string]any{
		"agent_id": id,
		"strategy": strategy,
	})
}
