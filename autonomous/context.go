package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const contextPath = BasePath + "/context"

// ContextClient manages agent sessions and environment.
type ContextClient struct{ s *service }

// SessionOptions configures ContextClient.CreateSession.
type SessionOptions struct {
	// ContextType defaults to "conversation".
	ContextType    string
	InitialContext types.JSONMap
	TTLSeconds     int
	Metadata       types.JSONMap
}

type sessionRequest struct {
	AgentID     string        `json:"agent_id"`
	ContextType string        `json:"context_type"`
	Context     types.JSONMap `json:"context,omitempty"`
	TTLSeconds  int           `json:"ttl_seconds,omitempty"`
	Metadata    types.JSONMap `json:"metadata,omitempty"`
}

// CreateSession opens a context session.
func (c *ContextClient) CreateSession(ctx context.Context, agent string, opts SessionOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if _, err := validate.NonNegativeInt("ttl_seconds", opts.TTLSeconds); err != nil {
		return nil, err
	}
	kind := opts.ContextType
	if kind == "" {
		kind = "conversation"
	}
	return c.s.post(ctx, "context.create", contextPath, sessionRequest{
		AgentID:     id,
		ContextType: kind,
		Context:     opts.InitialContext,
		TTLSeconds:  opts.TTLSeconds,
		Metadata:    opts.Metadata,
	})
}

// Get returns the current context of a session.
func (c *ContextClient) Get(ctx context.Context, sessionID string) (types.JSONMap, error) {
	path, err := resourcePath("session_id", sessionID, contextPath)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "context.get", path, nil)
}

// Update writes data into the session context, merged into the existing
// context unless replace is set.
func (c *ContextClient) Update(ctx context.Context, sessionID string, data types.JSONMap, replace bool) (types.JSONMap, error) {
	path, err := resourcePath("session_id", sessionID, contextPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, types.NewValidationError("context_data", "context_data cannot be empty")
	}
	return c.s.put(ctx, "context.update", path, map[string]any{"context": data, "merge": !replace})
}

// AddToHistory appends an entry to the session history.
func (c *ContextClient) AddToHistory(ctx context.Context, sessionID string, entry types.JSONMap) (types.JSONMap, error) {
	path, err := resourcePath("session_id", sessionID, contextPath, "history")
	if err != nil {
		return nil, err
	}
	if len(entry) == 0 {
		return nil, types.NewValidationError("entry", "entry cannot be empty")
	}
	return c.s.post(ctx, "context.history.add", path, map[string]any{"entry": entry})
}

// GetHistory returns session history. maxResults 0 means 50.
func (c *ContextClient) GetHistory(ctx context.Context, sessionID string, maxResults int) (types.JSONMap, error) {
	path, err := resourcePath("session_id", sessionID, contextPath, "history")
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 50)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "context.history", path, map[string][]string{"limit": {itoa(n)}})
}

// ListSessions lists the agent's sessions. maxResults 0 means 20.
func (c *ContextClient) ListSessions(ctx context.Context, agent string, includeEnded bool, maxResults int) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 20)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("active_only", btoa(!includeEnded))
	q.Set("limit", itoa(n))
	return c.s.get(ctx, "context.list", contextPath, q)
}

// EndSession closes a session with an optional summary.
func (c *ContextClient) EndSession(ctx context.Context, sessionID, summary string) (types.JSONMap, error) {
	path, err := resourcePath("session_id", sessionID, contextPath)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"status": "ended"}
	if s := sanitize.Content(summary); s != "" {
		body["summary"] = s
	}
	return c.s.put(ctx, "context.end", path, body)
}

// GetEnvironment returns the agent's environment.
func (c *ContextClient) GetEnvironment(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "context.environment", contextPath+"/environment", agentQuery(id))
}

// SetEnvironment replaces the agent's environment.
func (c *ContextClient) SetEnvironment(ctx context.Context, agent string, env types.JSONMap) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if len(env) == 0 {
		return nil, types.NewValidationError("environment", "environment cannot be empty")
	}
	return c.s.put(ctx, "context.environment.set", contextPath+"/environment", map[string]any{
		"agent_id":    id,
		"environment": env,
	})
}
