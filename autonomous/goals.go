package autonomous

import (
	"context"
	"fmt"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const goalsPath = BasePath + "/goals"

// GoalsClient manages hierarchical agent goals.
type GoalsClient struct{ s *service }

// GoalOptions configures GoalsClient.Create.
type GoalOptions struct {
	Description string
	// Priority is clamped to [0,1]; nil means 0.5.
	Priority        *float64
	Deadline        string
	ParentGoalID    string
	SuccessCriteria []string
	Metadata        types.JSONMap
}

type goalRequest struct {
	AgentID         string        `json:"agent_id"`
	Title           string        `json:"title"`
	Priority        *float64      `json:"priority,omitempty"`
	Description     string        `json:"description,omitempty"`
	Deadline        string        `json:"deadline,omitempty"`
	ParentGoalID    string        `json:"parent_goal_id,omitempty"`
	SuccessCriteria []string      `json:"success_criteria,omitempty"`
	Metadata        types.JSONMap `json:"metadata,omitempty"`
}

// Create creates a goal.
func (c *GoalsClient) Create(ctx context.Context, agent, title string, opts GoalOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanTitle, err := required("title", title, sanitize.MaxTitleLength)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "goals.create", goalsPath, goalRequest{
		AgentID:         id,
		Title:           cleanTitle,
		Priority:        types.Ptr(unit(opts.Priority, 0.5)),
		Description:     sanitize.Content(opts.Description),
		Deadline:        opts.Deadline,
		ParentGoalID:    opts.ParentGoalID,
		SuccessCriteria: sanitize.Strings(opts.SuccessCriteria, sanitize.MaxContentLength),
		Metadata:        opts.Metadata,
	})
}

// Get returns one goal.
func (c *GoalsClient) Get(ctx context.Context, goalID string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "goals.get", path, nil)
}

// ListGoalsOptions configures GoalsClient.List.
type ListGoalsOptions struct {
	Status string
	// ExcludeSubgoals hides subgoals, which are listed by default.
	ExcludeSubgoals bool
	// Limit defaults to 20.
	Limit int
}

// List lists the agent's goals.
func (c *GoalsClient) List(ctx context.Context, agent string, opts ListGoalsOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(opts.Limit, 20)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("include_subgoals", btoa(!opts.ExcludeSubgoals))
	q.Set("limit", itoa(n))
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	return c.s.get(ctx, "goals.list", goalsPath, q)
}

// UpdateProgress sets progress, clamped to [0,100], with optional notes.
func (c *GoalsClient) UpdateProgress(ctx context.Context, goalID string, progress float64, notes string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"progress": validate.Clamp(progress, 0, 100)}
	if n := sanitize.Content(notes); n != "" {
		body["notes"] = n
	}
	return c.s.put(ctx, "goals.progress", path, body)
}

// AddSubgoal creates a child of parentGoalID. The parent is fetched first
// to inherit its agent_id.
func (c *GoalsClient) AddSubgoal(ctx context.Context, parentGoalID, title, description string) (types.JSONMap, error) {
	if err := validate.Identifier("parent_goal_id", parentGoalID); err != nil {
		return nil, err
	}
	cleanTitle, err := required("title", title, sanitize.MaxTitleLength)
	if err != nil {
		return nil, err
	}
	parent, err := c.Get(ctx, parentGoalID)
	if err != nil {
		return nil, fmt.Errorf("fetch parent goal: %w", err)
	}
	agent, ok := parent["agent_id"].(string)
	if !ok || agent == "" {
		return nil, types.NewInvalidResponseError("parent goal response missing agent_id").WithField("agent_id")
	}
	return c.s.post(ctx, "goals.add_subgoal", goalsPath, goalRequest{
		AgentID:      sanitize.AgentID(agent),
		Title:        cleanTitle,
		Description:  sanitize.Content(description),
		ParentGoalID: parentGoalID,
	})
}

// Complete marks a goal completed at 100% progress.
func (c *GoalsClient) Complete(ctx context.Context, goalID, outcome string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"status": "completed", "progress": 100}
	if o := sanitize.Content(outcome); o != "" {
		body["outcome"] = o
	}
	return c.s.put(ctx, "goals.complete", path, body)
}

// Cancel cancels a goal.
func (c *GoalsClient) Cancel(ctx context.Context, goalID, reason string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"status": "cancelled"}
	if r := sanitize.Content(reason); r != "" {
		body["reason"] = r
	}
	return c.s.put(ctx, "goals.cancel", path, body)
}

// GetHierarchy returns the goal tree rooted at goalID.
func (c *GoalsClient) GetHierarchy(ctx context.Context, goalID string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath, "hierarchy")
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "goals.hierarchy", path, nil)
}

// SuggestNextSteps asks the server for next steps toward goalID.
func (c *GoalsClient) SuggestNextSteps(ctx context.Context, goalID string) (types.JSONMap, error) {
	path, err := resourcePath("goal_id", goalID, goalsPath, "suggest")
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "goals.suggest", path, nil)
}
