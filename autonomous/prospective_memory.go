package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const prospectivePath = BasePath + "/prospective-memory"

// Trigger types accepted by ProspectiveMemoryClient.Create.
const (
	TriggerTime      = "time"
	TriggerEvent     = "event"
	TriggerCondition = "condition"
)

// ProspectiveMemoryClient manages scheduled tasks and reminders.
type ProspectiveMemoryClient struct{ s *service }

// CreateReminderOptions configures ProspectiveMemoryClient.Create.
type CreateReminderOptions struct {
	// TriggerType defaults to TriggerTime.
	TriggerType string
	// TriggerAt is an RFC 3339 timestamp for time triggers.
	TriggerAt        string
	TriggerCondition string
	Priority         *float64
	Metadata         types.JSONMap
}

type reminderRequest struct {
	AgentID          string        `json:"agent_id"`
	Content          string        `json:"content"`
	TriggerType      string        `json:"trigger_type"`
	Priority         float64       `json:"priority"`
	TriggerAt        string        `json:"trigger_at,omitempty"`
	TriggerCondition string        `json:"trigger_condition,omitempty"`
	Metadata         types.JSONMap `json:"metadata,omitempty"`
}

// Create schedules a prospective memory.
func (c *ProspectiveMemoryClient) Create(ctx context.Context, agent, content string, opts CreateReminderOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	text, err := required("content", content, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	trigger := opts.TriggerType
	if trigger == "" {
		trigger = TriggerTime
	}
	if err := validate.OneOf("trigger_type", trigger, TriggerTime, TriggerEvent, TriggerCondition); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "prospective_memory.create", prospectivePath, reminderRequest{
		AgentID:          id,
		Content:          text,
		TriggerType:      trigger,
		Priority:         unit(opts.Priority, 0.5),
		TriggerAt:        opts.TriggerAt,
		TriggerCondition: opts.TriggerCondition,
		Metadata:         opts.Metadata,
	})
}

// Get returns one prospective memory.
func (c *ProspectiveMemoryClient) Get(ctx context.Context, memoryID string) (types.JSONMap, error) {
	path, err := resourcePath("memory_id", memoryID, prospectivePath)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "prospective_memory.get", path, nil)
}

// GetPending lists the agent's pending reminders. maxResults 0 means 10.
func (c *ProspectiveMemoryClient) GetPending(ctx context.Context, agent string, maxResults int, includeTriggered bool) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 10)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("limit", itoa(n))
	q.Set("include_triggered", btoa(includeTriggered))
	return c.s.get(ctx, "prospective_memory.pending", prospectivePath, q)
}

// CheckTriggers asks the server to evaluate the agent's triggers now.
func (c *ProspectiveMemoryClient) CheckTriggers(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "prospective_memory.check", prospectivePath+"/check", map[string]any{"agent_id": id})
}

// MarkCompleted closes a reminder with an optional outcome.
func (c *ProspectiveMemoryClient) MarkCompleted(ctx context.Context, memoryID, outcome string) (types.JSONMap, error) {
	return c.setStatus(ctx, "prospective_memory.complete", memoryID, "completed", "outcome", outcome)
}

// Cancel cancels a pending reminder with an optional reason.
func (c *ProspectiveMemoryClient) Cancel(ctx context.Context, memoryID, reason string) (types.JSONMap, error) {
	return c.setStatus(ctx, "prospective_memory.cancel", memoryID, "cancelled", "reason", reason)
}

func (c *ProspectiveMemoryClient) setStatus(ctx context.Context, op, memoryID, status, noteKey, note string) (types.JSONMap, error) {
	path, err := resourcePath("memory_id", memoryID, prospectivePath)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"status": status}
	if note = sanitize.Content(note); note != "" {
		body[noteKey] = note
	}
	return c.s.put(ctx, op, path, body)
}

// Reschedule moves a time-based reminder to triggerAt.
func (c *ProspectiveMemoryClient) Reschedule(ctx context.Context, memoryID, triggerAt string) (types.JSONMap, error) {
	path, err := resourcePath("memory_id", memoryID, prospectivePath)
	if err != nil {
		return nil, err
	}
	if err := validate.NonEmpty("trigger_at", triggerAt); err != nil {
		return nil, err
	}
	return c.s.put(ctx, "prospective_memory.reschedule", path, map[string]any{"trigger_at": triggerAt})
}
