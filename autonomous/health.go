package autonomous

import (
	"context"
	"strings"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/types"
)

const healthPath = BasePath + "/health"

// HealthClient reports agent health and operational status.
type HealthClient struct{ s *service }

// Check returns the overall health of an agent.
func (c *HealthClient) Check(ctx context.Context, agent string) (types.JSONMap, error) {
	return c.agentGet(ctx, "health.check", healthPath, agent)
}

// GetMetrics returns performance metrics over period ("1h" when empty),
// optionally restricted to the named metrics.
func (c *HealthClient) GetMetrics(ctx context.Context, agent, period string, metrics []string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = "1h"
	}
	q := agentQuery(id)
	q.Set("period", period)
	if names := sanitize.Strings(metrics, sanitize.MaxStepLength); len(names) > 0 {
		q.Set("metrics", strings.Join(names, ","))
	}
	return c.s.get(ctx, "health.metrics", healthPath+"/metrics", q)
}

// GetMemoryUsage returns memory usage by type.
func (c *HealthClient) GetMemoryUsage(ctx context.Context, agent string) (types.JSONMap, error) {
	return c.agentGet(ctx, "health.memory", healthPath+"/memory", agent)
}

// GetErrorLog returns recent errors, optionally filtered by severity.
// maxResults 0 means 50.
func (c *HealthClient) GetErrorLog(ctx context.Context, agent, severity string, maxResults int) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 50)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("limit", itoa(n))
	if severity != "" {
		q.Set("severity", severity)
	}
	return c.s.get(ctx, "health.errors", healthPath+"/errors", q)
}

// RunDiagnostics runs the full diagnostic suite.
func (c *HealthClient) RunDiagnostics(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "health.diagnostics", healthPath+"/diagnostics", map[string]any{"agent_id": id})
}

// GetQuotaStatus returns quota and rate limit usage.
func (c *HealthClient) GetQuotaStatus(ctx context.Context, agent string) (types.JSONMap, error) {
	return c.agentGet(ctx, "health.quota", healthPath+"/quota", agent)
}

// Ping checks that the autonomous API is reachable.
func (c *HealthClient) Ping(ctx context.Context) (types.JSONMap, error) {
	return c.s.get(ctx, "health.ping", healthPath+"/ping", nil)
}

// GetUptime returns uptime statistics.
func (c *HealthClient) GetUptime(ctx context.Context, agent string) (types.JSONMap, error) {
	return c.agentGet(ctx, "health.uptime", healthPath+"/uptime", agent)
}

func (c *HealthClient) agentGet(ctx context.Context, op, path, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, op, path, agentQuery(id))
}
