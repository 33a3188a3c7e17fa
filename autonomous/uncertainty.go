package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const uncertaintyPath = BasePath + "/uncertainty"

// UncertaintyClient tracks and calibrates agent confidence.
type UncertaintyClient struct{ s *service }

// UncertaintyOptions configures UncertaintyClient.Record.
type UncertaintyOptions struct {
	Reasoning string
	Factors   []types.JSONMap
	Metadata  types.JSONMap
}

type uncertaintyRequest struct {
	AgentID    string          `json:"agent_id"`
	Topic      string          `json:"topic"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Factors    []types.JSONMap `json:"factors,omitempty"`
	Metadata   types.JSONMap   `json:"metadata,omitempty"`
}

// Record stores a confidence measurement for topic. confidence is clamped
// to [0,1].
func (c *UncertaintyClient) Record(ctx context.Context, agent, topic string, confidence float64, opts UncertaintyOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanTopic, err := required("topic", topic, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "uncertainty.record", uncertaintyPath, uncertaintyRequest{
		AgentID:    id,
		Topic:      cleanTopic,
		Confidence: validate.Clamp(confidence, 0, 1),
		Reasoning:  sanitize.Content(opts.Reasoning),
		Factors:    opts.Factors,
		Metadata:   opts.Metadata,
	})
}

// GetByTopic returns the records for one topic.
func (c *UncertaintyClient) GetByTopic(ctx context.Context, agent, topic string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanTopic, err := required("topic", topic, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("topic", cleanTopic)
	return c.s.get(ctx, "uncertainty.topic", uncertaintyPath+"/topic", q)
}

// GetSummary summarizes uncertainty over period ("7d" when empty).
func (c *UncertaintyClient) GetSummary(ctx context.Context, agent, period string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = "7d"
	}
	q := agentQuery(id)
	q.Set("period", period)
	return c.s.get(ctx, "uncertainty.summary", uncertaintyPath+"/summary", q)
}

// Calibrate reports the actual outcome of a prediction made with
// predictedConfidence.
func (c *UncertaintyClient) Calibrate(ctx context.Context, agent, topic, actualOutcome string, predictedConfidence float64) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanTopic, err := required("topic", topic, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if err := validate.FloatRange("predicted_confidence", predictedConfidence, 0, 1); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "uncertainty.calibrate", uncertaintyPath+"/calibrate", map[string]any{
		"agent_id":             id,
		"topic":                cleanTopic,
		"actual_outcome":       sanitize.Content(actualOutcome),
		"predicted_confidence": predictedConfidence,
	})
}

// GetCalibrationScore reports how well calibrated the agent is.
func (c *UncertaintyClient) GetCalibrationScore(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "uncertainty.calibration", uncertaintyPath+"/calibration", agentQuery(id))
}

// SuggestInformationNeeds lists topics whose confidence is below threshold
// (nil means 0.5).
func (c *UncertaintyClient) SuggestInformationNeeds(ctx context.Context, agent string, threshold *float64) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "uncertainty.needs", uncertaintyPath+"/needs", map[string]any{
		"agent_id":  id,
		"threshold": unit(threshold, 0.5),
	})
}

// Resolve closes an uncertainty with new information.
func (c *UncertaintyClient) Resolve(ctx context.Context, uncertaintyID, resolution string, newConfidence float64) (types.JSONMap, error) {
	path, err := resourcePath("uncertainty_id", uncertaintyID, uncertaintyPath)
	if err != nil {
		return nil, err
	}
	return c.s.put(ctx, "uncertainty.resolve", path, map[string]any{
		"resolution":     sanitize.Content(resolution),
		"new_confidence": validate.Clamp(newConfidence, 0, 1),
		"status":         "resolved",
	})
}
