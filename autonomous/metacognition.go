package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const metacognitionPath = BasePath + "/metacognition"

// Reflection depths accepted by MetacognitionClient.SelfReflect.
const (
	DepthShallow  = "shallow"
	DepthStandard = "standard"
	DepthDeep     = "deep"
)

// MetacognitionClient records and analyzes an agent's reasoning.
type MetacognitionClient struct{ s *service }

// ReasoningOptions configures MetacognitionClient.LogReasoning.
type ReasoningOptions struct {
	// Confidence is clamped to [0,1]; nil means 0.5.
	Confidence   *float64
	Alternatives []string
	Metadata     types.JSONMap
}

type reasoningRequest struct {
	AgentID      string        `json:"agent_id"`
	Step         string        `json:"step"`
	Reasoning    string        `json:"reasoning"`
	Confidence   float64       `json:"confidence"`
	Alternatives []string      `json:"alternatives,omitempty"`
	Metadata     types.JSONMap `json:"metadata,omitempty"`
}

// LogReasoning records one reasoning step.
func (c *MetacognitionClient) LogReasoning(ctx context.Context, agent, step, reasoning string, opts ReasoningOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanStep, err := required("step", step, sanitize.MaxStepLength)
	if err != nil {
		return nil, err
	}
	cleanReasoning, err := required("reasoning", reasoning, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "metacognition.reasoning", metacognitionPath+"/reasoning", reasoningRequest{
		AgentID:      id,
		Step:         cleanStep,
		Reasoning:    cleanReasoning,
		Confidence:   unit(opts.Confidence, 0.5),
		Alternatives: sanitize.Strings(opts.Alternatives, sanitize.MaxContentLength),
		Metadata:     opts.Metadata,
	})
}

// EvaluateConfidence asks the server to score a decision. situation is sent
// as the optional decision context.
func (c *MetacognitionClient) EvaluateConfidence(ctx context.Context, agent, decision, situation string, evidence []string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanDecision, err := required("decision", decision, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"agent_id": id, "decision": cleanDecision}
	if sit := sanitize.Content(situation); sit != "" {
		body["context"] = sit
	}
	if ev := sanitize.Strings(evidence, sanitize.MaxContentLength); len(ev) > 0 {
		body["evidence"] = ev
	}
	return c.s.post(ctx, "metacognition.evaluate", metacognitionPath+"/evaluate", body)
}

// GetReasoningTrace returns recent reasoning steps. maxResults 0 means 20.
func (c *MetacognitionClient) GetReasoningTrace(ctx context.Context, agent, sessionID string, maxResults int) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	n, err := limit(maxResults, 20)
	if err != nil {
		return nil, err
	}
	q := agentQuery(id)
	q.Set("limit", itoa(n))
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	return c.s.get(ctx, "metacognition.trace", metacognitionPath+"/trace", q)
}

// AnalyzePatterns analyzes reasoning over the last days (0 means 7).
func (c *MetacognitionClient) AnalyzePatterns(ctx context.Context, agent string, days int) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		days = 7
	}
	if err := validate.IntRange("days", days, 1, 365); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "metacognition.analyze", metacognitionPath+"/analyze", map[string]any{
		"agent_id": id,
		"days":     days,
	})
}

// GetBiases returns detected cognitive biases.
func (c *MetacognitionClient) GetBiases(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "metacognition.biases", metacognitionPath+"/biases", agentQuery(id))
}

// SelfReflect triggers a reflection on topic. An empty depth means
// DepthStandard.
func (c *MetacognitionClient) SelfReflect(ctx context.Context, agent, topic, depth string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	cleanTopic, err := required("topic", topic, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if depth == "" {
		depth = DepthStandard
	}
	if err := validate.OneOf("depth", depth, DepthShallow, DepthStandard, DepthDeep); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "metacognition.reflect", metacognitionPath+"/reflect", map[string]any{
		"agent_id": id,
		"topic":    cleanTopic,
		"depth":    depth,
	})
}
