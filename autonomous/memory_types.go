package autonomous

import (
	"context"

	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const memoryTypesPath = BasePath + "/memory-types"

// Long-term memory types.
const (
	TypeEpisodic   = "episodic"
	TypeSemantic   = "semantic"
	TypeProcedural = "procedural"
)

// MemoryTypesClient stores and retrieves typed long-term memories.
type MemoryTypesClient struct{ s *service }

// EpisodicOptions configures MemoryTypesClient.StoreEpisodic.
type EpisodicOptions struct {
	Context types.JSONMap
	// Importance is clamped to [0,1]; nil means 0.5.
	Importance *float64
	Emotions   []string
	Metadata   types.JSONMap
}

type episodicRequest struct {
	AgentID    string        `json:"agent_id"`
	MemoryType string        `json:"memory_type"`
	Event      string        `json:"event"`
	Importance float64       `json:"importance"`
	Context    types.JSONMap `json:"context,omitempty"`
	Emotions   []string      `json:"emotions,omitempty"`
	Metadata   types.JSONMap `json:"metadata,omitempty"`
}

// StoreEpisodic stores an event or experience.
func (c *MemoryTypesClient) StoreEpisodic(ctx context.Context, agent, event string, opts EpisodicOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	text, err := required("event", event, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "memory_types.episodic", memoryTypesPath, episodicRequest{
		AgentID:    id,
		MemoryType: TypeEpisodic,
		Event:      text,
		Importance: unit(opts.Importance, 0.5),
		Context:    opts.Context,
		Emotions:   sanitize.Strings(opts.Emotions, sanitize.MaxStepLength),
		Metadata:   opts.Metadata,
	})
}

// SemanticOptions configures MemoryTypesClient.StoreSemantic.
type SemanticOptions struct {
	Category string
	// Confidence is clamped to [0,1]; nil means 0.8.
	Confidence      *float64
	Source          string
	RelatedConcepts []string
	Metadata        types.JSONMap
}

type semanticRequest struct {
	AgentID         string        `json:"agent_id"`
	MemoryType      string        `json:"memory_type"`
	Fact            string        `json:"fact"`
	Confidence      float64       `json:"confidence"`
	Category        string        `json:"category,omitempty"`
	Source          string        `json:"source,omitempty"`
	RelatedConcepts []string      `json:"related_concepts,omitempty"`
	Metadata        types.JSONMap `json:"metadata,omitempty"`
}

// StoreSemantic stores a fact.
func (c *MemoryTypesClient) StoreSemantic(ctx context.Context, agent, fact string, opts SemanticOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	text, err := required("fact", fact, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	return c.s.post(ctx, "memory_types.semantic", memoryTypesPath, semanticRequest{
		AgentID:         id,
		MemoryType:      TypeSemantic,
		Fact:            text,
		Confidence:      unit(opts.Confidence, 0.8),
		Category:        opts.Category,
		Source:          opts.Source,
		RelatedConcepts: sanitize.Strings(opts.RelatedConcepts, sanitize.MaxStepLength),
		Metadata:        opts.Metadata,
	})
}

// ProceduralOptions configures MemoryTypesClient.StoreProcedural.
type ProceduralOptions struct {
	// Proficiency is clamped to [0,1]; nil means 0.5.
	Proficiency   *float64
	Prerequisites []string
	Metadata      types.JSONMap
}

type proceduralRequest struct {
	AgentID       string        `json:"agent_id"`
	MemoryType    string        `json:"memory_type"`
	Skill         string        `json:"skill"`
	Steps         []string      `json:"steps"`
	Proficiency   float64       `json:"proficiency"`
	Prerequisites []string      `json:"prerequisites,omitempty"`
	Metadata      types.JSONMap `json:"metadata,omitempty"`
}

// StoreProcedural stores a skill as an ordered list of steps.
func (c *MemoryTypesClient) StoreProcedural(ctx context.Context, agent, skill string, steps []string, opts ProceduralOptions) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	text, err := required("skill", skill, sanitize.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if err := validate.NotEmptySlice("steps", steps); err != nil {
		return nil, err
	}
	if err := validate.StringSlice("steps", steps); err != nil {
		return nil, err
	}
	cleanSteps := sanitize.Strings(steps, sanitize.MaxContentLength)
	if err := validate.NotEmptySlice("steps", cleanSteps); err != nil {
		return nil, err
	}
	return c.s.post(ctx, "memory_types.procedural", memoryTypesPath, proceduralRequest{
		AgentID:       id,
		MemoryType:    TypeProcedural,
		Skill:         text,
		Steps:         cleanSteps,
		Proficiency:   unit(opts.Proficiency, 0.5),
		Prerequisites: sanitize.Strings(opts.Prerequisites, sanitize.MaxStepLength),
		Metadata:      opts.Metadata,
	})
}

// Retrieve lists typed memories. An empty memoryType lists every type;
// maxResults 0 means 10.
func (c *MemoryTypesClient) Retrieve(ctx context.Context, agent, memoryType, query string, maxResults int) (types.JSONMap, error) {
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
	if memoryType != "" {
		if err := validate.OneOf("memory_type", memoryType, TypeEpisodic, TypeSemantic, TypeProcedural); err != nil {
			return nil, err
		}
		q.Set("memory_type", memoryType)
	}
	if query != "" {
		q.Set("query", sanitize.Content(query))
	}
	return c.s.get(ctx, "memory_types.retrieve", memoryTypesPath, q)
}

// GetStatistics returns per-type counts.
func (c *MemoryTypesClient) GetStatistics(ctx context.Context, agent string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	return c.s.get(ctx, "memory_types.statistics", memoryTypesPath+"/statistics", agentQuery(id))
}

// ConsolidateSemantic deduplicates semantic memories, optionally within one
// category.
func (c *MemoryTypesClient) ConsolidateSemantic(ctx context.Context, agent, category string) (types.JSONMap, error) {
	id, err := agentID(agent)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"agent_id": id}
	if category != "" {
		body["category"] = category
	}
	return c.s.post(ctx, "memory_types.consolidate", memoryTypesPath+"/consolidate", body)
}
