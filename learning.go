package recallbricks

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BaSui01/recallbricks/internal/parse"
	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const (
	defaultPredictLimit = 10
	defaultSuggestLimit = 5
	defaultLearningDays = 30
	maxLearningDays     = 365
)

// PredictOptions configures PredictMemories. Context and RecentMemoryIDs
// are both optional.
type PredictOptions struct {
	Context         string
	RecentMemoryIDs []string
	// Limit defaults to 10 and must be within [1,100].
	Limit  int
	UserID string
}

type predictRequest struct {
	Context         string   `json:"context,omitempty"`
	RecentMemoryIDs []string `json:"recent_memory_ids,omitempty"`
	Limit           int      `json:"limit"`
	UserID          string   `json:"user_id,omitempty"`
}

// PredictMemories returns memories the server expects to be needed next.
func (c *Client) PredictMemories(ctx context.Context, opts PredictOptions) ([]types.PredictedMemory, error) {
	n, err := resultLimit(opts.Limit, defaultPredictLimit)
	if err != nil {
		return nil, err
	}
	if err := validate.StringSlice("recent_memory_ids", opts.RecentMemoryIDs); err != nil {
		return nil, err
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "predict",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/predict",
		Body: predictRequest{
			Context:         sanitize.Content(opts.Context),
			RecentMemoryIDs: sanitize.Strings(opts.RecentMemoryIDs, sanitize.MaxAgentIDLength),
			Limit:           n,
			UserID:          uid,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[types.PredictedMemory](raw, "predictions")
}

// SuggestOptions configures SuggestMemories.
type SuggestOptions struct {
	// Limit defaults to 5 and must be within [1,100].
	Limit int
	// MinConfidence must be within [0,1] when set.
	MinConfidence    *float64
	IncludeReasoning bool
	UserID           string
}

type suggestRequest struct {
	Context          string   `json:"context"`
	Limit            int      `json:"limit"`
	MinConfidence    *float64 `json:"min_confidence,omitempty"`
	IncludeReasoning bool     `json:"include_reasoning"`
	UserID           string   `json:"user_id,omitempty"`
}

// SuggestMemories returns memories relevant to the given context text.
func (c *Client) SuggestMemories(ctx context.Context, contextText string, opts SuggestOptions) ([]types.SuggestedMemory, error) {
	text, err := requiredText("context", contextText)
	if err != nil {
		return nil, err
	}
	n, err := resultLimit(opts.Limit, defaultSuggestLimit)
	if err != nil {
		return nil, err
	}
	if opts.MinConfidence != nil {
		if err := validate.FloatRange("min_confidence", *opts.MinConfidence, 0, 1); err != nil {
			return nil, err
		}
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "suggest",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/suggest",
		Body: suggestRequest{
			Context:          text,
			Limit:            n,
			MinConfidence:    opts.MinConfidence,
			IncludeReasoning: opts.IncludeReasoning,
			UserID:           uid,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[types.SuggestedMemory](raw, "suggestions")
}

// LearningOptions configures GetLearningMetrics and GetPatterns.
type LearningOptions struct {
	// Days 0 means 30; otherwise it must be within [1,365].
	Days   int
	UserID string
}

// GetLearningMetrics summarizes memory usage over the last opts.Days days.
func (c *Client) GetLearningMetrics(ctx context.Context, opts LearningOptions) (*types.LearningMetrics, error) {
	q, err := c.learningQuery(ctx, opts)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "learning_metrics",
		Method:    http.MethodGet,
		Path:      "/learning/metrics",
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	m, err := parse.Decode[types.LearningMetrics](raw, parse.ObjectShape())
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetPatterns analyzes usage patterns over the last opts.Days days.
func (c *Client) GetPatterns(ctx context.Context, opts LearningOptions) (*types.PatternAnalysis, error) {
	q, err := c.learningQuery(ctx, opts)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "patterns",
		Method:    http.MethodGet,
		Path:      "/learning/patterns",
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	p, err := parse.Decode[types.PatternAnalysis](raw, parse.ObjectShape())
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) learningQuery(ctx context.Context, opts LearningOptions) (url.Values, error) {
	days := opts.Days
	if days == 0 {
		days = defaultLearningDays
	}
	if err := validate.IntRange("days", days, 1, maxLearningDays); err != nil {
		return nil, err
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	if uid != "" {
		q.Set("user_id", uid)
	}
	return q, nil
}

// WeightedSearchOptions configures SearchWeighted.
type WeightedSearchOptions struct {
	// Limit defaults to 10 and must be within [1,100].
	Limit            int
	WeightByUsage    bool
	DecayOldMemories bool
	AdaptiveWeights  bool
	// MinHelpfulnessScore must be within [0,1] when set.
	MinHelpfulnessScore *float64
	UserID              string
}

type weightedSearchRequest struct {
	Query               string   `json:"query"`
	Limit               int      `json:"limit"`
	WeightByUsage       bool     `json:"weight_by_usage"`
	DecayOldMemories    bool     `json:"decay_old_memories"`
	AdaptiveWeights     bool     `json:"adaptive_weights"`
	MinHelpfulnessScore *float64 `json:"min_helpfulness_score,omitempty"`
	UserID              string   `json:"user_id,omitempty"`
}

// SearchWeighted searches with usage, helpfulness and recency boosts
// applied to the ranking.
func (c *Client) SearchWeighted(ctx context.Context, query string, opts WeightedSearchOptions) ([]types.WeightedSearchResult, error) {
	q, err := requiredText("query", query)
	if err != nil {
		return nil, err
	}
	n, err := resultLimit(opts.Limit, defaultRecallLimit)
	if err != nil {
		return nil, err
	}
	if opts.MinHelpfulnessScore != nil {
		if err := validate.FloatRange("min_helpfulness_score", *opts.MinHelpfulnessScore, 0, 1); err != nil {
			return nil, err
		}
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "search_weighted",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/search/weighted",
		Body: weightedSearchRequest{
			Query:               q,
			Limit:               n,
			WeightByUsage:       opts.WeightByUsage,
			DecayOldMemories:    opts.DecayOldMemories,
			AdaptiveWeights:     opts.AdaptiveWeights,
			MinHelpfulnessScore: opts.MinHelpfulnessScore,
			UserID:              uid,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[types.WeightedSearchResult](raw, "results")
}

// decodeList requires key to hold an array and never returns a nil slice.
func decodeList[T any](raw []byte, key string) ([]T, error) {
	out, err := parse.DecodeKey[[]T](raw, parse.ObjectShape(parse.Key(key, parse.Array)), key)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
