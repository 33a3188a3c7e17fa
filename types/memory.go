package types

import "encoding/json"

// JSONMap is the decoded form of a JSON object whose schema the server owns.
type JSONMap = map[string]any

// MemoryMetadata is the metadata the server extracts when a memory is learned.
type MemoryMetadata struct {
	Tags       []string `json:"tags,omitempty"`
	Category   string   `json:"category,omitempty"`
	Entities   []string `json:"entities,omitempty"`
	Importance float64  `json:"importance,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

// Memory is a stored memory as returned by the CRUD endpoints.
type Memory struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Source    string         `json:"source,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

// LearnedMemory is the response of the learn endpoint.
type LearnedMemory struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  MemoryMetadata `json:"metadata"`
	CreatedAt string         `json:"created_at,omitempty"`
	Source    string         `json:"source,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
}

// RecallMemory is one scored memory in a recall response.
type RecallMemory struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  MemoryMetadata `json:"metadata"`
	Score     float64        `json:"score"`
	CreatedAt string         `json:"created_at,omitempty"`
	Source    string         `json:"source,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
}

// CategorySummary aggregates recalled memories of one category.
type CategorySummary struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
	Summary  string  `json:"summary"`
}

// RecallResult is the response of the recall endpoint. Categories is only
// populated when organized recall was requested.
type RecallResult struct {
	Memories   []RecallMemory             `json:"memories"`
	Categories map[string]CategorySummary `json:"categories,omitempty"`
	Total      int                        `json:"total"`
	Count      int                        `json:"count"`
}

// UnmarshalJSON fills Total from the legacy count field when total is absent.
func (r *RecallResult) UnmarshalJSON(data []byte) error {
	type alias RecallResult
	var raw struct {
		alias
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RecallResult(raw.alias)
	if raw.Total != nil {
		r.Total = *raw.Total
	} else {
		r.Total = r.Count
	}
	if r.Memories == nil {
		r.Memories = []RecallMemory{}
	}
	if r.Categories == nil {
		r.Categories = map[string]CategorySummary{}
	}
	return nil
}

// AuxStatus records the outcome of an optional auxiliary fetch attached to a
// primary result.
type AuxStatus string

const (
	AuxNotRequested AuxStatus = "not_requested"
	AuxAvailable    AuxStatus = "available"
	// AuxUnavailable marks a result whose auxiliary fetch failed; the primary
	// result is still valid.
	AuxUnavailable AuxStatus = "unavailable"
)

// SearchResult is one memory returned by search, optionally carrying its
// relationship data.
type SearchResult struct {
	Memory
	Score              float64   `json:"score,omitempty"`
	Relationships      JSONMap   `json:"relationships,omitempty"`
	RelationshipStatus AuxStatus `json:"relationship_status,omitempty"`
}

// RateLimitStatus is the caller's current quota window.
type RateLimitStatus struct {
	Limit       int     `json:"limit"`
	Remaining   int     `json:"remaining"`
	Reset       int64   `json:"reset"`
	PercentUsed float64 `json:"percentUsed"`
}

// PredictedMemory is a memory the server expects to be useful next.
type PredictedMemory struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	ConfidenceScore float64        `json:"confidence_score"`
	Reasoning       string         `json:"reasoning"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// SuggestedMemory is a memory suggested for a given context.
type SuggestedMemory struct {
	ID               string  `json:"id"`
	Content          string  `json:"content"`
	Confidence       float64 `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
	RelevanceContext string  `json:"relevance_context"`
}

// LearningTrends describes the direction of learning metrics.
type LearningTrends struct {
	HelpfulnessTrend string  `json:"helpfulness_trend"`
	UsageTrend       string  `json:"usage_trend"`
	GrowthRate       float64 `json:"growth_rate"`
}

// TrendStable is reported for a trend the server did not classify.
const TrendStable = "stable"

// UnmarshalJSON defaults missing trends to stable.
func (t *LearningTrends) UnmarshalJSON(data []byte) error {
	type alias LearningTrends
	raw := alias{HelpfulnessTrend: TrendStable, UsageTrend: TrendStable}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = LearningTrends(raw)
	return nil
}

// LearningMetrics summarizes memory usage over a time window.
type LearningMetrics struct {
	AvgHelpfulness float64        `json:"avg_helpfulness"`
	TotalUsage     int            `json:"total_usage"`
	ActiveMemories int            `json:"active_memories"`
	TotalMemories  int            `json:"total_memories"`
	Trends         LearningTrends `json:"trends"`
}

// UnmarshalJSON keeps the stable trend defaults when trends is absent.
func (m *LearningMetrics) UnmarshalJSON(data []byte) error {
	type alias LearningMetrics
	raw := alias{Trends: LearningTrends{HelpfulnessTrend: TrendStable, UsageTrend: TrendStable}}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = LearningMetrics(raw)
	return nil
}

// PatternAnalysis describes usage patterns across memories.
type PatternAnalysis struct {
	Summary                    string           `json:"summary"`
	MostUsefulTags             []string         `json:"most_useful_tags"`
	FrequentlyAccessedTogether [][]string       `json:"frequently_accessed_together"`
	UnderutilizedMemories      []map[string]any `json:"underutilized_memories"`
}

// WeightedSearchResult is a search hit with its ranking components.
type WeightedSearchResult struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	Source           string         `json:"source"`
	ProjectID        string         `json:"project_id"`
	Tags             []string       `json:"tags"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        string         `json:"created_at,omitempty"`
	RelevanceScore   float64        `json:"relevance_score"`
	UsageBoost       float64        `json:"usage_boost"`
	HelpfulnessBoost float64        `json:"helpfulness_boost"`
	RecencyBoost     float64        `json:"recency_boost"`
}

// UnmarshalJSON applies the server's documented defaults for source and project.
func (w *WeightedSearchResult) UnmarshalJSON(data []byte) error {
	type alias WeightedSearchResult
	raw := alias{Source: "api", ProjectID: "default", Tags: []string{}}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WeightedSearchResult(raw)
	return nil
}
