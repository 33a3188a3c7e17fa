package recallbricks

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/recallbricks/testutil/mocks"
	"github.com/BaSui01/recallbricks/types"
)

func TestPredictMemories(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/predict").JSON(200, `{
		"predictions": [{"id":"p1","content":"Test memory","confidence_score":0.9,"reasoning":"recent"}]
	}`).Start()
	c := newTestClient(t, api)

	preds, err := c.PredictMemories(context.Background(), PredictOptions{
		Context:         "deploying",
		RecentMemoryIDs: []string{"m1", "m2"},
		Limit:           5,
	})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "p1", preds[0].ID)
	assert.InDelta(t, 0.9, preds[0].ConfidenceScore, 1e-9)

	body := api.LastRequest().JSONBody()
	assert.Equal(t, "deploying", body["context"])
	assert.Equal(t, []any{"m1", "m2"}, body["recent_memory_ids"])
	assert.Equal(t, float64(5), body["limit"])
}

func TestPredictMemories_EmptyPredictions(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/predict").JSON(200, `{"predictions":[]}`).Start()
	c := newTestClient(t, api)

	preds, err := c.PredictMemories(context.Background(), PredictOptions{})
	require.NoError(t, err)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

func TestPredictMemories_PredictionsMustBeArray(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/predict").JSON(200, `{"predictions":{}}`).Start()
	c := newTestClient(t, api)

	_, err := c.PredictMemories(context.Background(), PredictOptions{})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeInvalidResponse, types.GetErrorCode(err))
}

func TestPredictMemories_LimitBounds(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	c := newTestClient(t, api)

	for _, limit := range []int{-5, 101} {
		_, err := c.PredictMemories(context.Background(), PredictOptions{Limit: limit})
		require.Error(t, err, "limit %d", limit)
	}
	assert.Empty(t, api.Requests())
}

func TestSuggestMemories(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/suggest").JSON(200, `{
		"suggestions": [{"id":"s1","content":"Suggested memory","confidence":0.8,"reasoning":"r","relevance_context":"ctx"}]
	}`).Start()
	c := newTestClient(t, api)

	sugs, err := c.SuggestMemories(context.Background(), "writing tests", SuggestOptions{
		MinConfidence:    types.Ptr(0.7),
		IncludeReasoning: true,
	})
	require.NoError(t, err)
	require.Len(t, sugs, 1)
	assert.Equal(t, "ctx", sugs[0].RelevanceContext)

	body := api.LastRequest().JSONBody()
	assert.Equal(t, "writing tests", body["context"])
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, 0.7, body["min_confidence"])
	assert.Equal(t, true, body["include_reasoning"])
}

func TestSuggestMemories_Validation(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	c := newTestClient(t, api)
	ctx := context.Background()

	_, err := c.SuggestMemories(ctx, "", SuggestOptions{})
	assert.ErrorContains(t, err, "context cannot be empty")

	for _, v := range []float64{-0.1, 1.5} {
		_, err := c.SuggestMemories(ctx, "x", SuggestOptions{MinConfidence: types.Ptr(v)})
		assert.ErrorContains(t, err, "min_confidence must be between 0 and 1")
	}
	assert.Empty(t, api.Requests())
}

func TestGetLearningMetrics(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/learning/metrics").JSON(200, `{
		"avg_helpfulness": 0.75, "total_usage": 120, "active_memories": 40, "total_memories": 50
	}`).Start()
	c := newServiceTokenClient(t, api, "u-1")

	m, err := c.GetLearningMetrics(context.Background(), LearningOptions{Days: 14})
	require.NoError(t, err)
	assert.Equal(t, 120, m.TotalUsage)
	assert.Equal(t, types.TrendStable, m.Trends.HelpfulnessTrend)
	assert.Equal(t, types.TrendStable, m.Trends.UsageTrend)

	q := api.LastRequest().Query
	assert.Equal(t, "14", q.Get("days"))
	assert.Equal(t, "u-1", q.Get("user_id"))
}

func TestGetLearningMetrics_DaysBounds(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	c := newTestClient(t, api)

	for _, days := range []int{-10, 400} {
		_, err := c.GetLearningMetrics(context.Background(), LearningOptions{Days: days})
		assert.ErrorContains(t, err, "days must be between 1 and 365")
	}
	assert.Empty(t, api.Requests())
}

func TestGetPatterns(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/learning/patterns").JSON(200, `{
		"summary": "Test summary",
		"most_useful_tags": ["go", "sdk"],
		"frequently_accessed_together": [["m1","m2"]],
		"underutilized_memories": [{"id":"m9","text":"old"}]
	}`).Start()
	c := newTestClient(t, api)

	p, err := c.GetPatterns(context.Background(), LearningOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sdk"}, p.MostUsefulTags)
	assert.Equal(t, [][]string{{"m1", "m2"}}, p.FrequentlyAccessedTogether)
	assert.Len(t, p.UnderutilizedMemories, 1)
	assert.Equal(t, "30", api.LastRequest().Query.Get("days"))
}

func TestLearning_ExplicitUserID(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On(http.MethodGet, "/learning/metrics").JSON(200, `{"total_usage": 1}`).
		On(http.MethodGet, "/learning/patterns").JSON(200, `{"summary": "s"}`).
		Start()
	c := newServiceTokenClient(t, api, "")
	ctx := WithUserID(context.Background(), "ctx-user")

	_, err := c.GetLearningMetrics(ctx, LearningOptions{UserID: "explicit-user"})
	require.NoError(t, err)
	assert.Equal(t, "explicit-user", api.LastRequest().Query.Get("user_id"))

	_, err = c.GetPatterns(ctx, LearningOptions{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, "ctx-user", api.LastRequest().Query.Get("user_id"))
	assert.Equal(t, "7", api.LastRequest().Query.Get("days"))

	_, err = c.GetPatterns(context.Background(), LearningOptions{})
	assert.ErrorContains(t, err, "user_id is required when using service_token authentication")
}

func TestPredictMemories_SanitizesRecentIDs(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/predict").JSON(200, `{"predictions": []}`).Start()
	c := newTestClient(t, api)

	_, err := c.PredictMemories(context.Background(), PredictOptions{
		RecentMemoryIDs: []string{"m\x001", strings.Repeat("a", 300)},
	})
	require.NoError(t, err)

	ids := api.LastRequest().JSONBody()["recent_memory_ids"].([]any)
	require.Len(t, ids, 2)
	assert.Equal(t, "m1", ids[0])
	assert.Len(t, ids[1], 256)
}

func TestSearchWeighted(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/search/weighted").JSON(200, `{
		"results": [{"id":"m1","text":"Memory 1","relevance_score":0.9,"usage_boost":0.1}]
	}`).Start()
	c := newTestClient(t, api)

	res, err := c.SearchWeighted(context.Background(), "test query", WeightedSearchOptions{
		Limit:               20,
		WeightByUsage:       true,
		DecayOldMemories:    true,
		MinHelpfulnessScore: types.Ptr(0.8),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "api", res[0].Source)
	assert.Equal(t, "default", res[0].ProjectID)
	assert.InDelta(t, 0.1, res[0].UsageBoost, 1e-9)

	body := api.LastRequest().JSONBody()
	assert.Equal(t, true, body["weight_by_usage"])
	assert.Equal(t, true, body["decay_old_memories"])
	assert.Equal(t, false, body["adaptive_weights"])
	assert.Equal(t, 0.8, body["min_helpfulness_score"])
	assert.Equal(t, float64(20), body["limit"])
}

func TestSearchWeighted_ServiceTokenNeedsUser(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	c := newServiceTokenClient(t, api, "")

	_, err := c.SearchWeighted(context.Background(), "q", WeightedSearchOptions{})
	assert.ErrorContains(t, err, "user_id is required")
	assert.Empty(t, api.Requests())
}
