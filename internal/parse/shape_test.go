package parse

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/recallbricks/types"
)

func TestCheck_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		shape    Shape
		code     types.ErrorCode
		contains string
	}{
		{"empty body", "", ObjectShape(), types.ErrCodeInvalidResponse, "empty"},
		{"null", "null", ObjectShape(), types.ErrCodeInvalidResponse, "null"},
		{"bare string", `"ok"`, ObjectShape(), types.ErrCodeInvalidResponse, "got string"},
		{"bare number", `42`, ObjectShape(), types.ErrCodeInvalidResponse, "got number"},
		{"array for object", `[1,2]`, ObjectShape(), types.ErrCodeInvalidResponse, "got array"},
		{"object for array", `{"a":1}`, ArrayShape(), types.ErrCodeInvalidResponse, "must be a JSON array"},
		{"missing key", `{"id":"m1"}`, ObjectShape(Key("memories", Array)), types.ErrCodeInvalidResponse, `"memories"`},
		{"wrong kind", `{"predictions":"soon"}`, ObjectShape(Key("predictions", Array)), types.ErrCodeInvalidResponse, "must be array, got string"},
		{"invalid json", `{"id":`, ObjectShape(), types.ErrCodeInvalidJSON, "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check([]byte(tt.body), tt.shape)
			require.Error(t, err)
			assert.Equal(t, tt.code, types.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.contains)
			if tt.code == types.ErrCodeInvalidResponse {
				assert.True(t, errors.Is(err, types.ErrAPI))
			}
		})
	}
}

func TestCheck_MissingKeyNamesField(t *testing.T) {
	_, err := Check([]byte(`{}`), ObjectShape(Key("results", Array)))
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "results", e.Field)
}

func TestDecode_TypedRecall(t *testing.T) {
	body := []byte(`{
		"memories": [{"id":"m1","text":"hello","score":0.9,"metadata":{"tags":["a"],"category":"work"}}],
		"categories": {"work": {"count": 1, "avg_score": 0.9, "summary": "one"}},
		"count": 1
	}`)

	got, err := Decode[types.RecallResult](body, ObjectShape(Key("memories", Array)))
	require.NoError(t, err)
	require.Len(t, got.Memories, 1)
	assert.Equal(t, "m1", got.Memories[0].ID)
	assert.Equal(t, []string{"a"}, got.Memories[0].Metadata.Tags)
	assert.Equal(t, 1, got.Total, "total falls back to count")
	assert.Equal(t, types.CategorySummary{Count: 1, AvgScore: 0.9, Summary: "one"}, got.Categories["work"])
}

func TestDecodeKey(t *testing.T) {
	body := []byte(`{"predictions":[{"id":"p1","content":"c","confidence_score":0.7,"reasoning":"r"}]}`)
	got, err := DecodeKey[[]types.PredictedMemory](body, ObjectShape(Key("predictions", Array)), "predictions")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.7, got[0].ConfidenceScore)
}

func TestDecode_LearningMetricsDefaults(t *testing.T) {
	got, err := Decode[types.LearningMetrics]([]byte(`{"avg_helpfulness":0.5,"total_usage":3}`), ObjectShape())
	require.NoError(t, err)
	assert.Equal(t, types.TrendStable, got.Trends.HelpfulnessTrend)
	assert.Equal(t, types.TrendStable, got.Trends.UsageTrend)
	assert.Equal(t, 0.0, got.Trends.GrowthRate)

	got, err = Decode[types.LearningMetrics]([]byte(`{"trends":{"usage_trend":"up"}}`), ObjectShape())
	require.NoError(t, err)
	assert.Equal(t, types.TrendStable, got.Trends.HelpfulnessTrend)
	assert.Equal(t, "up", got.Trends.UsageTrend)
}

func TestDecode_TypeMismatch(t *testing.T) {
	_, err := Decode[types.RateLimitStatus]([]byte(`{"limit":"lots"}`), ObjectShape())
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeInvalidResponse, types.GetErrorCode(err))
}

func TestMap(t *testing.T) {
	m, err := Map([]byte(`{"id":"m1","nested":{"k":[1,2]}}`), Key("id", String))
	require.NoError(t, err)
	assert.Equal(t, "m1", m["id"])

	_, err = Map([]byte(`{"id":5}`), Key("id", String))
	assert.Error(t, err)
}

// 属性：结构良好的对象解析后字段不丢失
func TestProperty_ObjectRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.MapOf(rapid.StringMatching(`[a-z_]{1,12}`), rapid.String()).Draw(rt, "in")
		body, err := json.Marshal(in)
		if err != nil {
			rt.Fatal(err)
		}

		var required []Field
		for k := range in {
			required = append(required, Key(k, String))
		}

		out, err := Decode[map[string]string](body, ObjectShape(required...))
		if err != nil {
			rt.Fatalf("decode failed: %v", err)
		}
		if len(out) != len(in) {
			rt.Fatalf("field count changed: %d -> %d", len(in), len(out))
		}
		for k, v := range in {
			if out[k] != v {
				rt.Fatalf("key %q: %q -> %q", k, v, out[k])
			}
		}
	})
}
