// =============================================================================
// 📦 API 响应样例
// =============================================================================
// 预置的 RecallBricks API 响应体，供各包测试复用
// =============================================================================
package fixtures

import (
	"fmt"
	"strings"
)

// MemoryJSON 返回单条记忆
func MemoryJSON(id string) string {
	return fmt.Sprintf(`{"id":%q,"text":"memory %s","source":"api","project_id":"default","tags":["fixture"],"created_at":"2025-01-01T00:00:00Z"}`, id, id)
}

// MemoriesJSON 返回 {"memories":[...]} 列表
func MemoriesJSON(ids ...string) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = MemoryJSON(id)
	}
	return `{"memories":[` + strings.Join(items, ",") + `],"count":` + fmt.Sprint(len(ids)) + `}`
}

// SearchJSON 返回 {"memories":[...]} 形式的搜索结果
func SearchJSON(ids ...string) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf(`{"id":%q,"text":"memory %s","score":%.2f}`, id, id, 1-float64(i)*0.1)
	}
	return `{"memories":[` + strings.Join(items, ",") + `]}`
}

// LearnedJSON 返回 learn 接口的响应
const LearnedJSON = `{
	"id": "mem_learned",
	"text": "User prefers dark mode",
	"metadata": {
		"tags": ["preferences", "ui"],
		"category": "preferences",
		"entities": ["dark mode"],
		"importance": 0.8,
		"summary": "UI preference"
	},
	"created_at": "2025-01-01T00:00:00Z",
	"source": "go-sdk",
	"project_id": "default"
}`

// RecallJSON 返回 recall 接口的响应（含分类）
const RecallJSON = `{
	"memories": [
		{"id": "m1", "text": "dark mode", "score": 0.92, "metadata": {"category": "preferences"}},
		{"id": "m2", "text": "typescript", "score": 0.81, "metadata": {"category": "stack"}}
	],
	"categories": {
		"preferences": {"count": 1, "avg_score": 0.92, "summary": "UI preferences"},
		"stack": {"count": 1, "avg_score": 0.81, "summary": "Languages"}
	},
	"total": 2
}`

// RelationshipsJSON 返回某条记忆的关系
func RelationshipsJSON(id string) string {
	return fmt.Sprintf(`{"memory_id":%q,"relationships":[{"target_id":"x","type":"related_to","strength":0.7}],"count":1}`, id)
}

// ErrorEnvelope 返回生产环境错误信封
func ErrorEnvelope(code, message, hint, requestID string) string {
	return fmt.Sprintf(`{"error":{"code":%q,"message":%q,"hint":%q,"requestId":%q,"timestamp":"2025-01-01T00:00:00Z"}}`,
		code, message, hint, requestID)
}

// RateLimitJSON 返回 rate-limit 接口的响应
const RateLimitJSON = `{"limit":1000,"remaining":750,"reset":1735689600,"percentUsed":25}`
