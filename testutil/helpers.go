// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 上下文、请求体断言与日志观测。
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	testutil.AssertJSONEqual(t, `{"text":"hi"}`, api.LastRequest().Body)
// =============================================================================
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestContext 返回 30 秒超时、随测试结束取消的上下文
func TestContext(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// AssertJSONEqual 断言两个 JSON 文档语义相等（忽略键顺序与空白）。
// string 与 []byte 视为已编码的 JSON，其余值先编码。
func AssertJSONEqual(t testing.TB, expected, actual any) bool {
	t.Helper()
	return assert.JSONEq(t, jsonText(t, expected), jsonText(t, actual))
}

func jsonText(t testing.TB, v any) string {
	t.Helper()
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// ObservedLogger 返回记录所有日志条目的 logger，用于断言告警与降级日志
func ObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}
