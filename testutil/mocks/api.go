// =============================================================================
// 🌐 MockAPI - RecallBricks HTTP API 模拟服务
// =============================================================================
// 基于 httptest 的脚本化假服务端：按 "METHOD /path" 注册响应队列，
// 记录每一次请求，支持状态码、响应头与错误注入。
//
// 使用方法:
//
//	api := mocks.NewMockAPI(t).
//	    On("POST", "/memories/recall").Status(503).Times(2).
//	    On("POST", "/memories/recall").JSON(200, `{"memories":[]}`).
//	    Start()
//	cfg := config.DefaultConfig()
//	cfg.Client.APIKey, cfg.Client.BaseURL = "k", api.URL()
//	client, _ := recallbricks.New(cfg)
// =============================================================================
package mocks

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// =============================================================================
// 🎯 脚本化响应
// =============================================================================

// Response 一次脚本化响应
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
}

// RecordedRequest 服务端收到的一次请求
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// JSONBody 将请求体解析为 map
func (r RecordedRequest) JSONBody() map[string]any {
	if len(r.Body) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil
	}
	return m
}

type route struct {
	queue []Response
}

// next 弹出下一条响应；队列只剩最后一条时重复返回它
func (r *route) next() Response {
	resp := r.queue[0]
	if len(r.queue) > 1 {
		r.queue = r.queue[1:]
	}
	return resp
}

// =============================================================================
// 🔧 MockAPI 结构与 Builder
// =============================================================================

// MockAPI 是 RecallBricks API 的模拟实现
type MockAPI struct {
	t      testing.TB
	mu     sync.Mutex
	routes map[string]*route
	// 按路径前缀匹配的兜底路由
	prefixes map[string]*route
	requests []RecordedRequest
	server   *httptest.Server
}

// NewMockAPI 创建新的 MockAPI
func NewMockAPI(t testing.TB) *MockAPI {
	return &MockAPI{
		t:        t,
		routes:   make(map[string]*route),
		prefixes: make(map[string]*route),
	}
}

// RouteBuilder 为单个路由追加响应
type RouteBuilder struct {
	api *MockAPI
	r   *route
}

// On 选择精确匹配的路由（path 不含查询串，相对于 base URL）
func (m *MockAPI) On(method, path string) *RouteBuilder {
	return m.builder(m.routes, method+" "+path)
}

// OnPrefix 选择按前缀匹配的路由
func (m *MockAPI) OnPrefix(method, prefix string) *RouteBuilder {
	return m.builder(m.prefixes, method+" "+prefix)
}

func (m *MockAPI) builder(table map[string]*route, key string) *RouteBuilder {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := table[key]
	if !ok {
		r = &route{}
		table[key] = r
	}
	return &RouteBuilder{api: m, r: r}
}

// JSON 追加一条 JSON 响应
func (b *RouteBuilder) JSON(status int, body string) *RouteBuilder {
	return b.Respond(Response{Status: status, Body: body})
}

// Status 追加一条只有状态码的响应
func (b *RouteBuilder) Status(status int) *RouteBuilder {
	return b.Respond(Response{Status: status, Body: `{"error":{"code":"SERVER_ERROR","message":"` + http.StatusText(status) + `"}}`})
}

// Respond 追加一条完整响应
func (b *RouteBuilder) Respond(resp Response) *RouteBuilder {
	b.api.mu.Lock()
	defer b.api.mu.Unlock()
	b.r.queue = append(b.r.queue, resp)
	return b
}

// Times 将最后一条响应再重复 n-1 次
func (b *RouteBuilder) Times(n int) *RouteBuilder {
	b.api.mu.Lock()
	defer b.api.mu.Unlock()
	if len(b.r.queue) == 0 {
		return b
	}
	last := b.r.queue[len(b.r.queue)-1]
	for i := 1; i < n; i++ {
		b.r.queue = append(b.r.queue, last)
	}
	return b
}

// On 继续注册其它路由
func (b *RouteBuilder) On(method, path string) *RouteBuilder {
	return b.api.On(method, path)
}

// OnPrefix 继续注册前缀路由
func (b *RouteBuilder) OnPrefix(method, prefix string) *RouteBuilder {
	return b.api.OnPrefix(method, prefix)
}

// Start 启动服务并在测试结束时关闭
func (b *RouteBuilder) Start() *MockAPI {
	return b.api.Start()
}

// Start 启动服务并在测试结束时关闭
func (m *MockAPI) Start() *MockAPI {
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	m.t.Cleanup(m.server.Close)
	return m
}

// URL 返回服务的 base URL
func (m *MockAPI) URL() string {
	return m.server.URL
}

// =============================================================================
// 📨 请求处理与记录
// =============================================================================

func (m *MockAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Headers: r.Header.Clone(),
		Body:    body,
	})
	rt := m.match(r.Method, r.URL.EscapedPath())
	var resp Response
	if rt != nil && len(rt.queue) > 0 {
		resp = rt.next()
	}
	m.mu.Unlock()

	if rt == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"NOT_FOUND","message":"no mock route for `+r.Method+` `+r.URL.Path+`"}}`)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

// match 先精确匹配，再取最长前缀
func (m *MockAPI) match(method, path string) *route {
	if rt, ok := m.routes[method+" "+path]; ok {
		return rt
	}
	var best *route
	bestLen := -1
	key := method + " " + path
	for prefix, rt := range m.prefixes {
		if len(prefix) > bestLen && len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			best, bestLen = rt, len(prefix)
		}
	}
	return best
}

// Requests 返回已记录请求的副本
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest 返回最后一次请求
func (m *MockAPI) LastRequest() RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		m.t.Fatalf("mock api received no requests")
	}
	return m.requests[len(m.requests)-1]
}

// CallCount 返回匹配 method 与 path 的请求次数
func (m *MockAPI) CallCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}
