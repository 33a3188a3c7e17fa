package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/BaSui01/recallbricks/internal/ctxkeys"
	"github.com/BaSui01/recallbricks/internal/metrics"
	"github.com/BaSui01/recallbricks/internal/retry"
	"github.com/BaSui01/recallbricks/testutil/fixtures"
	"github.com/BaSui01/recallbricks/testutil/mocks"
	"github.com/BaSui01/recallbricks/types"
)

type sleeps struct{ delays []time.Duration }

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestExecutor(t *testing.T, baseURL string, creds Credentials) (*Executor, *sleeps) {
	t.Helper()
	s := &sleeps{}
	logger := zaptest.NewLogger(t)
	exec, err := New(Config{
		BaseURL:     baseURL,
		Credentials: creds,
		Retryer:     retry.New(retry.DefaultPolicy(), logger, retry.WithSleeper(s.sleep)),
		Metrics:     metrics.NewCollector("test", prometheus.NewRegistry(), logger),
		Logger:      logger,
	})
	require.NoError(t, err)
	return exec, s
}

func apiKey(t *testing.T) Credentials {
	c, err := NewCredentials("rb_key", "")
	require.NoError(t, err)
	return c
}

func TestNewCredentials(t *testing.T) {
	_, err := NewCredentials("", "")
	require.Error(t, err)
	assert.Equal(t, "Either api_key or service_token is required", err.Error())
	assert.True(t, errors.Is(err, types.ErrValidation))

	_, err = NewCredentials("k", "s")
	require.Error(t, err)
	assert.Equal(t, "Provide either api_key or service_token, not both", err.Error())
	assert.Equal(t, types.ErrCodeInvalidCredentials, types.GetErrorCode(err))

	c, err := NewCredentials("", "svc")
	require.NoError(t, err)
	assert.True(t, c.IsServiceToken())
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{BaseURL: "https://api.example.com"})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not a url", Credentials: apiKey(t)})
	assert.Error(t, err)

	exec, err := New(Config{BaseURL: "https://api.example.com/api/v1/", Credentials: apiKey(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api/v1", exec.BaseURL())
	assert.Equal(t, 30*time.Second, exec.Timeout())
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/memories/m1", Path("/memories", "m1"))
	assert.Equal(t, "/relationships/graph/a%2Fb", Path("/relationships/graph", "a/b"))
	assert.Equal(t, "/memories/..%2F..%2Fetc", Path("/memories", "../../etc"))
	assert.Equal(t, "/health", Path("/health"))
}

func TestExecutor_HeadersAndBody(t *testing.T) {
	api := mocks.NewMockAPI(t).On("POST", "/memories").JSON(201, `{"id":"m1"}`).Start()
	exec, _ := newTestExecutor(t, api.URL(), apiKey(t))

	ctx := ctxkeys.WithRequestID(context.Background(), "req-fixed")
	body, err := exec.Do(ctx, RequestSpec{
		Operation: "save",
		Method:    http.MethodPost,
		Path:      "/memories",
		Query:     url.Values{"dry": []string{"1"}},
		Body:      map[string]any{"text": "hello"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1"}`, string(body))

	req := api.LastRequest()
	assert.Equal(t, "rb_key", req.Headers.Get(HeaderAPIKey))
	assert.Empty(t, req.Headers.Get(HeaderServiceToken))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, DefaultUserAgent(), req.Headers.Get("User-Agent"))
	assert.Equal(t, "req-fixed", req.Headers.Get(HeaderRequestID))
	assert.Equal(t, "1", req.Query.Get("dry"))
	assert.Equal(t, "hello", req.JSONBody()["text"])
}

func TestExecutor_ServiceTokenHeader(t *testing.T) {
	api := mocks.NewMockAPI(t).On("GET", "/health").JSON(200, `{"status":"ok"}`).Start()
	creds, err := NewCredentials("", "svc_token")
	require.NoError(t, err)
	exec, _ := newTestExecutor(t, api.URL(), creds)

	_, err = exec.Do(context.Background(), RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Equal(t, "svc_token", api.LastRequest().Headers.Get(HeaderServiceToken))
	assert.Empty(t, api.LastRequest().Headers.Get(HeaderAPIKey))
}

// 场景：两次 503 后 200，共 3 次尝试，延迟 [1s, 2s]，同一请求 ID
func TestExecutor_RetriesTransientStatus(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On("GET", "/memories/m1").Status(503).Times(2).
		On("GET", "/memories/m1").JSON(200, `{"id":"m1"}`).
		Start()
	exec, s := newTestExecutor(t, api.URL(), apiKey(t))

	body, err := exec.Do(context.Background(), RequestSpec{Operation: "get", Method: http.MethodGet, Path: "/memories/m1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1"}`, string(body))
	assert.Equal(t, 3, api.CallCount("GET", "/memories/m1"))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.delays)

	reqs := api.Requests()
	assert.Equal(t, reqs[0].Headers.Get(HeaderRequestID), reqs[2].Headers.Get(HeaderRequestID))
}

func TestExecutor_PermanentStatusNotRetried(t *testing.T) {
	tests := []struct {
		status int
		kind   types.ErrorKind
		code   types.ErrorCode
	}{
		{400, types.KindValidation, types.ErrCodeValidation},
		{401, types.KindAuthentication, types.ErrCodeInvalidAPIKey},
		{403, types.KindAuthentication, types.ErrCodeInvalidAPIKey},
		{404, types.KindNotFound, types.ErrCodeNotFound},
		{409, types.KindAPI, types.ErrCodeRequestFailed},
	}

	for _, tt := range tests {
		api := mocks.NewMockAPI(t).On("GET", "/memories/x").JSON(tt.status, `{"message":"nope"}`).Start()
		exec, s := newTestExecutor(t, api.URL(), apiKey(t))

		_, err := exec.Do(context.Background(), RequestSpec{Operation: "get", Method: http.MethodGet, Path: "/memories/x"})
		require.Error(t, err)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, tt.kind, e.Kind, "status %d", tt.status)
		assert.Equal(t, tt.code, e.Code, "status %d", tt.status)
		assert.Equal(t, tt.status, e.HTTPStatus)
		assert.Equal(t, "nope", e.Message)
		assert.NotEmpty(t, e.RequestID)
		assert.Equal(t, 1, api.CallCount("GET", "/memories/x"))
		assert.Empty(t, s.delays)
	}
}

func TestExecutor_ExhaustionReturnsLastError(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On("POST", "/memories/recall").
		JSON(500, fixtures.ErrorEnvelope("E1", "first", "", "r1")).
		JSON(502, fixtures.ErrorEnvelope("E2", "second", "", "r2")).
		JSON(503, fixtures.ErrorEnvelope("E3", "third", "try later", "r3")).
		Start()
	exec, _ := newTestExecutor(t, api.URL(), apiKey(t))

	_, err := exec.Do(context.Background(), RequestSpec{Operation: "recall", Method: http.MethodPost, Path: "/memories/recall", Body: map[string]any{}})
	require.Error(t, err)
	e, _ := types.AsError(err)
	assert.Equal(t, 503, e.HTTPStatus)
	assert.Equal(t, types.ErrorCode("E3"), e.Code)
	assert.Equal(t, "third (hint: try later) [request_id: r3]", e.Error())
}

func TestExecutor_RateLimitHonorsHeader(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On("GET", "/rate-limit").Respond(mocks.Response{
		Status:  429,
		Body:    `{"error":{"message":"Too many requests"}}`,
		Headers: map[string]string{"X-RateLimit-Reset": "7"},
	}).
		On("GET", "/rate-limit").JSON(200, fixtures.RateLimitJSON).
		Start()
	exec, s := newTestExecutor(t, api.URL(), apiKey(t))

	_, err := exec.Do(context.Background(), RequestSpec{Operation: "rate_limit", Method: http.MethodGet, Path: "/rate-limit"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{7 * time.Second}, s.delays)
}

func TestExecutor_RateLimitSurfacedWithRetryAfter(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On("GET", "/health").Respond(mocks.Response{
		Status:  429,
		Body:    `{}`,
		Headers: map[string]string{"Retry-After": "2"},
	}).
		Start()
	exec, _ := newTestExecutor(t, api.URL(), apiKey(t))

	_, err := exec.Do(context.Background(), RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrRateLimit))
	e, _ := types.AsError(err)
	assert.Equal(t, 2*time.Second, e.RetryAfter)
	assert.Equal(t, 3, api.CallCount("GET", "/health"))
}

func TestExecutor_NoContent(t *testing.T) {
	api := mocks.NewMockAPI(t).On("DELETE", "/memories/m1").Respond(mocks.Response{Status: 204}).Start()
	exec, _ := newTestExecutor(t, api.URL(), apiKey(t))

	body, err := exec.Do(context.Background(), RequestSpec{Operation: "delete", Method: http.MethodDelete, Path: "/memories/m1"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestExecutor_ConnectionErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	exec, s := newTestExecutor(t, addr, apiKey(t))
	_, err := exec.Do(context.Background(), RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeConnection, types.GetErrorCode(err))
	assert.True(t, errors.Is(err, types.ErrGeneric))
	assert.Len(t, s.delays, 2)
}

func TestExecutor_PerAttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	exec, err := New(Config{
		BaseURL:     srv.URL,
		Credentials: apiKey(t),
		Timeout:     20 * time.Millisecond,
		Retryer:     retry.New(&retry.Policy{MaxRetries: 1}, logger),
		Logger:      logger,
	})
	require.NoError(t, err)

	_, err = exec.Do(context.Background(), RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeTimeout, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestExecutor_CallerCancellation(t *testing.T) {
	api := mocks.NewMockAPI(t).On("GET", "/health").JSON(200, `{}`).Start()
	exec, _ := newTestExecutor(t, api.URL(), apiKey(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exec.Do(ctx, RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeCancelled, types.GetErrorCode(err))
	assert.False(t, types.IsRetryable(err))
}

func TestExecutor_UnencodableBody(t *testing.T) {
	exec, _ := newTestExecutor(t, "https://api.example.com", apiKey(t))
	_, err := exec.Do(context.Background(), RequestSpec{
		Operation: "save", Method: http.MethodPost, Path: "/memories",
		Body: map[string]any{"bad": make(chan int)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestExecutor_ClientRateLimiter(t *testing.T) {
	api := mocks.NewMockAPI(t).On("GET", "/health").JSON(200, `{}`).Start()
	logger := zaptest.NewLogger(t)
	exec, err := New(Config{
		BaseURL:     api.URL(),
		Credentials: apiKey(t),
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		Logger:      logger,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := exec.Do(context.Background(), RequestSpec{Operation: "health", Method: http.MethodGet, Path: "/health"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, api.CallCount("GET", "/health"))
}
