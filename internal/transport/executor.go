package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/recallbricks/internal/ctxkeys"
	"github.com/BaSui01/recallbricks/internal/metrics"
	"github.com/BaSui01/recallbricks/internal/retry"
	"github.com/BaSui01/recallbricks/internal/tlsutil"
	"github.com/BaSui01/recallbricks/types"
)

// SDKVersion is reported in the User-Agent header.
const SDKVersion = "1.3.0"

const (
	// HeaderRequestID carries the per-call request identifier.
	HeaderRequestID = "X-Request-ID"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
	tracerName     = "github.com/BaSui01/recallbricks"
)

// DefaultUserAgent returns the User-Agent sent when none is configured.
func DefaultUserAgent() string {
	return "recallbricks-go/" + SDKVersion
}

// Config 执行器配置
type Config struct {
	BaseURL     string
	Credentials Credentials
	// Timeout 单次尝试的超时，不限制所有重试的总耗时
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Retryer    *retry.Retryer
	// Limiter 可选的本地限流器，每次尝试前等待
	Limiter *rate.Limiter
	Metrics *metrics.Collector
	Logger  *zap.Logger
	Tracer  trace.Tracer
}

// RequestSpec describes one logical API call. It is built fresh per call.
type RequestSpec struct {
	// Operation names the facade method for logs, metrics and spans.
	Operation string
	Method    string
	// Path is relative to the base URL; identifiers must already be escaped
	// (see Path).
	Path  string
	Query url.Values
	Body  any
	// Timeout overrides the executor's per-attempt timeout when positive.
	Timeout time.Duration
}

// Path appends escaped identifier segments to a fixed route prefix. Each
// identifier is escaped on its own so it cannot inject path separators.
func Path(prefix string, ids ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}

// Executor builds, sends and classifies HTTP requests under a retry policy.
// It is safe for concurrent use; per-call state lives on the stack.
type Executor struct {
	baseURL   string
	creds     Credentials
	timeout   time.Duration
	userAgent string
	client    *http.Client
	retryer   *retry.Retryer
	limiter   *rate.Limiter
	metrics   *metrics.Collector
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New creates an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Credentials == (Credentials{}) {
		return nil, types.NewError(types.KindValidation, "Either api_key or service_token is required").
			WithCode(types.ErrCodeInvalidCredentials)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, types.NewValidationError("base_url", fmt.Sprintf("base_url must be an absolute http(s) URL, got %q", cfg.BaseURL))
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = tlsutil.SecureHTTPClient(tlsutil.DefaultPoolOptions())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Retryer == nil {
		cfg.Retryer = retry.New(retry.DefaultPolicy(), cfg.Logger)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}

	return &Executor{
		baseURL:   base,
		creds:     cfg.Credentials,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		client:    cfg.HTTPClient,
		retryer:   cfg.Retryer,
		limiter:   cfg.Limiter,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With(zap.String("component", "transport")),
		tracer:    cfg.Tracer,
	}, nil
}

// BaseURL returns the normalized base URL.
func (e *Executor) BaseURL() string { return e.baseURL }

// Timeout returns the per-attempt timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// IsServiceToken reports whether the executor authenticates with a service
// token.
func (e *Executor) IsServiceToken() bool { return e.creds.IsServiceToken() }

// Metrics returns the collector, which may be nil.
func (e *Executor) Metrics() *metrics.Collector { return e.metrics }

// Do runs spec under the retry policy and returns the raw response body of
// the first successful attempt.
func (e *Executor) Do(ctx context.Context, spec RequestSpec) ([]byte, error) {
	start := time.Now()

	requestID, ok := ctxkeys.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	ctx = ctxkeys.WithOperation(ctx, spec.Operation)

	ctx, span := e.tracer.Start(ctx, "recallbricks."+spec.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", spec.Method),
			attribute.String("url.path", spec.Path),
			attribute.String("recallbricks.request_id", requestID),
		),
	)
	defer span.End()

	payload, err := encodeBody(spec.Body)
	if err != nil {
		e.finish(span, spec.Operation, err, start)
		return nil, err
	}

	var body []byte
	err = e.retryer.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			e.metrics.RecordRetry(spec.Operation)
		}
		b, err := e.attempt(ctx, spec, payload, requestID, attempt)
		if err != nil {
			return err
		}
		body = b
		return nil
	})

	e.finish(span, spec.Operation, err, start)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (e *Executor) finish(span trace.Span, operation string, err error, start time.Time) {
	kind := ""
	if err != nil {
		kind = string(types.GetErrorKind(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.metrics.RecordOperation(operation, err, kind, time.Since(start))
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.KindValidation, "request body could not be encoded as JSON: "+err.Error()).
			WithCode(types.ErrCodeValidation).
			WithCause(err)
	}
	return b, nil
}

// attempt performs exactly one HTTP round trip.
func (e *Executor) attempt(ctx context.Context, spec RequestSpec, payload []byte, requestID string, n int) ([]byte, error) {
	if e.limiter != nil {
		waitStart := time.Now()
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.KindGeneric, "client rate limiter: "+err.Error()).
				WithCode(types.ErrCodeCancelled).
				WithCause(err)
		}
		e.metrics.RecordRateLimitWait(time.Since(waitStart))
	}

	timeout := e.timeout
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := e.newRequest(attemptCtx, spec, payload, requestID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.metrics.RecordAttempt(spec.Method, 0)
		te := transportError(ctx, attemptCtx, err).WithRequestID(requestID)
		e.logger.Debug("request failed",
			zap.String("operation", spec.Operation),
			zap.Int("attempt", n),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, te
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	e.metrics.RecordAttempt(spec.Method, resp.StatusCode)
	if err != nil {
		return nil, transportError(ctx, attemptCtx, err).WithRequestID(requestID)
	}

	e.logger.Debug("request completed",
		zap.String("operation", spec.Operation),
		zap.String("method", spec.Method),
		zap.String("path", spec.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("attempt", n),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := statusError(resp.StatusCode, resp.Header, body)
		if se.RequestID == "" {
			se.RequestID = requestID
		}
		return nil, se
	}
	if resp.StatusCode == http.StatusNoContent {
		return []byte("{}"), nil
	}
	return body, nil
}

func (e *Executor) newRequest(ctx context.Context, spec RequestSpec, payload []byte, requestID string) (*http.Request, error) {
	target := e.baseURL + spec.Path
	if len(spec.Query) > 0 {
		target += "?" + spec.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return nil, types.NewError(types.KindValidation, "invalid request: "+err.Error()).
			WithCode(types.ErrCodeValidation).
			WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	e.creds.apply(req.Header)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}
