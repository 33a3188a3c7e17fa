package recallbricks

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/recallbricks/autonomous"
	"github.com/BaSui01/recallbricks/config"
	"github.com/BaSui01/recallbricks/internal/ctxkeys"
	"github.com/BaSui01/recallbricks/internal/metrics"
	"github.com/BaSui01/recallbricks/internal/retry"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

// Version is the SDK version reported in the User-Agent header.
const Version = transport.SDKVersion

// Client is the RecallBricks API client. It is safe for concurrent use.
type Client struct {
	exec       *transport.Executor
	autonomous *autonomous.Client
	logger     *zap.Logger
	metrics    *metrics.Collector
	userID     string
	auxLimit   int

	deprecatedSave sync.Once
}

// Option customizes a Client beyond what config.Config expresses.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
	registerer prometheus.Registerer
	sleeper    retry.Sleeper
	tracer     trace.Tracer
	onRetry    func(attempt int, err error, delay time.Duration)
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient replaces the pooled HTTP client. Per-attempt timeouts are
// applied through the request context, so the client's own Timeout should
// be zero or larger than config.ClientConfig.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMetricsRegisterer enables Prometheus metrics registered on reg, even
// when config.MetricsConfig.Enabled is false.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithRetrySleeper replaces the wait between retry attempts. It must return
// ctx.Err() when ctx ends first.
func WithRetrySleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleeper = sleep }
}

// WithTracer sets the tracer used for client spans. The default uses the
// global TracerProvider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithOnRetry registers a hook called before each retry wait.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// New creates a Client from cfg. Credentials are checked before anything
// else, so conflicting or missing credentials always surface as a
// validation error with the credential message.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	creds, err := transport.NewCredentials(cfg.Client.APIKey, cfg.Client.ServiceToken)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, types.NewError(types.KindValidation, err.Error()).
			WithCode(types.ErrCodeValidation).
			WithCause(err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	logger := o.logger.With(zap.String("component", "recallbricks"))

	var collector *metrics.Collector
	if cfg.Metrics.Enabled || o.registerer != nil {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, o.registerer, o.logger)
	}

	policy := &retry.Policy{
		MaxRetries:        cfg.Retry.MaxRetries,
		BaseDelay:         cfg.Retry.BaseDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		MaxRetryAfter:     cfg.Retry.MaxRetryAfter,
		RetryableStatuses: cfg.Retry.RetryableStatuses,
		Jitter:            cfg.Retry.Jitter,
		OnRetry:           o.onRetry,
	}
	var retryOpts []retry.Option
	if o.sleeper != nil {
		retryOpts = append(retryOpts, retry.WithSleeper(o.sleeper))
	}
	retryer := retry.New(policy, o.logger, retryOpts...)

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), max(1, cfg.RateLimit.Burst))
	}

	base := transport.Config{
		Credentials: creds,
		Timeout:     cfg.Client.Timeout,
		UserAgent:   cfg.Client.UserAgent,
		HTTPClient:  o.httpClient,
		Retryer:     retryer,
		Limiter:     limiter,
		Metrics:     collector,
		Logger:      o.logger,
		Tracer:      o.tracer,
	}

	core := base
	core.BaseURL = cfg.Client.BaseURL
	exec, err := transport.New(core)
	if err != nil {
		return nil, err
	}

	auto := base
	auto.BaseURL = cfg.Client.AutonomousBaseURL
	autoExec, err := transport.New(auto)
	if err != nil {
		return nil, err
	}

	logger.Debug("client created",
		zap.String("base_url", exec.BaseURL()),
		zap.Bool("service_token", exec.IsServiceToken()),
		zap.Int("max_retries", policy.MaxRetries),
		zap.Bool("rate_limit", limiter != nil),
	)

	return &Client{
		exec:       exec,
		autonomous: autonomous.New(autoExec, o.logger),
		logger:     logger,
		metrics:    collector,
		userID:     cfg.Client.UserID,
		auxLimit:   cfg.Client.MaxAuxConcurrency,
	}, nil
}

// NewWithAPIKey creates a Client with default configuration and an API key.
func NewWithAPIKey(apiKey string, opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	cfg.Client.APIKey = apiKey
	return New(cfg, opts...)
}

// NewWithServiceToken creates a Client with default configuration and a
// service token. userID becomes the default subject of user-scoped calls
// and may be empty.
func NewWithServiceToken(serviceToken, userID string, opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	cfg.Client.ServiceToken = serviceToken
	cfg.Client.UserID = userID
	return New(cfg, opts...)
}

// Autonomous returns the autonomous agent clients.
func (c *Client) Autonomous() *autonomous.Client {
	return c.autonomous
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.exec.BaseURL()
}

// WithUserID returns a context whose user-scoped calls default to userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return ctxkeys.WithUserID(ctx, userID)
}

// WithRequestID returns a context whose calls send requestID as
// X-Request-ID. Without it every call generates a fresh UUID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return ctxkeys.WithRequestID(ctx, requestID)
}

// resolveUserID picks the user_id of a user-scoped call: explicit option,
// then context, then the configured default. A supplied value must not be
// blank under any auth mode; under service-token auth one is required.
func (c *Client) resolveUserID(ctx context.Context, explicit string) (string, error) {
	id := explicit
	if id == "" {
		id, _ = ctxkeys.UserID(ctx)
	}
	if id == "" {
		id = c.userID
	}
	if id != "" {
		if err := validate.Identifier("user_id", id); err != nil {
			return "", err
		}
	}
	if err := validate.UserID(id, c.exec.IsServiceToken()); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) do(ctx context.Context, spec transport.RequestSpec) ([]byte, error) {
	return c.exec.Do(ctx, spec)
}
