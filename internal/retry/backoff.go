package retry

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/recallbricks/types"
)

// Policy 定义重试策略配置
type Policy struct {
	// MaxRetries 是总尝试次数上限；0 和 1 都表示只执行一次
	MaxRetries int
	// BaseDelay 第二次尝试前的等待时间，之后每次翻倍
	BaseDelay time.Duration
	// MaxDelay 计算出的退避时间上限
	MaxDelay time.Duration
	// MaxRetryAfter 服务端 Retry-After 的上限
	MaxRetryAfter time.Duration
	// RetryableStatuses 可重试的 5xx 状态码；为空表示所有 5xx 都可重试
	RetryableStatuses []int
	// Jitter 是否添加 ±25% 随机抖动
	Jitter bool
	// OnRetry 在每次重试等待前调用
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultPolicy returns the policy used by clients that configure nothing:
// three attempts with delays of 0s, 1s and 2s.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:    3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      30 * time.Second,
		MaxRetryAfter: 60 * time.Second,
	}
}

// Attempts returns the total number of attempts the policy allows.
func (p *Policy) Attempts() int {
	return max(1, p.MaxRetries)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retryer runs an operation under a Policy. It holds no per-call state and is
// safe for concurrent use.
type Retryer struct {
	policy Policy
	logger *zap.Logger
	sleep  Sleeper
}

// Option configures a Retryer.
type Option func(*Retryer)

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(r *Retryer) {
		if s != nil {
			r.sleep = s
		}
	}
}

// New creates a Retryer. A nil policy selects DefaultPolicy.
func New(policy *Policy, logger *zap.Logger, opts ...Option) *Retryer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := *policy
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.MaxRetryAfter <= 0 {
		p.MaxRetryAfter = 60 * time.Second
	}
	p.RetryableStatuses = slices.Clone(p.RetryableStatuses)

	r := &Retryer{
		policy: p,
		logger: logger.With(zap.String("component", "retry")),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns a copy of the effective policy.
func (r *Retryer) Policy() Policy {
	return r.policy
}

// Do runs fn until it succeeds, fails permanently or the attempts are used
// up. fn receives the 1-based attempt number. On exhaustion the last error
// is returned unchanged.
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := r.policy.Attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := r.Delay(attempt, lastErr)

			r.logger.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if r.policy.OnRetry != nil {
				r.policy.OnRetry(attempt, lastErr, delay)
			}

			if err := r.sleep(ctx, delay); err != nil {
				return types.NewError(types.KindGeneric, "request cancelled while waiting to retry").
					WithCode(types.ErrCodeCancelled).
					WithCause(err)
			}
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			if attempt > 1 {
				r.logger.Debug("retry succeeded", zap.Int("attempt", attempt))
			}
			return nil
		}

		if !r.IsTransient(lastErr) {
			return lastErr
		}
	}

	if attempts > 1 {
		r.logger.Warn("retry attempts exhausted",
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
	}
	return lastErr
}

// Delay returns the wait before the given 1-based attempt. A rate-limit error
// carrying a server retry-after value takes precedence over the computed
// backoff, capped at MaxRetryAfter.
func (r *Retryer) Delay(attempt int, lastErr error) time.Duration {
	if attempt <= 1 {
		return 0
	}
	if e, ok := types.AsError(lastErr); ok && e.Kind == types.KindRateLimit && e.RetryAfter > 0 {
		return min(e.RetryAfter, r.policy.MaxRetryAfter)
	}

	// delay = base * 2^(attempt-2)
	delay := float64(r.policy.BaseDelay) * math.Pow(2, float64(attempt-2))
	if delay > float64(r.policy.MaxDelay) {
		delay = float64(r.policy.MaxDelay)
	}
	if r.policy.Jitter {
		jitter := delay * 0.25
		delay += (rand.Float64()*2 - 1) * jitter
	}
	return time.Duration(delay)
}

// IsTransient reports whether err is worth another attempt.
func (r *Retryer) IsTransient(err error) bool {
	e, ok := types.AsError(err)
	if !ok {
		return false
	}
	if e.HTTPStatus >= 500 && len(r.policy.RetryableStatuses) > 0 {
		return slices.Contains(r.policy.RetryableStatuses, e.HTTPStatus)
	}
	return e.Retryable
}

// DoWithResult is the typed form of Retryer.Do.
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context, attempt int) error {
		v, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
