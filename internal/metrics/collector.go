// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。nil Collector 的所有记录方法都是空操作。
type Collector struct {
	// 请求指标
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	attemptsTotal   *prometheus.CounterVec

	// 重试与错误指标
	retriesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec

	// 降级指标
	auxUnavailable *prometheus.CounterVec

	// 本地限流等待
	rateLimitWait prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器，指标注册到 reg；reg 为 nil 时使用默认 Registerer。
// 同一 reg 上多次创建时复用已注册的指标，多个 Client 共享计数。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.requestsTotal = register(reg, c.logger, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Total number of SDK operations by outcome",
		},
		[]string{"operation", "status"},
	))

	c.requestDuration = register(reg, c.logger, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "SDK operation duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"operation"},
	))

	c.attemptsTotal = register(reg, c.logger, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_http_attempts_total",
			Help:      "Total number of HTTP attempts by method and status class",
		},
		[]string{"method", "status"},
	))

	c.retriesTotal = register(reg, c.logger, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_retries_total",
			Help:      "Total number of retried attempts",
		},
		[]string{"operation"},
	))

	c.errorsTotal = register(reg, c.logger, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_errors_total",
			Help:      "Total number of failed operations by error kind",
		},
		[]string{"operation", "kind"},
	))

	c.auxUnavailable = register(reg, c.logger, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_aux_unavailable_total",
			Help:      "Total number of auxiliary fetches marked unavailable",
		},
		[]string{"operation"},
	))

	c.rateLimitWait = register(reg, c.logger, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_rate_limit_wait_seconds",
			Help:      "Time spent waiting on the client-side rate limiter",
			Buckets:   prometheus.DefBuckets,
		},
	))

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// register 注册 m；reg 上已有同名指标时返回已注册的实例
func register[T prometheus.Collector](reg prometheus.Registerer, logger *zap.Logger, m T) T {
	err := reg.Register(m)
	if err == nil {
		return m
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	// 描述冲突时仍返回未注册的实例，记录方法照常可用
	logger.Warn("metric registration failed", zap.Error(err))
	return m
}

// =============================================================================
// 🎯 记录方法
// =============================================================================

// RecordOperation 记录一次完整的 SDK 操作
func (c *Collector) RecordOperation(operation string, err error, kind string, duration time.Duration) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		c.errorsTotal.WithLabelValues(operation, kind).Inc()
	}
	c.requestsTotal.WithLabelValues(operation, status).Inc()
	c.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAttempt 记录一次 HTTP 尝试；status 为 0 表示传输层失败
func (c *Collector) RecordAttempt(method string, status int) {
	if c == nil {
		return
	}
	c.attemptsTotal.WithLabelValues(method, statusClass(status)).Inc()
}

// RecordRetry 记录一次重试
func (c *Collector) RecordRetry(operation string) {
	if c == nil {
		return
	}
	c.retriesTotal.WithLabelValues(operation).Inc()
}

// RecordAuxUnavailable 记录一次辅助数据降级
func (c *Collector) RecordAuxUnavailable(operation string) {
	if c == nil {
		return
	}
	c.auxUnavailable.WithLabelValues(operation).Inc()
}

// RecordRateLimitWait 记录本地限流等待时长
func (c *Collector) RecordRateLimitWait(d time.Duration) {
	if c == nil {
		return
	}
	c.rateLimitWait.Observe(d.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusClass 将 HTTP 状态码转换为字符串
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code == 429:
		return "429"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	case code == 0:
		return "transport_error"
	default:
		return "unknown"
	}
}
