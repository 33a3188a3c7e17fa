package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCollector() *Collector {
	return NewCollector("test", prometheus.NewRegistry(), zap.NewNop())
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestCollector_RecordOperation(t *testing.T) {
	c := newTestCollector()

	c.RecordOperation("recall", nil, "", 120*time.Millisecond)
	c.RecordOperation("recall", errors.New("boom"), "api", 80*time.Millisecond)
	c.RecordOperation("recall", errors.New("boom"), "api", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("recall", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("recall", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("recall", "api")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.requestDuration))
}

func TestCollector_RecordAttempt(t *testing.T) {
	c := newTestCollector()

	c.RecordAttempt("POST", 503)
	c.RecordAttempt("POST", 503)
	c.RecordAttempt("POST", 200)
	c.RecordAttempt("GET", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("POST", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("POST", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("GET", "transport_error")))
}

func TestCollector_RetryAndAux(t *testing.T) {
	c := newTestCollector()

	c.RecordRetry("search")
	c.RecordAuxUnavailable("search")
	c.RecordAuxUnavailable("search")
	c.RecordRateLimitWait(5 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.retriesTotal.WithLabelValues("search")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.auxUnavailable.WithLabelValues("search")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.rateLimitWait))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordOperation("get", nil, "", time.Second)
		c.RecordAttempt("GET", 200)
		c.RecordRetry("get")
		c.RecordAuxUnavailable("search")
		c.RecordRateLimitWait(time.Second)
	})
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		204: "2xx",
		301: "3xx",
		404: "4xx",
		429: "429",
		500: "5xx",
		503: "5xx",
		0:   "transport_error",
		-1:  "unknown",
	}
	for code, want := range cases {
		assert.Equal(t, want, statusClass(code), "code %d", code)
	}
}

func TestNewCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewCollector("test", reg, zap.NewNop())

	var second *Collector
	assert.NotPanics(t, func() { second = NewCollector("test", reg, zap.NewNop()) })

	first.RecordRetry("recall")
	second.RecordRetry("recall")
	second.RecordRateLimitWait(time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.retriesTotal.WithLabelValues("recall")))
	assert.Same(t, first.retriesTotal, second.retriesTotal)

	n, err := testutil.GatherAndCount(reg, "test_client_retries_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewCollector_DefaultRegistererTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("test_default_twice", nil, zap.NewNop())
		NewCollector("test_default_twice", nil, zap.NewNop())
	})
}
