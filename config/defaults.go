// =============================================================================
// 📦 RecallBricks 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultBaseURL 是生产环境 API 地址
const DefaultBaseURL = "https://api.recallbricks.com/api/v1"

// DefaultAutonomousBaseURL 是自主代理接口的主机地址
const DefaultAutonomousBaseURL = "https://api.recallbricks.com"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Client:    DefaultClientConfig(),
		Retry:     DefaultRetryConfig(),
		RateLimit: DefaultRateLimitConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultClientConfig 返回默认客户端配置（不含凭证）
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		AutonomousBaseURL: DefaultAutonomousBaseURL,
		Timeout:           30 * time.Second,
		MaxAuxConcurrency: 4,
	}
}

// DefaultRetryConfig 返回默认重试配置：3 次尝试，延迟 0s/1s/2s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      30 * time.Second,
		MaxRetryAfter: 60 * time.Second,
	}
}

// DefaultRateLimitConfig 返回默认限流配置（关闭）
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           false,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "recallbricks",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "recallbricks",
	}
}
