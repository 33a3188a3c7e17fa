package tlsutil

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultTLSConfig returns a hardened TLS configuration.
// MinVersion TLS 1.2, AEAD-only cipher suites.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}

// PoolOptions 连接池参数
type PoolOptions struct {
	// DialTimeout 建立 TCP 连接的超时
	DialTimeout time.Duration
	// MaxIdleConnsPerHost 每个主机保留的空闲连接数
	MaxIdleConnsPerHost int
	// IdleConnTimeout 空闲连接的存活时间
	IdleConnTimeout time.Duration
}

// DefaultPoolOptions returns the pool settings used by the SDK client.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		DialTimeout:         10 * time.Second,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
}

// SecureTransport returns a pooled http.Transport with TLS hardening that
// honors the standard proxy environment variables. The transport is safe for
// concurrent use by any number of in-flight requests.
func SecureTransport(opts PoolOptions) *http.Transport {
	def := DefaultPoolOptions()
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if opts.IdleConnTimeout <= 0 {
		opts.IdleConnTimeout = def.IdleConnTimeout
	}

	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: DefaultTLSConfig(),
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
		IdleConnTimeout:       opts.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// SecureHTTPClient returns an http.Client with TLS hardening. It carries no
// client-wide timeout: callers bound each request with a context deadline.
func SecureHTTPClient(opts PoolOptions) *http.Client {
	return &http.Client{Transport: SecureTransport(opts)}
}
