// Package httpclient provides pooled HTTP clients for the relay's buffered
// and streaming profiles.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig holds transport options shared by both profiles. Idle
// connections are pooled per host so sustained traffic reuses connections.
type ClientConfig struct {
	// MaxIdleConns bounds idle (keep-alive) connections across all hosts
	MaxIdleConns int

	// MaxIdleConnsPerHost bounds idle connections kept per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays open
	IdleConnTimeout time.Duration

	// DialTimeout is the maximum time a dial waits for a connect to complete
	DialTimeout time.Duration

	// KeepAlive is the interval between keep-alive probes
	KeepAlive time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns transport defaults sized for API relaying.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

func newTransport(cfg ClientConfig, responseHeaderTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewBufferedClient returns a client whose timeout covers the whole call.
// A zero timeout disables the limit.
func NewBufferedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newTransport(DefaultConfig(), 0),
		Timeout:   timeout,
	}
}

// NewStreamingClient returns a client for SSE relaying: the timeout applies
// only to establishing the response headers, never to the lifetime of the
// stream. A zero timeout disables the limit.
func NewStreamingClient(headerTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newTransport(DefaultConfig(), headerTimeout),
	}
}
