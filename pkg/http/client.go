package http

import (
	"net"
	"net/http"
	"time"
)

// TransportFunc decorates a RoundTripper, building a middleware chain for
// outbound requests.
type TransportFunc func(http.RoundTripper) http.RoundTripper

type Option func(*clientConfig)

type clientConfig struct {
	requestTimeout        time.Duration
	dialTimeout           time.Duration
	keepAlive             time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	transports            []TransportFunc
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.requestTimeout = d }
}

func WithDialTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.dialTimeout = d }
}

func WithKeepAlive(d time.Duration) Option {
	return func(c *clientConfig) { c.keepAlive = d }
}

func WithTLSHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.tlsHandshakeTimeout = d }
}

func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.responseHeaderTimeout = d }
}

func WithIdleConnTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.idleConnTimeout = d }
}

func WithMaxIdleConns(total, perHost int) Option {
	return func(c *clientConfig) {
		c.maxIdleConns = total
		c.maxIdleConnsPerHost = perHost
	}
}

func WithTransport(fn TransportFunc) Option {
	return func(c *clientConfig) { c.transports = append(c.transports, fn) }
}

func newClient(opts ...Option) *http.Client {
	cfg := &clientConfig{
		requestTimeout:        30 * time.Second,
		dialTimeout:           10 * time.Second,
		keepAlive:             90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConns:          100,
		maxIdleConnsPerHost:   10,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}

	// Innermost transport first, so the last option wraps outermost.
	for _, fn := range cfg.transports {
		rt = fn(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}
