package http

import (
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// payloadContextKey carries the marshalled request body from DoRequest down
// to the logging transport.
type payloadContextKey struct{}

type logTransport struct {
	next http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}
	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.ByteString("payload", payload))
	}
	ctxzap.Debug(ctx, "outbound http request", fields...)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		ctxzap.Warn(ctx, "outbound http request failed",
			zap.String("url", req.URL.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	ctxzap.Debug(ctx, "outbound http response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

// WithRequestLogging logs outbound requests and responses with method, URL,
// payload, status and latency.
func WithRequestLogging() Option {
	return WithTransport(func(next http.RoundTripper) http.RoundTripper {
		return &logTransport{next: next}
	})
}

type authTransport struct {
	token string
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(clone)
}

// WithAuthToken attaches a static bearer token to every outbound request.
// A no-op when the token is empty.
func WithAuthToken(token string) Option {
	return WithTransport(func(next http.RoundTripper) http.RoundTripper {
		if token == "" {
			return next
		}
		return &authTransport{token: token, next: next}
	})
}
