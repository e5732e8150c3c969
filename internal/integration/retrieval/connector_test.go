package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docuchat/chat-backend/internal/config"
	"github.com/docuchat/chat-backend/internal/entity"
	"go.uber.org/zap"
)

func testConfig(serviceURL string, requestTimeout time.Duration) config.RetrievalConnectorConfig {
	return config.RetrievalConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        requestTimeout,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: requestTimeout,
		},
		ServiceURL: serviceURL,
		CacheTTL:   time.Minute,
	}
}

func TestQueryNotConfigured(t *testing.T) {
	conn := NewConnector(testConfig("", time.Second), zap.NewNop())

	_, err := conn.Query(context.Background(), entity.RagQuery{UserID: "u1", Query: "q"})
	if !errors.Is(err, entity.ErrRetrievalNotConfigured) {
		t.Errorf("unset service URL must fail loudly, got %v", err)
	}
}

func TestQuerySuccessAndCaching(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req entity.RetrievalQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.UserID != "u1" || req.Query != "q" || req.K != 5 {
			t.Errorf("unexpected request payload: %+v", req)
		}

		score := 0.5
		json.NewEncoder(w).Encode(entity.RetrievalQueryResponse{
			RelevantDocs: []entity.RetrievedDocument{
				{DocumentName: "doc.pdf", Content: "text", Score: &score},
			},
		})
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL, time.Second), zap.NewNop())

	q := entity.RagQuery{UserID: "u1", Query: "q"} // K defaults to 5
	docs, err := conn.Query(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].DocumentName != "doc.pdf" {
		t.Fatalf("unexpected docs: %+v", docs)
	}

	if _, err := conn.Query(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("second identical query must hit the cache, server saw %d calls", got)
	}
}

func TestQueryMalformedPayloadDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL, time.Second), zap.NewNop())

	_, err := conn.Query(context.Background(), entity.RagQuery{UserID: "u1", Query: "q"})

	var degraded *entity.RetrievalError
	if !errors.As(err, &degraded) {
		t.Errorf("malformed payload must produce a RetrievalError, got %v", err)
	}
}

func TestQueryUpstreamErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL, time.Second), zap.NewNop())

	_, err := conn.Query(context.Background(), entity.RagQuery{UserID: "u1", Query: "q"})

	var degraded *entity.RetrievalError
	if !errors.As(err, &degraded) {
		t.Errorf("upstream 5xx must produce a RetrievalError, got %v", err)
	}
}

func TestQueryTimeoutDegrades(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	conn := NewConnector(testConfig(server.URL, 50*time.Millisecond), zap.NewNop())

	_, err := conn.Query(context.Background(), entity.RagQuery{UserID: "u1", Query: "q"})

	var degraded *entity.RetrievalError
	if !errors.As(err, &degraded) {
		t.Errorf("timeout must produce a RetrievalError, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(entity.RetrievalHealthResponse{
			Status:             "ok",
			DefaultIndexLoaded: true,
		})
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL, time.Second), zap.NewNop())

	health, err := conn.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !health.DefaultIndexLoaded {
		t.Error("health payload not decoded")
	}
}

func TestHealthUnhealthyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.RetrievalHealthResponse{Status: "error", Message: "index missing"})
	}))
	defer server.Close()

	conn := NewConnector(testConfig(server.URL, time.Second), zap.NewNop())

	if _, err := conn.Health(context.Background()); err == nil {
		t.Error("non-ok health status must be reported as an error")
	}
}
