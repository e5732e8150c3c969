package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/docuchat/chat-backend/internal/config"
	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/docuchat/chat-backend/internal/integration/common"
	pkghttp "github.com/docuchat/chat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.RetrievalConnectorConfig
	connector *pkghttp.Connector
	cache     *gocache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RetrievalConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.ServiceURL, cfg.HTTPClientConfig, logger),
		config:    cfg,
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:    logger,
	}
}

// Query scores the user's documents against a free-text query.
// POST {service_url}/query with {user_id, query, k, target_original_names?}
//
// An unset service URL is a deployment defect and fails loudly with
// entity.ErrRetrievalNotConfigured. Every transport or payload failure is
// wrapped in *entity.RetrievalError so the caller can degrade to an empty
// result set without inspecting the cause.
func (c *Connector) Query(ctx context.Context, q entity.RagQuery) ([]entity.RetrievedDocument, error) {
	if c.config.ServiceURL == "" {
		return nil, entity.ErrRetrievalNotConfigured
	}

	if q.K <= 0 {
		q.K = entity.DefaultRagK
	}

	key := cacheKey(q)
	if cached, ok := c.cache.Get(key); ok {
		docs := cached.([]entity.RetrievedDocument)
		ctxzap.Debug(ctx, "retrieval cache hit", zap.Int("doc_count", len(docs)))
		return docs, nil
	}

	req := entity.RetrievalQueryRequest{
		UserID: q.UserID,
		Query:  q.Query,
		K:      q.K,
	}
	if len(q.TargetDocumentNames) > 0 {
		req.TargetOriginalNames = q.TargetDocumentNames
		ctxzap.Info(ctx, "querying retrieval service",
			zap.Int("k", q.K),
			zap.Strings("target_documents", q.TargetDocumentNames),
		)
	} else {
		ctxzap.Info(ctx, "querying retrieval service (all user documents)", zap.Int("k", q.K))
	}

	var resp entity.RetrievalQueryResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/query", req, &resp); err != nil {
		return nil, &entity.RetrievalError{Err: fmt.Errorf("query retrieval service: %w", err)}
	}

	if resp.RelevantDocs == nil {
		return nil, &entity.RetrievalError{Err: fmt.Errorf("retrieval service returned malformed payload: missing relevantDocs")}
	}

	ctxzap.Info(ctx, "retrieval query succeeded", zap.Int("doc_count", len(resp.RelevantDocs)))

	c.cache.Set(key, resp.RelevantDocs, gocache.DefaultExpiration)

	return resp.RelevantDocs, nil
}

// Health probes the retrieval service's /health endpoint.
func (c *Connector) Health(ctx context.Context) (*entity.RetrievalHealthResponse, error) {
	if c.config.ServiceURL == "" {
		return nil, entity.ErrRetrievalNotConfigured
	}

	var resp entity.RetrievalHealthResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("retrieval health check: %w", err)
	}

	if resp.Status != "ok" {
		return &resp, fmt.Errorf("retrieval service unhealthy: %s", resp.Message)
	}

	return &resp, nil
}

func cacheKey(q entity.RagQuery) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%s", q.UserID, q.Query, q.K, strings.Join(q.TargetDocumentNames, "\x00"))
	return hex.EncodeToString(h.Sum(nil))
}
