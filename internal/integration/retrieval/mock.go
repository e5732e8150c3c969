package retrieval

import (
	"context"

	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a stand-in retrieval client for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Query(ctx context.Context, q entity.RagQuery) ([]entity.RetrievedDocument, error) {
	ctxzap.Info(ctx, "[MOCK] querying retrieval service",
		zap.String("query", q.Query),
		zap.Int("k", q.K),
	)

	score := 0.42
	return []entity.RetrievedDocument{
		{
			DocumentName: "getting-started.md",
			Content:      "This is mock retrieval content returned for local development. It stands in for an excerpt of an indexed document.",
			Score:        &score,
		},
	}, nil
}

func (m *MockConnector) Health(ctx context.Context) (*entity.RetrievalHealthResponse, error) {
	ctxzap.Info(ctx, "[MOCK] retrieval health check")
	return &entity.RetrievalHealthResponse{Status: "ok", Message: "mock retrieval service"}, nil
}
