package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers every turn with a canned reply for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, history []entity.Message, systemInstruction string) (*entity.Message, error) {
	ctxzap.Info(ctx, "[MOCK] generating chat completion",
		zap.Int("turn_count", len(history)),
		zap.Int("system_instruction_length", len(systemInstruction)),
	)

	last := history[len(history)-1]
	reply := entity.NewTextMessage(
		entity.RoleModel,
		fmt.Sprintf("Mock reply to: %q", last.Text()),
		time.Now().UTC(),
	)

	return &reply, nil
}
