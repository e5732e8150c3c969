package chat

import (
	"context"

	"github.com/docuchat/chat-backend/internal/entity"
)

type ChatUsecase interface {
	QueryDocuments(ctx context.Context, userID string, req *entity.RagQueryRequest) ([]entity.RetrievedDocument, error)
	SendMessage(ctx context.Context, userID string, req *entity.ChatMessageRequest) (*entity.Message, error)
	SaveHistory(ctx context.Context, userID, sessionID string, messages []entity.Message) (*entity.SaveHistoryResult, error)
	ListSessions(ctx context.Context, userID string) ([]entity.SessionSummary, error)
	GetSession(ctx context.Context, userID, sessionID string) (*entity.ChatSession, error)
}
