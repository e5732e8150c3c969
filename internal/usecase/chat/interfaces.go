package chat

import (
	"context"

	"github.com/docuchat/chat-backend/internal/entity"
)

type RetrievalConnector interface {
	Query(ctx context.Context, q entity.RagQuery) ([]entity.RetrievedDocument, error)
}

type GenerationConnector interface {
	Generate(ctx context.Context, history []entity.Message, systemInstruction string) (*entity.Message, error)
}
