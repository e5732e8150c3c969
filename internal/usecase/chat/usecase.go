package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/docuchat/chat-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	previewLimit       = 75
	previewEmpty       = "Chat Session"
	previewNoUserTurns = "Continuation..."
)

// Usecase implements the chat pipeline: retrieval, prompt assembly,
// generation and session persistence.
type Usecase struct {
	sessionRepo repository.SessionRepository
	retrieval   RetrievalConnector
	generation  GenerationConnector
	logger      *zap.Logger
}

func NewUsecase(
	sessionRepo repository.SessionRepository,
	retrieval RetrievalConnector,
	generation GenerationConnector,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		sessionRepo: sessionRepo,
		retrieval:   retrieval,
		generation:  generation,
		logger:      logger,
	}
}

// QueryDocuments scores the user's documents against the query. Retrieval is
// strictly best-effort: transport failures, timeouts and malformed payloads
// collapse to an empty result set. Only a missing service configuration
// propagates, since that is a deployment defect.
func (uc *Usecase) QueryDocuments(ctx context.Context, userID string, req *entity.RagQueryRequest) ([]entity.RetrievedDocument, error) {
	docs, err := uc.retrieval.Query(ctx, entity.RagQuery{
		UserID:              userID,
		Query:               strings.TrimSpace(req.Message),
		K:                   entity.DefaultRagK,
		TargetDocumentNames: req.TargetOriginalNames,
	})
	if err != nil {
		var degraded *entity.RetrievalError
		if errors.As(err, &degraded) {
			ctxzap.Warn(ctx, "retrieval degraded to empty result set", zap.Error(err))
			return []entity.RetrievedDocument{}, nil
		}
		return nil, err
	}

	if docs == nil {
		docs = []entity.RetrievedDocument{}
	}
	return docs, nil
}

// SendMessage runs one chat turn: assemble the prompt from prior turns, the
// user question and (when RAG is enabled) the caller-supplied pre-fetched
// documents, then request a single completion. Documents supplied with RAG
// disabled are ignored entirely.
func (uc *Usecase) SendMessage(ctx context.Context, userID string, req *entity.ChatMessageRequest) (*entity.Message, error) {
	var docs []entity.RetrievedDocument
	if req.IsRagEnabled {
		docs = req.RelevantDocs
	}

	prompt := assemblePrompt(req.History, req.Message, docs, req.SystemPrompt, time.Now().UTC())
	if prompt.SkippedDocs > 0 {
		ctxzap.Warn(ctx, "skipped incomplete retrieved documents during prompt assembly",
			zap.Int("skipped", prompt.SkippedDocs),
			zap.Int("emitted", prompt.EmittedDocs),
		)
	}

	ctxzap.Info(ctx, "sending chat turn to generation",
		zap.String("session_id", req.SessionID),
		zap.Bool("rag_enabled", req.IsRagEnabled),
		zap.Int("context_docs", prompt.EmittedDocs),
		zap.Int("history_turns", len(prompt.History)),
	)

	reply, err := uc.generation.Generate(ctx, prompt.History, prompt.SystemInstruction)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	return reply, nil
}

// SaveHistory validates and persists the session's message list wholesale,
// then mints a fresh session id for the client's next conversation. The
// rollover is unconditional. When every submitted message fails validation
// persistence is skipped and SavedSessionID stays nil.
func (uc *Usecase) SaveHistory(ctx context.Context, userID, sessionID string, messages []entity.Message) (*entity.SaveHistoryResult, error) {
	valid := make([]entity.Message, 0, len(messages))
	for i := range messages {
		if messages[i].IsValid() {
			valid = append(valid, messages[i])
		}
	}

	result := &entity.SaveHistoryResult{
		NewSessionID: uuid.New().String(),
		DroppedCount: len(messages) - len(valid),
	}

	if result.DroppedCount > 0 {
		ctxzap.Warn(ctx, "dropped invalid messages during history save",
			zap.String("session_id", sessionID),
			zap.Int("dropped", result.DroppedCount),
			zap.Int("kept", len(valid)),
		)
	}

	if len(valid) == 0 {
		ctxzap.Info(ctx, "no valid messages to save, skipping persistence",
			zap.String("session_id", sessionID),
		)
		return result, nil
	}

	saved, err := uc.sessionRepo.Upsert(ctx, userID, sessionID, valid)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	result.SavedSessionID = &saved.SessionID

	ctxzap.Info(ctx, "chat history saved",
		zap.String("session_id", saved.SessionID),
		zap.Int("message_count", len(valid)),
		zap.String("next_session_id", result.NewSessionID),
	)

	return result, nil
}

// ListSessions returns the user's sessions newest-updated first.
func (uc *Usecase) ListSessions(ctx context.Context, userID string) ([]entity.SessionSummary, error) {
	sessions, err := uc.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]entity.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, entity.SessionSummary{
			SessionID:    s.SessionID,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: len(s.Messages),
			Preview:      sessionPreview(s.Messages),
		})
	}

	return summaries, nil
}

// GetSession returns the full session when owned by userID. A session owned
// by someone else is indistinguishable from a missing one.
func (uc *Usecase) GetSession(ctx context.Context, userID, sessionID string) (*entity.ChatSession, error) {
	session, err := uc.sessionRepo.GetByID(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

// sessionPreview derives the listing preview from the first user-authored
// message, truncated to previewLimit runes. Only the first user turn counts;
// if its text is empty the session reads as a continuation.
func sessionPreview(messages []entity.Message) string {
	if len(messages) == 0 {
		return previewEmpty
	}

	for i := range messages {
		if messages[i].Role != entity.RoleUser {
			continue
		}

		text := messages[i].Text()
		if text == "" {
			break
		}

		runes := []rune(text)
		if len(runes) > previewLimit {
			return string(runes[:previewLimit]) + "..."
		}
		return text
	}

	return previewNoUserTurns
}
