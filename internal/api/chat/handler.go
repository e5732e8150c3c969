package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docuchat/chat-backend/internal/api/middleware"
	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/docuchat/chat-backend/internal/pkg/logger"
	"github.com/docuchat/chat-backend/internal/pkg/response"
	"github.com/docuchat/chat-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// QueryDocuments handles POST /chat/rag - retrieve context documents
func (h *Handler) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "QueryDocuments")

	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req entity.RagQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateRagQuery(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := h.usecase.QueryDocuments(ctx, userID, &req)
	if err != nil {
		ctxzap.Error(ctx, "failed to query documents", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve relevant documents.")
		return
	}

	ctxzap.Info(ctx, "rag query completed", zap.Int("doc_count", len(docs)))

	response.Success(w, entity.RagQueryResponse{RelevantDocs: docs})
}

// SendMessage handles POST /chat/message - one chat turn
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SendMessage")

	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req entity.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateChatMessage(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", req.SessionID))

	reply, err := h.usecase.SendMessage(ctx, userID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.ChatMessageResponse{Reply: *reply})
}

// SaveHistory handles POST /chat/history - persist session and roll over
func (h *Handler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SaveHistory")

	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req entity.SaveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateSaveHistory(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.usecase.SaveHistory(ctx, userID, req.SessionID, req.Messages)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.SaveHistoryResponse{
		Message:        "Chat history saved successfully.",
		SavedSessionID: result.SavedSessionID,
		NewSessionID:   result.NewSessionID,
	})
}

// ListSessions handles GET /chat/sessions - list session summaries
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSessions")

	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summaries, err := h.usecase.ListSessions(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, summaries)
}

// GetSession handles GET /chat/session/{sessionId} - fetch full session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if sessionID == "" {
		response.Error(w, http.StatusBadRequest, "Session ID parameter is required.")
		return
	}

	session, err := h.usecase.GetSession(ctx, userID, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// handleUsecaseError maps domain errors onto HTTP status codes in one place.
func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var statusErr *entity.StatusError

	switch {
	case errors.As(err, &statusErr):
		ctxzap.Error(ctx, "generation failed", zap.Int("status", statusErr.Code), zap.Error(err))
		response.Error(w, statusErr.Code, statusErr.Message)
	case errors.Is(err, entity.ErrSessionNotFound):
		ctxzap.Info(ctx, "session not found")
		response.Error(w, http.StatusNotFound, "Chat session not found or access denied.")
	case errors.Is(err, entity.ErrSessionConflict):
		ctxzap.Warn(ctx, "session conflict", zap.Error(err))
		response.Error(w, http.StatusConflict, "Conflict: session already exists.")
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidFormat):
		ctxzap.Error(ctx, "validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		ctxzap.Error(ctx, "internal error", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "An internal server error occurred.")
	}
}
