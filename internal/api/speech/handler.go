package speech

import (
	"errors"
	"io"
	"net/http"

	"github.com/docuchat/chat-backend/internal/api/middleware"
	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/docuchat/chat-backend/internal/pkg/logger"
	"github.com/docuchat/chat-backend/internal/pkg/response"
	"github.com/docuchat/chat-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxMultipartMemory = 8 << 20

type Handler struct {
	usecase   SpeechUsecase
	validator *validator.Validator
}

func NewHandler(usecase SpeechUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Transcribe handles POST /speech/transcribe - transcribe an uploaded audio file
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Transcribe")

	if _, ok := middleware.UserID(ctx); !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "No audio file provided.")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		ctxzap.Error(ctx, "missing audio file in request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "No audio file provided.")
		return
	}
	defer file.Close()

	if err := h.validator.ValidateAudioFile(header); err != nil {
		ctxzap.Error(ctx, "failed to validate audio file", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	audioData, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read audio file", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to read audio file.")
		return
	}

	transcription, err := h.usecase.Transcribe(ctx, audioData, header.Filename)
	if err != nil {
		if errors.Is(err, entity.ErrSpeechNotConfigured) {
			ctxzap.Error(ctx, "speech service not configured")
			response.Error(w, http.StatusServiceUnavailable, "Speech service is not configured.")
			return
		}
		ctxzap.Error(ctx, "transcription failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to transcribe audio.")
		return
	}

	response.Success(w, entity.TranscribeResponse{Transcription: transcription})
}
