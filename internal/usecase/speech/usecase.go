package speech

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Usecase delegates speech transcription to the configured provider.
type Usecase struct {
	asrConnector ASRConnector
	logger       *zap.Logger
}

func NewUsecase(asrConnector ASRConnector, logger *zap.Logger) *Usecase {
	return &Usecase{
		asrConnector: asrConnector,
		logger:       logger,
	}
}

func (uc *Usecase) Transcribe(ctx context.Context, audioData []byte, filename string) (string, error) {
	transcription, err := uc.asrConnector.TranscribeBytes(ctx, audioData, filename)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	ctxzap.Info(ctx, "transcription completed",
		zap.String("filename", filename),
		zap.Int("transcription_length", len(transcription)),
	)

	return transcription, nil
}
