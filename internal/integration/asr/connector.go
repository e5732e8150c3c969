package asr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/docuchat/chat-backend/internal/config"
	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Connector transcribes audio through the provider's Whisper API.
type Connector struct {
	client *openai.Client
	config config.GenerationConfig
	logger *zap.Logger
}

func NewConnector(cfg config.GenerationConfig, logger *zap.Logger) *Connector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Connector{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
		logger: logger,
	}
}

func (c *Connector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if c.config.APIKey == "" {
		return "", entity.ErrSpeechNotConfigured
	}
	if len(audioData) == 0 {
		return "", fmt.Errorf("%w: empty audio data", entity.ErrInvalidFormat)
	}

	hash := sha256.Sum256(audioData)
	checksum := hex.EncodeToString(hash[:])

	ctxzap.Info(ctx, "transcribing audio",
		zap.String("filename", filename),
		zap.String("checksum", checksum),
		zap.Int("size", len(audioData)),
	)

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.config.WhisperModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audioData),
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	ctxzap.Info(ctx, "audio transcribed successfully", zap.Int("transcription_length", len(resp.Text)))

	return resp.Text, nil
}
