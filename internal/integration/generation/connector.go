package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/docuchat/chat-backend/internal/config"
	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const genericFailureMessage = "An internal server error occurred processing the AI response."

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

// Generate sends the assembled history and system instruction to the model
// provider and returns its single reply turn. One attempt per call; any
// retry policy belongs to the caller's deployment, not here.
func (c *Connector) Generate(ctx context.Context, history []entity.Message, systemInstruction string) (*entity.Message, error) {
	if len(history) == 0 {
		return nil, &entity.StatusError{Code: http.StatusBadRequest, Message: "conversation history is empty"}
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	for i := range history {
		messages = append(messages, toProviderMessage(&history[i]))
	}

	ctxzap.Info(ctx, "requesting chat completion",
		zap.String("model", c.config.ChatModel),
		zap.Int("turn_count", len(history)),
		zap.Int("system_instruction_length", len(systemInstruction)),
	)

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.config.ChatModel,
		Messages: messages,
	})
	if err != nil {
		statusErr := mapProviderError(err)
		ctxzap.Error(ctx, "chat completion failed",
			zap.Int("status", statusErr.Code),
			zap.Error(err),
		)
		return nil, statusErr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		ctxzap.Error(ctx, "chat completion returned no content")
		return nil, &entity.StatusError{Code: http.StatusInternalServerError, Message: genericFailureMessage}
	}

	reply := entity.NewTextMessage(entity.RoleModel, resp.Choices[0].Message.Content, time.Now().UTC())

	ctxzap.Info(ctx, "chat completion succeeded",
		zap.Int("reply_length", len(reply.Text())),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return &reply, nil
}

func toProviderMessage(m *entity.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if m.Role == entity.RoleModel {
		role = openai.ChatMessageRoleAssistant
	}

	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		texts = append(texts, p.Text)
	}

	return openai.ChatCompletionMessage{
		Role:    role,
		Content: strings.Join(texts, "\n"),
	}
}

// mapProviderError converts provider failures into a StatusError carrying an
// HTTP-equivalent code. Internal detail never leaks: a plain 500 gets a
// generic client-facing message.
func mapProviderError(err error) *entity.StatusError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &entity.StatusError{Code: http.StatusGatewayTimeout, Message: "AI service did not respond in time."}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPStatusCode
		if code == 0 {
			code = http.StatusInternalServerError
		}

		message := apiErr.Message
		if code >= http.StatusInternalServerError || message == "" {
			message = genericFailureMessage
		}

		return &entity.StatusError{Code: code, Message: message}
	}

	return &entity.StatusError{Code: http.StatusInternalServerError, Message: genericFailureMessage}
}
