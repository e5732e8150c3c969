package validator

import (
	"fmt"
	"strings"

	"github.com/docuchat/chat-backend/internal/entity"
)

// ValidateRagQuery validates RagQueryRequest
func (v *Validator) ValidateRagQuery(req *entity.RagQueryRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	for _, name := range req.TargetOriginalNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: targetOriginalNames must not contain empty entries", entity.ErrInvalidFormat)
		}
	}

	return nil
}

// ValidateChatMessage validates ChatMessageRequest
func (v *Validator) ValidateChatMessage(req *entity.ChatMessageRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	if req.SessionID == "" {
		return fmt.Errorf("%w: sessionId", entity.ErrMissingField)
	}

	// A non-array JSON value is already rejected at decode; only the
	// absent field reaches this point.
	if req.History == nil {
		return fmt.Errorf("%w: history must be an array", entity.ErrInvalidFormat)
	}

	return nil
}

// ValidateSaveHistory validates SaveHistoryRequest. Message-level filtering
// happens later in the usecase; this only rejects structurally bad requests.
func (v *Validator) ValidateSaveHistory(req *entity.SaveHistoryRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: sessionId", entity.ErrMissingField)
	}

	if req.Messages == nil {
		return fmt.Errorf("%w: messages must be an array", entity.ErrInvalidFormat)
	}

	return nil
}
