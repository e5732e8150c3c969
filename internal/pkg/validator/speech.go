package validator

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/docuchat/chat-backend/internal/entity"
)

// ValidateAudioFile validates audio uploads for transcription.
func (v *Validator) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("%w: audio file", entity.ErrMissingField)
	}

	if file.Size > v.maxAudioFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrInvalidFormat, file.Filename, file.Size, v.maxAudioFileSize)
	}

	// The transcription provider is flexible about formats; only require an
	// audio content type when one is declared at all.
	contentType := file.Header.Get("Content-Type")
	if contentType != "" &&
		!strings.HasPrefix(contentType, "audio/") &&
		contentType != "application/octet-stream" {
		return fmt.Errorf("%w: content type '%s' (expected audio/*)", entity.ErrInvalidFormat, contentType)
	}

	return nil
}
