package speech

import (
	"context"
)

type SpeechUsecase interface {
	Transcribe(ctx context.Context, audioData []byte, filename string) (string, error)
}
