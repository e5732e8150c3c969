package validator

// Validator performs request validation at the HTTP boundary. Validation is
// local and immediate; a failing request never reaches a network call.
type Validator struct {
	maxAudioFileSize int64
}

func New(maxAudioFileSize int64) *Validator {
	return &Validator{
		maxAudioFileSize: maxAudioFileSize,
	}
}
