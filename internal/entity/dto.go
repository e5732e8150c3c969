package entity

// RagQueryRequest is the body of POST /chat/rag.
type RagQueryRequest struct {
	Message             string   `json:"message"`
	TargetOriginalNames []string `json:"targetOriginalNames,omitempty"`
}

type RagQueryResponse struct {
	RelevantDocs []RetrievedDocument `json:"relevantDocs"`
}

// ChatMessageRequest is the body of POST /chat/message. RelevantDocs are the
// pre-fetched results of an earlier /chat/rag call; they are consumed only
// when IsRagEnabled is true.
type ChatMessageRequest struct {
	Message      string              `json:"message"`
	History      []Message           `json:"history"`
	SessionID    string              `json:"sessionId"`
	SystemPrompt string              `json:"systemPrompt,omitempty"`
	IsRagEnabled bool                `json:"isRagEnabled,omitempty"`
	RelevantDocs []RetrievedDocument `json:"relevantDocs,omitempty"`
}

type ChatMessageResponse struct {
	Reply Message `json:"reply"`
}

// SaveHistoryRequest is the body of POST /chat/history.
type SaveHistoryRequest struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// SaveHistoryResponse reports the rollover outcome. SavedSessionID is null
// when every submitted message failed validation and persistence was
// skipped; NewSessionID is always a freshly minted identifier for the
// client's next conversation.
type SaveHistoryResponse struct {
	Message        string  `json:"message"`
	SavedSessionID *string `json:"savedSessionId"`
	NewSessionID   string  `json:"newSessionId"`
}

// SaveHistoryResult is the usecase-level outcome of a history save.
type SaveHistoryResult struct {
	SavedSessionID *string
	NewSessionID   string
	DroppedCount   int
}

// TranscribeResponse is the body of a successful POST /speech/transcribe.
type TranscribeResponse struct {
	Transcription string `json:"transcription"`
}
