package entity

import (
	"time"
)

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// MessagePart is one text fragment of a conversational turn. The text may be
// empty but the fragment itself must be present.
type MessagePart struct {
	Text string `json:"text"`
}

// Message represents one conversational turn. User turns are timestamped by
// the client, model turns by the server.
type Message struct {
	Role      MessageRole   `json:"role"`
	Parts     []MessagePart `json:"parts"`
	Timestamp time.Time     `json:"timestamp"`
}

// IsValid reports whether the message is usable as model input or for
// persistence. Invalid messages are filtered at the boundary, never repaired.
func (m *Message) IsValid() bool {
	return m != nil && m.Role.Valid() && len(m.Parts) > 0 && !m.Timestamp.IsZero()
}

// Text returns the first fragment's text.
func (m *Message) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	return m.Parts[0].Text
}

// NewTextMessage builds a single-fragment message with the given role.
func NewTextMessage(role MessageRole, text string, ts time.Time) Message {
	return Message{
		Role:      role,
		Parts:     []MessagePart{{Text: text}},
		Timestamp: ts,
	}
}

// ChatSession is a persisted conversation owned by a single user. Saves
// replace the message list wholesale (last-writer-wins).
type ChatSession struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary is the listing view of a session.
type SessionSummary struct {
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
	Preview      string    `json:"preview"`
}

// RagQuery is an ephemeral retrieval request. An empty TargetDocumentNames
// list means "search all of the user's documents".
type RagQuery struct {
	UserID              string
	Query               string
	K                   int
	TargetDocumentNames []string
}

const DefaultRagK = 5
