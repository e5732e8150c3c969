package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docuchat/chat-backend/internal/entity"
	"go.uber.org/zap"
)

type sessionKey struct {
	userID    string
	sessionID string
}

type fakeSessionRepo struct {
	sessions    map[sessionKey]*entity.ChatSession
	upsertCalls int
	failWith    error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[sessionKey]*entity.ChatSession)}
}

func (f *fakeSessionRepo) Upsert(_ context.Context, userID, sessionID string, messages []entity.Message) (*entity.ChatSession, error) {
	f.upsertCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}

	key := sessionKey{userID, sessionID}
	now := time.Now().UTC()
	existing, ok := f.sessions[key]
	if !ok {
		existing = &entity.ChatSession{
			SessionID: sessionID,
			UserID:    userID,
			CreatedAt: now,
		}
		f.sessions[key] = existing
	}
	existing.Messages = append([]entity.Message(nil), messages...)
	existing.UpdatedAt = now
	return existing, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, userID, sessionID string) (*entity.ChatSession, error) {
	session, ok := f.sessions[sessionKey{userID, sessionID}]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for key, s := range f.sessions {
		if key.userID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRetrieval struct {
	docs []entity.RetrievedDocument
	err  error
}

func (f *fakeRetrieval) Query(context.Context, entity.RagQuery) ([]entity.RetrievedDocument, error) {
	return f.docs, f.err
}

type fakeGeneration struct {
	reply           *entity.Message
	err             error
	gotHistory      []entity.Message
	gotInstruction  string
	generationCalls int
}

func (f *fakeGeneration) Generate(_ context.Context, history []entity.Message, systemInstruction string) (*entity.Message, error) {
	f.generationCalls++
	f.gotHistory = history
	f.gotInstruction = systemInstruction
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestUsecase(repo *fakeSessionRepo, retr *fakeRetrieval, gen *fakeGeneration) *Usecase {
	return NewUsecase(repo, retr, gen, zap.NewNop())
}

func validMessage(role entity.MessageRole, text string) entity.Message {
	return entity.NewTextMessage(role, text, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
}

func TestQueryDocumentsDegradesToEmpty(t *testing.T) {
	retr := &fakeRetrieval{err: &entity.RetrievalError{Err: errors.New("connection refused")}}
	uc := newTestUsecase(newFakeSessionRepo(), retr, &fakeGeneration{})

	docs, err := uc.QueryDocuments(context.Background(), "u1", &entity.RagQueryRequest{Message: "q"})
	if err != nil {
		t.Fatalf("retrieval failure must not surface as an error, got %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("degraded retrieval must return an empty (non-nil) slice, got %#v", docs)
	}
}

func TestQueryDocumentsConfigurationErrorPropagates(t *testing.T) {
	retr := &fakeRetrieval{err: entity.ErrRetrievalNotConfigured}
	uc := newTestUsecase(newFakeSessionRepo(), retr, &fakeGeneration{})

	_, err := uc.QueryDocuments(context.Background(), "u1", &entity.RagQueryRequest{Message: "q"})
	if !errors.Is(err, entity.ErrRetrievalNotConfigured) {
		t.Errorf("configuration error must propagate, got %v", err)
	}
}

func TestSendMessageRagOffIgnoresSuppliedDocs(t *testing.T) {
	reply := validMessage(entity.RoleModel, "answer")
	gen := &fakeGeneration{reply: &reply}
	uc := newTestUsecase(newFakeSessionRepo(), &fakeRetrieval{}, gen)

	_, err := uc.SendMessage(context.Background(), "u1", &entity.ChatMessageRequest{
		Message:      "question",
		SessionID:    "s1",
		IsRagEnabled: false,
		RelevantDocs: []entity.RetrievedDocument{
			{DocumentName: "doc", Content: "must not appear"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if gen.gotInstruction != "" {
		t.Errorf("with RAG disabled the system instruction must stay empty, got %q", gen.gotInstruction)
	}
	for _, m := range gen.gotHistory {
		if strings.Contains(m.Text(), "must not appear") {
			t.Error("supplied docs leaked into history despite RAG being disabled")
		}
	}
}

func TestSendMessageRagOnInjectsContext(t *testing.T) {
	reply := validMessage(entity.RoleModel, "answer")
	gen := &fakeGeneration{reply: &reply}
	uc := newTestUsecase(newFakeSessionRepo(), &fakeRetrieval{}, gen)

	_, err := uc.SendMessage(context.Background(), "u1", &entity.ChatMessageRequest{
		Message:      "question",
		SessionID:    "s1",
		IsRagEnabled: true,
		RelevantDocs: []entity.RetrievedDocument{
			{DocumentName: "doc.pdf", Content: "relevant excerpt"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gen.gotInstruction, "relevant excerpt") {
		t.Error("retrieved content missing from the system instruction")
	}
	last := gen.gotHistory[len(gen.gotHistory)-1]
	if last.Text() != "question" {
		t.Errorf("user turn must stay plain, got %q", last.Text())
	}
}

func TestSendMessageGenerationFailurePropagates(t *testing.T) {
	gen := &fakeGeneration{err: &entity.StatusError{Code: 429, Message: "rate limited"}}
	uc := newTestUsecase(newFakeSessionRepo(), &fakeRetrieval{}, gen)

	_, err := uc.SendMessage(context.Background(), "u1", &entity.ChatMessageRequest{
		Message:   "question",
		SessionID: "s1",
	})

	var statusErr *entity.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 429 {
		t.Errorf("generation failure must propagate with its status, got %v", err)
	}
}

func TestSaveHistoryRoundTripFiltersInvalid(t *testing.T) {
	repo := newFakeSessionRepo()
	uc := newTestUsecase(repo, &fakeRetrieval{}, &fakeGeneration{})

	messages := []entity.Message{
		validMessage(entity.RoleUser, "first"),
		{Role: entity.RoleUser}, // no parts, no timestamp
		validMessage(entity.RoleModel, "second"),
		{Role: "assistant", Parts: []entity.MessagePart{{Text: "bad role"}}, Timestamp: time.Now()},
	}

	result, err := uc.SaveHistory(context.Background(), "u1", "s1", messages)
	if err != nil {
		t.Fatal(err)
	}

	if result.SavedSessionID == nil || *result.SavedSessionID != "s1" {
		t.Fatalf("savedSessionId = %v, want s1", result.SavedSessionID)
	}
	if result.DroppedCount != 2 {
		t.Errorf("dropped count = %d, want 2", result.DroppedCount)
	}

	saved, err := uc.GetSession(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Messages) != 2 {
		t.Fatalf("saved message count = %d, want 2", len(saved.Messages))
	}
	if saved.Messages[0].Text() != "first" || saved.Messages[1].Text() != "second" {
		t.Error("valid messages must be preserved in original order")
	}
}

func TestSaveHistoryRolloverIDsAreFresh(t *testing.T) {
	repo := newFakeSessionRepo()
	uc := newTestUsecase(repo, &fakeRetrieval{}, &fakeGeneration{})

	messages := []entity.Message{validMessage(entity.RoleUser, "hello")}

	seen := map[string]bool{"s1": true}
	for i := 0; i < 2; i++ {
		result, err := uc.SaveHistory(context.Background(), "u1", "s1", messages)
		if err != nil {
			t.Fatal(err)
		}
		if result.NewSessionID == "" {
			t.Fatal("newSessionId must always be minted")
		}
		if seen[result.NewSessionID] {
			t.Errorf("newSessionId %q repeats a previously issued id", result.NewSessionID)
		}
		seen[result.NewSessionID] = true
	}
}

func TestSaveHistorySkipsPersistenceWhenNothingValid(t *testing.T) {
	repo := newFakeSessionRepo()
	uc := newTestUsecase(repo, &fakeRetrieval{}, &fakeGeneration{})

	result, err := uc.SaveHistory(context.Background(), "u1", "s1", []entity.Message{
		{Role: entity.RoleUser}, // invalid
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.SavedSessionID != nil {
		t.Errorf("savedSessionId must be nil when nothing was persisted, got %v", *result.SavedSessionID)
	}
	if result.NewSessionID == "" {
		t.Error("a fresh newSessionId must still be issued")
	}
	if repo.upsertCalls != 0 {
		t.Errorf("persistence must be skipped, upsert called %d times", repo.upsertCalls)
	}
}

func TestGetSessionOwnershipIsolation(t *testing.T) {
	repo := newFakeSessionRepo()
	uc := newTestUsecase(repo, &fakeRetrieval{}, &fakeGeneration{})

	if _, err := uc.SaveHistory(context.Background(), "owner", "s1", []entity.Message{validMessage(entity.RoleUser, "private")}); err != nil {
		t.Fatal(err)
	}

	_, err := uc.GetSession(context.Background(), "intruder", "s1")
	if !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("cross-user fetch must be indistinguishable from not-found, got %v", err)
	}
}

func TestSessionPreview(t *testing.T) {
	long := strings.Repeat("a", 80)

	tests := []struct {
		name     string
		messages []entity.Message
		want     string
	}{
		{"no messages", nil, "Chat Session"},
		{"no user turns", []entity.Message{validMessage(entity.RoleModel, "hi")}, "Continuation..."},
		{"short user turn", []entity.Message{validMessage(entity.RoleUser, "short question")}, "short question"},
		{"long user turn truncated", []entity.Message{validMessage(entity.RoleUser, long)}, strings.Repeat("a", 75) + "..."},
		{
			"first user turn wins",
			[]entity.Message{
				validMessage(entity.RoleModel, "greeting"),
				validMessage(entity.RoleUser, "the question"),
				validMessage(entity.RoleUser, "followup"),
			},
			"the question",
		},
		{
			"empty first user turn does not yield to later ones",
			[]entity.Message{
				validMessage(entity.RoleUser, ""),
				validMessage(entity.RoleUser, "later question"),
			},
			"Continuation...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionPreview(tt.messages); got != tt.want {
				t.Errorf("sessionPreview = %q, want %q", got, tt.want)
			}
		})
	}
}
