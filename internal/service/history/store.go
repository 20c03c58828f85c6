package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionRequired is returned when a message carries no session id.
var ErrSessionRequired = errors.New("session id is required")

// Message is one transcript line of a decoy conversation.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"` // "user" or "agent"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps conversation transcripts. Durable persistence lives behind
// this interface; the in-memory store is the default.
type Store interface {
	Append(ctx context.Context, msg Message) error
	Transcript(ctx context.Context, sessionID string) ([]Message, error)
	Drop(ctx context.Context, sessionID string) error
}

// MemoryStore implements Store with a mutex-guarded map. Transcripts survive
// a transport drop so a reconnect with the same session id resumes the
// conversation.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewMemoryStore bootstraps the in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]Message)}
}

// Append records a message, assigning an id and timestamp when missing.
func (s *MemoryStore) Append(_ context.Context, msg Message) error {
	if msg.SessionID == "" {
		return ErrSessionRequired
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	s.mu.Unlock()
	return nil
}

// Transcript returns a copy of the stored messages for the session, oldest
// first. An unknown session yields an empty transcript, not an error.
func (s *MemoryStore) Transcript(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	copied := make([]Message, len(msgs))
	copy(copied, msgs)
	return copied, nil
}

// Drop discards the transcript for a session.
func (s *MemoryStore) Drop(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.messages, sessionID)
	s.mu.Unlock()
	return nil
}
