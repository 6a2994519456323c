package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"legalchat/internal/model"
	"legalchat/internal/repository"
)

// Ledger is an in-memory repository.ConversationLedger.
//
// A single writer lock serializes appends, so message ids are assigned in the
// same order entries become visible. Timestamps are clamped to be non-decreasing
// so that ordering by CreatedAt and by ID always agree.
type Ledger struct {
	mu     sync.RWMutex
	nextID int64
	last   time.Time
	convs  map[string][]model.Message
	now    func() time.Time
}

var _ repository.ConversationLedger = (*Ledger)(nil)

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		convs: make(map[string][]model.Message),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (l *Ledger) Append(_ context.Context, conversationID string, role model.Role, content string) (*model.Message, error) {
	if conversationID == "" {
		return nil, errors.New("conversation id is required")
	}
	if !role.Valid() {
		return nil, errors.New("invalid role")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	if ts.Before(l.last) {
		ts = l.last
	}
	l.last = ts
	l.nextID++

	msg := model.Message{
		ID:             l.nextID,
		Role:           role,
		Content:        content,
		ConversationID: conversationID,
		CreatedAt:      ts,
	}
	l.convs[conversationID] = append(l.convs[conversationID], msg)
	return &msg, nil
}

func (l *Ledger) History(_ context.Context, conversationID string) ([]model.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	msgs := l.convs[conversationID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (l *Ledger) ClearAll(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, msgs := range l.convs {
		n += len(msgs)
	}
	l.convs = make(map[string][]model.Message)
	return n, nil
}
