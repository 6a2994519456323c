package repository

import (
	"context"

	"legalchat/internal/model"
)

// ConversationLedger is the append-only, per-conversation message history.
type ConversationLedger interface {
	// Append stores a new message and assigns its id and creation time.
	// Concurrent appends are serialized; prior entries are never rewritten.
	Append(ctx context.Context, conversationID string, role model.Role, content string) (*model.Message, error)

	// History returns the conversation in creation order.
	// An unknown conversation yields an empty slice, not an error.
	History(ctx context.Context, conversationID string) ([]model.Message, error)

	// ClearAll drops every message of every conversation and reports how many were removed.
	ClearAll(ctx context.Context) (int, error)
}
