package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies the author of a Message.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAssistant
	RoleSystem
)

var roleNames = map[Role]string{
	RoleUser:      "user",
	RoleAssistant: "assistant",
	RoleSystem:    "system",
}

// String returns the wire name of the role.
func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole converts a wire name into a Role.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is one immutable entry of a conversation.
type Message struct {
	ID             int64     `json:"id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationState is a step of the chat request lifecycle.
type ConversationState string

const (
	StateNewConversation     ConversationState = "NEW_CONVERSATION"
	StateOngoingConversation ConversationState = "ONGOING_CONVERSATION"
	StateGreeting            ConversationState = "GREETING_SHORT_CIRCUIT"
	StateGenerating          ConversationState = "GENERATING"
	StateCompleted           ConversationState = "COMPLETED"
	StateFailed              ConversationState = "FAILED"
)

func (s ConversationState) String() string { return string(s) }
