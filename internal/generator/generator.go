// Package generator adapts external text-generation providers to the single
// call contract used by the chat service.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyReply is returned when a provider answers with blank content.
var ErrEmptyReply = errors.New("generator returned an empty reply")

// Generator produces an answer for userMessage under systemInstructions.
// Implementations must honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, systemInstructions, userMessage string) (string, error)
}

// Echo is an offline Generator for local development. It never calls out.
type Echo struct{}

func (Echo) Generate(ctx context.Context, _ string, userMessage string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(userMessage)
	if msg == "" {
		return "", ErrEmptyReply
	}
	return fmt.Sprintf("You asked: %s", msg), nil
}
