package service

import (
	"context"
	"time"

	"legalchat/internal/generator"
	"legalchat/internal/prompt"
)

type generation struct {
	text string
	err  error
}

// generateWithin runs the generator as a cancellable task bounded by timeout.
// The caller returns at the deadline; a late result is discarded.
func generateWithin(ctx context.Context, g generator.Generator, timeout time.Duration, p prompt.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		text, err := g.Generate(ctx, p.System, p.User)
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
