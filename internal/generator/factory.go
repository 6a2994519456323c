package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"legalchat/internal/config"
)

const (
	openRouterReferer = "https://legalchat.local"
	openRouterTitle   = "Legal Chat Assistant"
)

// New builds the configured provider wrapped in a Resilient decorator.
// The echo provider is returned bare.
func New(ctx context.Context, cfg config.GeneratorConfig, log *zap.Logger) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch cfg.Provider {
	case "echo":
		return Echo{}, nil
	case "gemini":
		g, err = NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "openai", "":
		g, err = NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Headers: map[string]string{
				"HTTP-Referer": openRouterReferer,
				"X-Title":      openRouterTitle,
			},
		})
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewResilient(g,
		WithRateLimit(cfg.RequestsPerSecond),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryLogger(log),
	), nil
}
