package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"legalchat/internal/config"
	"legalchat/internal/generator/mocks"
)

func fastBackOff() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }

func TestEcho(t *testing.T) {
	out, err := Echo{}.Generate(context.Background(), "sys", "  What is tenure? ")
	require.NoError(t, err)
	assert.Equal(t, "You asked: What is tenure?", out)

	_, err = Echo{}.Generate(context.Background(), "sys", "   ")
	assert.ErrorIs(t, err, ErrEmptyReply)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Echo{}.Generate(ctx, "sys", "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResilient_RetriesTransientErrors(t *testing.T) {
	m := new(mocks.MockGenerator)
	m.On("Generate", mock.Anything, "sys", "q").Return("", errors.New("502 bad gateway")).Twice()
	m.On("Generate", mock.Anything, "sys", "q").Return("answer", nil).Once()

	r := NewResilient(m, WithMaxRetries(2), WithBackOff(fastBackOff))
	out, err := r.Generate(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	m.AssertNumberOfCalls(t, "Generate", 3)
}

func TestResilient_GivesUpAfterMaxRetries(t *testing.T) {
	m := new(mocks.MockGenerator)
	boom := errors.New("upstream down")
	m.On("Generate", mock.Anything, "sys", "q").Return("", boom)

	r := NewResilient(m, WithMaxRetries(1), WithBackOff(fastBackOff), WithRetryLogger(zap.NewNop()))
	_, err := r.Generate(context.Background(), "sys", "q")
	assert.ErrorIs(t, err, boom)
	m.AssertNumberOfCalls(t, "Generate", 2)
}

func TestResilient_BlankReplyIsNotRetried(t *testing.T) {
	m := new(mocks.MockGenerator)
	m.On("Generate", mock.Anything, "sys", "q").Return(" \n ", nil)

	r := NewResilient(m, WithMaxRetries(3), WithBackOff(fastBackOff))
	_, err := r.Generate(context.Background(), "sys", "q")
	assert.ErrorIs(t, err, ErrEmptyReply)
	m.AssertNumberOfCalls(t, "Generate", 1)
}

func TestResilient_ContextCancelledStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := new(mocks.MockGenerator)
	m.On("Generate", mock.Anything, "sys", "q").
		Run(func(mock.Arguments) { cancel() }).
		Return("", context.Canceled)

	r := NewResilient(m, WithMaxRetries(5), WithBackOff(fastBackOff))
	_, err := r.Generate(ctx, "sys", "q")
	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNumberOfCalls(t, "Generate", 1)
}

func TestResilient_RateLimitHonorsDeadline(t *testing.T) {
	m := new(mocks.MockGenerator)
	m.On("Generate", mock.Anything, "sys", "q").Return("ok", nil)

	// One token per minute: the second call cannot get a token before the deadline.
	r := NewResilient(m, WithRateLimit(1.0/60), WithMaxRetries(0))
	_, err := r.Generate(context.Background(), "sys", "q")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Generate(ctx, "sys", "q")
	assert.Error(t, err)
	m.AssertNumberOfCalls(t, "Generate", 1)
}

func TestOpenAI_Generate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Legal Chat Assistant", r.Header.Get("X-Title"))
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"Under the Land Act..."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/",
		Model:       "m",
		Temperature: 0.7,
		Headers:     map[string]string{"X-Title": "Legal Chat Assistant"},
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "be helpful", "what is tenure?")
	require.NoError(t, err)
	assert.Equal(t, "Under the Land Act...", out)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "be helpful", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "what is tenure?", msgs[1].(map[string]any)["content"])
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAI_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	g, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyReply)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GeneratorConfig
		wantErr bool
		check   func(t *testing.T, g Generator)
	}{
		{
			name: "echo",
			cfg:  config.GeneratorConfig{Provider: "echo"},
			check: func(t *testing.T, g Generator) {
				assert.IsType(t, Echo{}, g)
			},
		},
		{
			name: "openai wrapped",
			cfg:  config.GeneratorConfig{Provider: "openai", APIKey: "k", Model: "m", RequestsPerSecond: 1, MaxRetries: 1},
			check: func(t *testing.T, g Generator) {
				r, ok := g.(*Resilient)
				require.True(t, ok)
				assert.IsType(t, &OpenAI{}, r.next)
				assert.NotNil(t, r.limiter)
				assert.Equal(t, uint(1), r.maxRetries)
			},
		},
		{name: "openai missing key", cfg: config.GeneratorConfig{Provider: "openai", Model: "m"}, wantErr: true},
		{name: "gemini missing key", cfg: config.GeneratorConfig{Provider: "gemini", Model: "m"}, wantErr: true},
		{name: "unknown provider", cfg: config.GeneratorConfig{Provider: "llama"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(context.Background(), tt.cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, g)
		})
	}
}
