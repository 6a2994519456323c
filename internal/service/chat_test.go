package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legalchat/internal/catalog"
	"legalchat/internal/config"
	"legalchat/internal/generator"
	genMocks "legalchat/internal/generator/mocks"
	"legalchat/internal/model"
	"legalchat/internal/observability"
	"legalchat/internal/prompt"
	"legalchat/internal/repository/memory"
	repoMocks "legalchat/internal/repository/mocks"
)

type chatFixture struct {
	ledger  *memory.Ledger
	store   *memory.ContextStore
	gen     *genMocks.MockGenerator
	metrics *observability.Metrics
	svc     ChatService
}

func newChatFixture(t *testing.T, cfg config.ChatConfig, opts ...prompt.Option) *chatFixture {
	t.Helper()
	refs, err := catalog.Default()
	require.NoError(t, err)
	store, err := memory.NewContextStore(refs)
	require.NoError(t, err)

	f := &chatFixture{
		ledger:  memory.NewLedger(),
		store:   store,
		gen:     new(genMocks.MockGenerator),
		metrics: newTestMetrics(t),
	}
	f.svc = NewChatService(f.ledger, prompt.NewAssembler(store, opts...), f.gen, cfg, zap.NewNop(), f.metrics)
	return f
}

func (f *chatFixture) history(t *testing.T, id string) []model.Message {
	t.Helper()
	h, err := f.ledger.History(context.Background(), id)
	require.NoError(t, err)
	return h
}

func TestChatService_GreetingShortCircuit(t *testing.T) {
	for _, msg := range []string{"hi", "  Hello ", "HEY", "greetings", "Hallo", "ola"} {
		t.Run(msg, func(t *testing.T) {
			f := newChatFixture(t, config.ChatConfig{})

			res, err := f.svc.Send(context.Background(), SendInput{Message: msg})
			require.NoError(t, err)
			assert.Equal(t, GreetingReply, res.Message)
			assert.True(t, res.Greeting)
			assert.Equal(t, model.StateGreeting, res.State)

			h := f.history(t, res.ConversationID)
			require.Len(t, h, 2)
			assert.Equal(t, model.RoleUser, h[0].Role)
			assert.Equal(t, msg, h[0].Content)
			assert.Equal(t, model.RoleAssistant, h[1].Role)
			assert.Equal(t, GreetingReply, h[1].Content)

			f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ChatRequests.WithLabelValues("GREETING_SHORT_CIRCUIT")))
		})
	}
}

func TestChatService_GreetingInOngoingConversationIsGenerated(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{})
	ctx := context.Background()

	first, err := f.svc.Send(ctx, SendInput{Message: "hi"})
	require.NoError(t, err)

	f.gen.On("Generate", mock.Anything, mock.Anything, "hi").Return("Hello again.", nil).Once()
	res, err := f.svc.Send(ctx, SendInput{Message: "hi", ConversationID: first.ConversationID})
	require.NoError(t, err)
	assert.False(t, res.Greeting)
	assert.Equal(t, "Hello again.", res.Message)
	assert.Len(t, f.history(t, first.ConversationID), 4)
	f.gen.AssertExpectations(t)
}

func TestChatService_NotAGreeting(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{})
	f.gen.On("Generate", mock.Anything, mock.Anything, "hi there").Return("Hello, how can I help?", nil).Once()

	res, err := f.svc.Send(context.Background(), SendInput{Message: "hi there"})
	require.NoError(t, err)
	assert.False(t, res.Greeting)
	f.gen.AssertExpectations(t)
}

func TestChatService_LandActScenario(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{})
	refs, err := catalog.Default()
	require.NoError(t, err)

	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(sys string) bool {
		for _, r := range refs {
			if !strings.Contains(sys, r.Title+":\n") {
				return false
			}
		}
		return strings.Contains(sys, "Respond in English.")
	}), "What is the Land Act?").Return("The Land Act regulates tenure.", nil).Once()

	res, err := f.svc.Send(context.Background(), SendInput{Message: "What is the Land Act?"})
	require.NoError(t, err)

	_, err = uuid.Parse(res.ConversationID)
	assert.NoError(t, err, "conversation id should be minted")
	assert.Equal(t, "The Land Act regulates tenure.", res.Message)
	assert.Equal(t, model.StateCompleted, res.State)

	h := f.history(t, res.ConversationID)
	require.Len(t, h, 2)
	assert.Equal(t, model.RoleUser, h[0].Role)
	assert.Equal(t, model.RoleAssistant, h[1].Role)
	assert.Less(t, h[0].ID, h[1].ID)
	f.gen.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ChatRequests.WithLabelValues("COMPLETED")))
}

func TestChatService_LanguageAndHistoryReachPayload(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{})
	ctx := context.Background()
	_, err := f.ledger.Append(ctx, "c1", model.RoleUser, "Who owns customary land?")
	require.NoError(t, err)
	_, err = f.ledger.Append(ctx, "c1", model.RoleAssistant, "Communities and families.")
	require.NoError(t, err)

	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(sys string) bool {
		return strings.Contains(sys, "Respond in Swahili.") &&
			strings.Contains(sys, "Conversation so far:\nUser: Who owns customary land?\nAssistant: Communities and families.")
	}), "Can it be sold?").Return("Only with consent.", nil).Once()

	res, err := f.svc.Send(ctx, SendInput{Message: "Can it be sold?", ConversationID: "c1", Language: "Swahili"})
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, res.State)
	assert.Len(t, f.history(t, "c1"), 4)
	f.gen.AssertExpectations(t)
}

func TestChatService_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{name: "empty", msg: ""},
		{name: "whitespace", msg: " \n\t "},
		{name: "too long", msg: strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, config.ChatConfig{MaxMessageBytes: 64})
			res, err := f.svc.Send(context.Background(), SendInput{Message: tt.msg, ConversationID: "c1"})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, res)
			assert.Empty(t, f.history(t, "c1"))
			f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChatService_GenerationTimeout(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{GenerationTimeout: 20 * time.Millisecond})
	f.gen.On("Generate", mock.Anything, mock.Anything, "What is the Evidence Act?").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded).Once()

	started := time.Now()
	res, err := f.svc.Send(context.Background(), SendInput{Message: "What is the Evidence Act?", ConversationID: "c1"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 5*time.Second)

	h := f.history(t, "c1")
	require.Len(t, h, 1)
	assert.Equal(t, model.RoleUser, h[0].Role)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ChatRequests.WithLabelValues("FAILED")))
}

func TestChatService_GenerationFailures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		wantErr error
	}{
		{name: "upstream error", err: errors.New("502 from provider"), wantErr: ErrGenerationFailed},
		{name: "blank reply", reply: "  \n ", wantErr: generator.ErrEmptyReply},
		{name: "provider reports empty reply", err: generator.ErrEmptyReply, wantErr: generator.ErrEmptyReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, config.ChatConfig{})
			f.gen.On("Generate", mock.Anything, mock.Anything, "question").Return(tt.reply, tt.err).Once()

			_, err := f.svc.Send(context.Background(), SendInput{Message: "question", ConversationID: "c1"})
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.ErrorIs(t, err, tt.wantErr)

			h := f.history(t, "c1")
			require.Len(t, h, 1, "user message is kept, no assistant message is fabricated")
			assert.Equal(t, "question", h[0].Content)
		})
	}
}

func TestChatService_DocumentContext(t *testing.T) {
	ctx := context.Background()

	t.Run("uploaded text reaches the payload", func(t *testing.T) {
		f := newChatFixture(t, config.ChatConfig{})
		require.NoError(t, f.store.PutUploadedDocument(ctx, &model.UploadedDocument{
			ID: "doc-1", Name: "lease.txt", ExtractedText: "Rent: UGX 500,000", CreatedAt: time.Now(),
		}))
		f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(sys string) bool {
			return strings.Contains(sys, "\n\nRent: UGX 500,000") && !strings.Contains(sys, "lease.txt")
		}), "Is the rent fair?").Return("It is within market range.", nil).Once()

		_, err := f.svc.Send(ctx, SendInput{Message: "Is the rent fair?", DocumentID: "doc-1"})
		require.NoError(t, err)
		f.gen.AssertExpectations(t)
	})

	t.Run("unknown document is ignored by default", func(t *testing.T) {
		f := newChatFixture(t, config.ChatConfig{})
		f.gen.On("Generate", mock.Anything, mock.Anything, "q").Return("a", nil).Once()

		res, err := f.svc.Send(ctx, SendInput{Message: "q", DocumentID: "gone"})
		require.NoError(t, err)
		assert.Equal(t, "a", res.Message)
	})

	t.Run("unknown document is rejected in strict mode", func(t *testing.T) {
		f := newChatFixture(t, config.ChatConfig{}, prompt.WithDocumentPolicy(prompt.RejectUnknownDocuments))

		_, err := f.svc.Send(ctx, SendInput{Message: "q", DocumentID: "gone", ConversationID: "c1"})
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.Empty(t, f.history(t, "c1"))
		f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChatService_LedgerErrors(t *testing.T) {
	mLedger := new(repoMocks.MockConversationLedger)
	mLedger.On("History", mock.Anything, "c1").Return(nil, errors.New("ledger offline")).Once()

	svc := NewChatService(mLedger, prompt.NewAssembler(newMemoryStore(t)), new(genMocks.MockGenerator), config.ChatConfig{}, nil, nil)
	_, err := svc.Send(context.Background(), SendInput{Message: "q", ConversationID: "c1"})
	assert.EqualError(t, err, "load history: ledger offline")
	mLedger.AssertExpectations(t)
}

func TestChatService_ConcurrentSendsKeepOrder(t *testing.T) {
	refs, err := catalog.Default()
	require.NoError(t, err)
	store, err := memory.NewContextStore(refs)
	require.NoError(t, err)
	ledger := memory.NewLedger()
	svc := NewChatService(ledger, prompt.NewAssembler(store), generator.Echo{}, config.ChatConfig{}, nil, nil)

	ctx := context.Background()
	// Seed so every request takes the generation path.
	_, err = ledger.Append(ctx, "shared", model.RoleUser, "seed")
	require.NoError(t, err)

	const n = 20
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.Send(ctx, SendInput{Message: fmt.Sprintf("question %d", i), ConversationID: "shared"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	h, err := ledger.History(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, h, 1+2*n)
	for i := 1; i < len(h); i++ {
		assert.Less(t, h[i-1].ID, h[i].ID)
		assert.False(t, h[i].CreatedAt.Before(h[i-1].CreatedAt))
	}
}

func TestChatService_ConcurrentGreetingsOpenConversationOnce(t *testing.T) {
	refs, err := catalog.Default()
	require.NoError(t, err)
	store, err := memory.NewContextStore(refs)
	require.NoError(t, err)
	ledger := memory.NewLedger()
	svc := NewChatService(ledger, prompt.NewAssembler(store), generator.Echo{}, config.ChatConfig{}, nil, nil)
	ctx := context.Background()

	for trial := 0; trial < 25; trial++ {
		id := fmt.Sprintf("c%d", trial)
		results := make([]*SendResult, 2)
		var g errgroup.Group
		for i := range results {
			g.Go(func() error {
				res, err := svc.Send(ctx, SendInput{Message: "hi", ConversationID: id})
				results[i] = res
				return err
			})
		}
		require.NoError(t, g.Wait())

		greeted := 0
		for _, r := range results {
			if r.Greeting {
				greeted++
			}
		}
		assert.Equal(t, 1, greeted, "conversation %s", id)

		h, err := ledger.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, h, 4)
		assert.Equal(t, GreetingReply, h[1].Content)
		assert.Equal(t, "You asked: hi", h[3].Content)
	}
}

func TestChatService_HistoryAndClearAll(t *testing.T) {
	f := newChatFixture(t, config.ChatConfig{})
	ctx := context.Background()
	_, err := f.ledger.Append(ctx, "c1", model.RoleSystem, "internal note")
	require.NoError(t, err)
	_, err = f.ledger.Append(ctx, "c1", model.RoleUser, "q")
	require.NoError(t, err)
	_, err = f.ledger.Append(ctx, "c2", model.RoleUser, "q2")
	require.NoError(t, err)

	h, err := f.svc.History(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "q", h[0].Content)

	h2, err := f.svc.History(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	empty, err := f.svc.History(ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.svc.History(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	n, err := f.svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, f.history(t, "c1"))
}
