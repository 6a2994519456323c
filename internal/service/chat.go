package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"legalchat/internal/config"
	"legalchat/internal/generator"
	"legalchat/internal/logging"
	"legalchat/internal/model"
	"legalchat/internal/observability"
	"legalchat/internal/prompt"
	"legalchat/internal/repository"
)

// GreetingReply is the canned answer to a greeting that opens a conversation.
const GreetingReply = "How may I help you?"

var greetings = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"greetings": {},
	"hallo":     {},
	"ola":       {},
}

var tracer = otel.Tracer("legalchat/internal/service")

// ContextAssembler builds the context block for a chat turn.
type ContextAssembler interface {
	Assemble(ctx context.Context, documentID string) (string, error)
}

// SendInput is one user turn.
type SendInput struct {
	Message        string
	ConversationID string
	DocumentID     string
	Language       string
}

// SendResult is the assistant's answer to a turn.
type SendResult struct {
	Message        string
	ConversationID string
	State          model.ConversationState
	// Greeting is true when the answer was the canned greeting reply.
	Greeting bool
}

// ChatService orchestrates a chat turn from user message to stored answer.
type ChatService interface {
	// Send records the user's message and returns the assistant's answer.
	// On generation failure the user message stays recorded and no answer is stored.
	Send(ctx context.Context, in SendInput) (*SendResult, error)

	// History returns the user and assistant messages of a conversation in order.
	History(ctx context.Context, conversationID string) ([]model.Message, error)

	// ClearAll removes every conversation and reports how many messages were dropped.
	ClearAll(ctx context.Context) (int, error)
}

type chatService struct {
	ledger    repository.ConversationLedger
	assembler ContextAssembler
	gen       generator.Generator
	cfg       config.ChatConfig
	log       *zap.Logger
	metrics   *observability.Metrics

	// Conversations hash onto a fixed set of locks.
	locks [conversationLockStripes]sync.Mutex
}

const conversationLockStripes = 64

// NewChatService constructs a new ChatService.
func NewChatService(
	ledger repository.ConversationLedger,
	assembler ContextAssembler,
	gen generator.Generator,
	cfg config.ChatConfig,
	log *zap.Logger,
	metrics *observability.Metrics,
) ChatService {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 60 * time.Second
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 32 * 1024
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &chatService{
		ledger:    ledger,
		assembler: assembler,
		gen:       gen,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}
}

func (s *chatService) Send(ctx context.Context, in SendInput) (res *SendResult, err error) {
	ctx, span := tracer.Start(ctx, "chat.send")
	state := model.StateNewConversation
	defer func() {
		span.SetAttributes(attribute.String("conversation.state", state.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if state == model.StateCompleted || state == model.StateGreeting || state == model.StateFailed {
			s.metrics.ChatFinished(state.String())
		}
	}()

	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(in.Message) > s.cfg.MaxMessageBytes {
		return nil, fmt.Errorf("%w: message exceeds %d bytes", ErrInvalidInput, s.cfg.MaxMessageBytes)
	}

	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = uuid.NewString()
	}
	log := logging.FromContext(ctx, s.log).With(zap.String("conversation_id", convID))

	turn, err := s.admit(ctx, convID, in, msg, log)
	state = turn.state
	if err != nil {
		return nil, err
	}
	if state == model.StateGreeting {
		log.Info("greeting answered without generation")
		return &SendResult{Message: GreetingReply, ConversationID: convID, State: state, Greeting: true}, nil
	}

	payload := prompt.BuildPayload(prompt.PayloadInput{
		Context:  turn.context,
		Language: in.Language,
		History:  turn.history,
		Question: in.Message,
	})

	state = model.StateGenerating
	started := time.Now()
	reply, err := generateWithin(ctx, s.gen, s.cfg.GenerationTimeout, payload)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = generator.ErrEmptyReply
	}
	s.metrics.GenerationObserved(time.Since(started), err == nil)
	if err != nil {
		state = model.StateFailed
		log.Error("generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if _, err := s.ledger.Append(ctx, convID, model.RoleAssistant, reply); err != nil {
		state = model.StateFailed
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	state = model.StateCompleted
	log.Info("chat turn completed", zap.Duration("elapsed", time.Since(started)))
	return &SendResult{Message: reply, ConversationID: convID, State: state}, nil
}

type admittedTurn struct {
	state   model.ConversationState
	history []model.Message
	context string
}

// admit decides the conversation state and records the user message. It holds the
// conversation's lock from the history read to the last append, so two first
// messages on the same id cannot both be treated as opening the conversation.
// Generation runs after the lock is released.
func (s *chatService) admit(ctx context.Context, convID string, in SendInput, msg string, log *zap.Logger) (admittedTurn, error) {
	mu := s.conversationLock(convID)
	mu.Lock()
	defer mu.Unlock()

	turn := admittedTurn{state: model.StateNewConversation}
	history, err := s.ledger.History(ctx, convID)
	if err != nil {
		return turn, fmt.Errorf("load history: %w", err)
	}
	if len(history) > 0 {
		turn.state = model.StateOngoingConversation
	}
	turn.history = history
	log.Debug("chat turn received", zap.String("state", turn.state.String()), zap.Int("history", len(history)))

	if turn.state == model.StateNewConversation && isGreeting(msg) {
		if _, err := s.ledger.Append(ctx, convID, model.RoleUser, in.Message); err != nil {
			return turn, fmt.Errorf("append user message: %w", err)
		}
		if _, err := s.ledger.Append(ctx, convID, model.RoleAssistant, GreetingReply); err != nil {
			return turn, fmt.Errorf("append greeting reply: %w", err)
		}
		turn.state = model.StateGreeting
		return turn, nil
	}

	assembled, err := s.assembler.Assemble(ctx, strings.TrimSpace(in.DocumentID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return turn, fmt.Errorf("%w: %s", ErrDocumentNotFound, in.DocumentID)
		}
		return turn, fmt.Errorf("assemble context: %w", err)
	}
	turn.context = assembled

	if _, err := s.ledger.Append(ctx, convID, model.RoleUser, in.Message); err != nil {
		return turn, fmt.Errorf("append user message: %w", err)
	}
	return turn, nil
}

func (s *chatService) conversationLock(convID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(convID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// isGreeting matches the trimmed, lower-cased message. A Caser is not safe for
// concurrent use, so one is built per call.
func isGreeting(msg string) bool {
	_, ok := greetings[cases.Lower(language.Und).String(strings.TrimSpace(msg))]
	return ok
}

func (s *chatService) History(ctx context.Context, conversationID string) ([]model.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrInvalidInput)
	}
	all, err := s.ledger.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Message, 0, len(all))
	for _, m := range all {
		if m.Role != model.RoleSystem {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

func (s *chatService) ClearAll(ctx context.Context) (int, error) {
	n, err := s.ledger.ClearAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("conversations cleared", zap.Int("messages", n))
	return n, nil
}
