package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legalchat/internal/model"
)

type MockConversationLedger struct {
	mock.Mock
}

func (m *MockConversationLedger) Append(ctx context.Context, conversationID string, role model.Role, content string) (*model.Message, error) {
	args := m.Called(ctx, conversationID, role, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockConversationLedger) History(ctx context.Context, conversationID string) ([]model.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockConversationLedger) ClearAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
