package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, systemInstructions, userMessage string) (string, error) {
	args := m.Called(ctx, systemInstructions, userMessage)
	return args.String(0), args.Error(1)
}
