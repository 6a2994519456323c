package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"legalchat/internal/model"
	"legalchat/internal/repository"
)

type MockContextStore struct {
	mock.Mock
}

func (m *MockContextStore) AllReferenceContexts(ctx context.Context) ([]model.ReferenceContext, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReferenceContext), args.Error(1)
}

func (m *MockContextStore) GetReferenceContext(ctx context.Context, id int64) (*model.ReferenceContext, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferenceContext), args.Error(1)
}

func (m *MockContextStore) GetUploadedDocument(ctx context.Context, id string) (*model.UploadedDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadedDocument), args.Error(1)
}

func (m *MockContextStore) PutUploadedDocument(ctx context.Context, doc *model.UploadedDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockContextStore) ListUploadedDocuments(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.UploadedDocument], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.UploadedDocument]), args.Error(1)
}
