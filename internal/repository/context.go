package repository

import (
	"context"

	"legalchat/internal/model"
)

// ContextStore holds the seeded reference catalog and uploaded documents.
// Readers always receive copies; all writes go through PutUploadedDocument.
type ContextStore interface {
	// AllReferenceContexts returns the catalog in seed order. It is never empty.
	AllReferenceContexts(ctx context.Context) ([]model.ReferenceContext, error)

	// GetReferenceContext returns a catalog entry or ErrNotFound.
	GetReferenceContext(ctx context.Context, id int64) (*model.ReferenceContext, error)

	// GetUploadedDocument returns an uploaded document or ErrNotFound.
	GetUploadedDocument(ctx context.Context, id string) (*model.UploadedDocument, error)

	// PutUploadedDocument stores doc under doc.ID. It returns ErrDuplicateID if the id is taken.
	PutUploadedDocument(ctx context.Context, doc *model.UploadedDocument) error

	// ListUploadedDocuments returns uploaded documents, newest first.
	ListUploadedDocuments(ctx context.Context, pq PageQuery) (*PageResult[model.UploadedDocument], error)
}
