package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"legalchat/internal/model"
	"legalchat/internal/repository"
)

// ErrEmptyCatalog is returned when the store would be seeded without reference texts.
var ErrEmptyCatalog = errors.New("reference catalog is empty")

// ContextStore is an in-memory implementation of repository.ContextStore.
// It is safe for concurrent use by multiple goroutines.
type ContextStore struct {
	refs []model.ReferenceContext // immutable after construction

	mu   sync.RWMutex
	docs map[string]model.UploadedDocument
}

var _ repository.ContextStore = (*ContextStore)(nil)

// NewContextStore seeds a store with the given catalog. IDs are assigned 1..N in order.
func NewContextStore(refs []model.ReferenceContext) (*ContextStore, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyCatalog
	}
	seeded := make([]model.ReferenceContext, len(refs))
	for i, r := range refs {
		seeded[i] = model.ReferenceContext{ID: int64(i + 1), Title: r.Title, Content: r.Content}
	}
	return &ContextStore{
		refs: seeded,
		docs: make(map[string]model.UploadedDocument),
	}, nil
}

// AllReferenceContexts returns a copy of the catalog in seed order.
func (s *ContextStore) AllReferenceContexts(_ context.Context) ([]model.ReferenceContext, error) {
	out := make([]model.ReferenceContext, len(s.refs))
	copy(out, s.refs)
	return out, nil
}

func (s *ContextStore) GetReferenceContext(_ context.Context, id int64) (*model.ReferenceContext, error) {
	if id < 1 || id > int64(len(s.refs)) {
		return nil, repository.ErrNotFound
	}
	r := s.refs[id-1]
	return &r, nil
}

func (s *ContextStore) GetUploadedDocument(_ context.Context, id string) (*model.UploadedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

// PutUploadedDocument stores a copy of doc. The caller's value is not retained.
func (s *ContextStore) PutUploadedDocument(_ context.Context, doc *model.UploadedDocument) error {
	if doc == nil || doc.ID == "" {
		return errors.New("document id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return repository.ErrDuplicateID
	}
	s.docs[doc.ID] = *doc
	return nil
}

// ListUploadedDocuments returns a page of documents ordered by creation time, newest first.
func (s *ContextStore) ListUploadedDocuments(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.UploadedDocument], error) {
	s.mu.RLock()
	all := make([]model.UploadedDocument, 0, len(s.docs))
	for _, d := range s.docs {
		all = append(all, d)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}
	return &repository.PageResult[model.UploadedDocument]{
		Items: all[start:end],
		Total: total,
	}, nil
}

// Len reports the number of uploaded documents currently held.
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
