// Package prompt merges reference texts, uploaded documents and prior turns
// into the bounded textual payload sent to the generator.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"legalchat/internal/repository"
)

// FallbackContext replaces an empty assembled context in the instructions.
const FallbackContext = "No specific context provided."

const sectionSeparator = "\n\n"

// DocumentPolicy decides what happens when a document id does not resolve.
type DocumentPolicy int

const (
	// IgnoreUnknownDocuments assembles without the document and logs a warning.
	IgnoreUnknownDocuments DocumentPolicy = iota
	// RejectUnknownDocuments fails with repository.ErrNotFound.
	RejectUnknownDocuments
)

// Truncator bounds assembled context. It must return a prefix-preserving result.
type Truncator func(string) string

// TruncateRunes keeps at most n runes and marks the cut.
func TruncateRunes(n int) Truncator {
	const marker = "\n[context truncated]"
	return func(s string) string {
		if n <= 0 || utf8.RuneCountInString(s) <= n {
			return s
		}
		i, count := 0, 0
		for i = range s {
			if count == n {
				break
			}
			count++
		}
		return s[:i] + marker
	}
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithDocumentPolicy sets how unknown document ids are handled.
func WithDocumentPolicy(p DocumentPolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithTruncator installs a length bound applied after concatenation.
func WithTruncator(t Truncator) Option {
	return func(a *Assembler) { a.truncate = t }
}

// WithLogger sets the logger used for ignored documents.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// Assembler reads the context store and never mutates it.
type Assembler struct {
	store    repository.ContextStore
	policy   DocumentPolicy
	truncate Truncator
	log      *zap.Logger
}

// NewAssembler returns an Assembler over store.
func NewAssembler(store repository.ContextStore, opts ...Option) *Assembler {
	a := &Assembler{store: store, log: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assemble concatenates every reference text as "<title>:\n<content>" in catalog
// order, followed by the uploaded document's extracted text when documentID resolves. Sections are
// separated by blank lines. An empty result means there was nothing to include.
func (a *Assembler) Assemble(ctx context.Context, documentID string) (string, error) {
	refs, err := a.store.AllReferenceContexts(ctx)
	if err != nil {
		return "", fmt.Errorf("load reference contexts: %w", err)
	}

	sections := make([]string, 0, len(refs)+1)
	for _, r := range refs {
		sections = append(sections, r.Title+":\n"+r.Content)
	}

	if documentID != "" {
		doc, err := a.store.GetUploadedDocument(ctx, documentID)
		switch {
		case err == nil:
			sections = append(sections, doc.ExtractedText)
		case errors.Is(err, repository.ErrNotFound) && a.policy == IgnoreUnknownDocuments:
			a.log.Warn("ignoring unknown document", zap.String("document_id", documentID))
		default:
			return "", fmt.Errorf("document %s: %w", documentID, err)
		}
	}

	out := strings.Join(sections, sectionSeparator)
	if a.truncate != nil {
		out = a.truncate(out)
	}
	return out, nil
}
