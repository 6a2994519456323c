// Package extract turns uploaded file bytes into plain text.
package extract

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
)

const (
	MIMEPlainText = "text/plain"
	MIMEMarkdown  = "text/markdown"
	MIMEPDF       = "application/pdf"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned by the Registry for MIME types without an extractor.
var ErrUnsupported = errors.New("unsupported mime type")

// Extractor converts raw file content into text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(data []byte) (string, error)

func (f ExtractorFunc) Extract(data []byte) (string, error) { return f(data) }

// Registry maps normalized MIME types to extractors.
type Registry struct {
	byType map[string]Extractor
}

// NewRegistry returns a registry with no extractors.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Extractor)}
}

// DefaultRegistry supports plain text, markdown, PDF and DOCX.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(MIMEPlainText, ExtractorFunc(Text))
	r.Register(MIMEMarkdown, ExtractorFunc(Text))
	r.Register(MIMEPDF, ExtractorFunc(PDF))
	r.Register(MIMEDOCX, ExtractorFunc(DOCX))
	return r
}

// Register binds an extractor to a MIME type, replacing any previous binding.
func (r *Registry) Register(mimeType string, e Extractor) {
	r.byType[Normalize(mimeType)] = e
}

// Supports reports whether mimeType has an extractor.
func (r *Registry) Supports(mimeType string) bool {
	_, ok := r.byType[Normalize(mimeType)]
	return ok
}

// Types lists the supported MIME types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Extract runs the extractor registered for mimeType.
func (r *Registry) Extract(mimeType string, data []byte) (string, error) {
	e, ok := r.byType[Normalize(mimeType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
	return e.Extract(data)
}

// Normalize lower-cases a media type and strips its parameters.
func Normalize(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}
