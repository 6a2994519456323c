// Package catalog loads the fixed set of reference legal texts the service
// is seeded with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"legalchat/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrEmpty is returned when a catalog file contains no usable entries.
var ErrEmpty = errors.New("catalog has no reference texts")

type entry struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type file struct {
	References []entry `yaml:"references"`
}

// Default returns the built-in catalog.
func Default() ([]model.ReferenceContext, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path yields the built-in catalog.
func Load(path string) ([]model.ReferenceContext, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog. Entries need a title and content; blanks are rejected.
func Parse(b []byte) ([]model.ReferenceContext, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]model.ReferenceContext, 0, len(f.References))
	for i, e := range f.References {
		title := strings.TrimSpace(e.Title)
		content := strings.TrimSpace(e.Content)
		if title == "" || content == "" {
			return nil, fmt.Errorf("catalog entry %d: title and content are required", i)
		}
		out = append(out, model.ReferenceContext{ID: int64(i + 1), Title: title, Content: content})
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}
