// Package extract turns uploaded files into raw text.
package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// Registry picks an extractor by file extension.
type Registry struct {
	byExt map[string]port.TextExtractor
}

// NewRegistry returns a registry for .pdf, .docx and .txt files.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]port.TextExtractor)}
	r.Register(".pdf", PDF{})
	r.Register(".docx", DOCX{})
	r.Register(".txt", Text{})
	return r
}

func (r *Registry) Register(ext string, e port.TextExtractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract returns the text of path. Unknown extensions fail with
// ErrUnsupportedFormat and parser failures with ErrExtraction.
func (r *Registry) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(path))
	}

	text, err := e.Extract(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filepath.Base(path), err)
	}
	return text, nil
}
