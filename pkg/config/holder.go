package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/lc/plugkit/pkg/document"
	"github.com/lc/plugkit/pkg/version"
)

// VersionKey is the top-level key whose value gates migration.
const VersionKey = "Version"

// ErrNoVersion is returned when a document has no usable Version key.
var ErrNoVersion = errors.New("document has no version")

// Holder binds a configuration file path to its default content and to the
// document currently served to readers. Two holders with the same cleaned
// absolute path are the same configuration as far as a Loader is concerned.
type Holder struct {
	path           string
	key            string
	defaultContent string
	defaults       *document.Document

	mu      sync.RWMutex // protects current
	current *document.Document
}

// NewHolder parses defaultContent eagerly so a broken hard-coded default is
// reported at construction. The holder serves the defaults until a Loader
// replaces them.
func NewHolder(path, defaultContent string) (*Holder, error) {
	doc, err := document.Parse(defaultContent)
	if err != nil {
		return nil, fmt.Errorf("default content for %q: %w", path, err)
	}
	return &Holder{
		path:           path,
		key:            normalize(path),
		defaultContent: defaultContent,
		defaults:       doc,
		current:        doc,
	}, nil
}

// MustHolder is like NewHolder but panics on error.
func MustHolder(path, defaultContent string) *Holder {
	h, err := NewHolder(path, defaultContent)
	if err != nil {
		panic(err)
	}
	return h
}

// Path returns the path the holder was created with.
func (h *Holder) Path() string { return h.path }

// Key returns the cleaned absolute path that identifies the holder.
func (h *Holder) Key() string { return h.key }

// DefaultContent returns the raw default text.
func (h *Holder) DefaultContent() string { return h.defaultContent }

// Default returns a copy of the parsed default document.
func (h *Holder) Default() *document.Document { return h.defaults.Clone() }

// Current returns a copy of the live document. Edits to the copy never reach
// the holder or other readers; only the loader replaces the live document.
func (h *Holder) Current() *document.Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Version returns the Version recorded in the live document.
func (h *Holder) Version() (version.Version, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return VersionOf(h.current)
}

// Equal reports whether both holders refer to the same file.
func (h *Holder) Equal(other *Holder) bool {
	return other != nil && h.key == other.key
}

func (h *Holder) String() string { return h.path }

func (h *Holder) replace(doc *document.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = doc
}

// VersionOf reads and parses the Version key of doc.
func VersionOf(doc *document.Document) (version.Version, error) {
	raw, ok := doc.GetString(VersionKey)
	if !ok {
		return version.Version{}, ErrNoVersion
	}
	return version.Parse(raw)
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
