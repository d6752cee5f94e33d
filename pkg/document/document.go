package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is an ordered list of comments and mapping groups. Every mutation
// re-renders the text and rebuilds the key index before returning, so reads
// always reflect the latest edit.
//
// A Document is not safe for concurrent mutation.
type Document struct {
	elements []Element
	index    map[string]*yaml.Node
	text     string
}

// New returns an empty document.
func New() *Document {
	return &Document{index: make(map[string]*yaml.Node)}
}

// Add sets key to value. An existing key is updated in place. A new key joins
// the last element when that element is a mapping group of the same top-level
// section; otherwise it starts a new group at the end of the document. Only
// the last element is considered, so a section split by a comment continues
// in a fresh group.
//
// Sections may be quoted even when they contain no dot; "'General'.Prefix"
// and "General.Prefix" are the same key, stored in the second form.
//
// value may be any Go value yaml.v3 can encode, or a *yaml.Node. A failed Add
// leaves the document unchanged.
func (d *Document) Add(key string, value any) error {
	n, err := toNode(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}

	prev := d.Clone()
	if err := d.add(key, n); err != nil {
		*d = *prev
		return err
	}
	if err := d.refresh(); err != nil {
		*d = *prev
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}
	return nil
}

func (d *Document) add(key string, n *yaml.Node) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	key = canonical(key)

	for _, el := range d.elements {
		if m, ok := el.(*Mapping); ok {
			if _, exists := m.entries.Get(key); exists {
				m.entries.Set(key, n)
				return nil
			}
		}
	}

	section := TopSection(key)
	var group *Mapping
	if len(d.elements) > 0 {
		if m, ok := d.elements[len(d.elements)-1].(*Mapping); ok && m.section == section {
			group = m
		}
	}
	if group == nil {
		group = newMapping(section)
		d.elements = append(d.elements, group)
	}

	p := path(key)
	for _, other := range group.entries.Keys() {
		if overlaps(p, path(other)) {
			return fmt.Errorf("%w: %q conflicts with %q", ErrInvalidKey, key, other)
		}
	}
	group.entries.Set(key, n)
	return nil
}

// Remove deletes key. The mapping group that held it stays in place even when
// it becomes empty. It reports whether the key existed.
func (d *Document) Remove(key string) bool {
	key = lookupKey(key)
	for _, el := range d.elements {
		m, ok := el.(*Mapping)
		if !ok {
			continue
		}
		if _, exists := m.entries.Get(key); exists {
			m.entries.Delete(key)
			d.mustRefresh()
			return true
		}
	}
	return false
}

// AddComment appends a comment. Multi-line text becomes one comment per line.
func (d *Document) AddComment(text string) {
	d.addComment(text)
	d.mustRefresh()
}

func (d *Document) addComment(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		d.elements = append(d.elements, Comment(line))
	}
}

// Elements returns the document's elements in order.
func (d *Document) Elements() []Element {
	out := make([]Element, len(d.elements))
	copy(out, d.elements)
	return out
}

// Keys returns every key in document order.
func (d *Document) Keys() []string {
	var keys []string
	for _, el := range d.elements {
		if m, ok := el.(*Mapping); ok {
			keys = append(keys, m.entries.Keys()...)
		}
	}
	return keys
}

// Len returns the number of keys.
func (d *Document) Len() int { return len(d.index) }

// Has reports whether key is set.
func (d *Document) Has(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// String returns the serialized document.
func (d *Document) String() string { return d.text }

// Bytes returns the serialized document as a byte slice.
func (d *Document) Bytes() []byte { return []byte(d.text) }

// Equal reports whether both documents serialize to the same text, which
// holds exactly when they have the same elements, keys and values in order.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.text == other.text
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{
		elements: make([]Element, len(d.elements)),
		text:     d.text,
	}
	for i, el := range d.elements {
		if m, ok := el.(*Mapping); ok {
			el = m.clone()
		}
		c.elements[i] = el
	}
	c.reindex()
	return c
}

func (d *Document) refresh() error {
	text, err := render(d.elements)
	if err != nil {
		return err
	}
	d.text = text
	d.reindex()
	return nil
}

// mustRefresh re-renders after an edit that adds no value. Every stored value
// rendered when it was added, so a failure means the model is corrupt.
func (d *Document) mustRefresh() {
	if err := d.refresh(); err != nil {
		panic(fmt.Sprintf("document: re-render failed: %v", err))
	}
}

func (d *Document) reindex() {
	d.index = make(map[string]*yaml.Node)
	for _, el := range d.elements {
		m, ok := el.(*Mapping)
		if !ok {
			continue
		}
		for _, k := range m.entries.Keys() {
			if n, ok := m.node(k); ok {
				d.index[k] = n
			}
		}
	}
}
