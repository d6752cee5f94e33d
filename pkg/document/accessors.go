package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Get returns the decoded value of key.
func (d *Document) Get(key string) (any, bool) {
	n, ok := d.lookup(key)
	if !ok {
		return nil, false
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// GetOr returns the decoded value of key, or def when key is absent.
func (d *Document) GetOr(key string, def any) any {
	if v, ok := d.Get(key); ok {
		return v
	}
	return def
}

// Node returns a copy of the YAML node stored under key.
func (d *Document) Node(key string) (*yaml.Node, bool) {
	n, ok := d.lookup(key)
	if !ok {
		return nil, false
	}
	return detach(n), true
}

// Decode decodes the value of key into target.
func (d *Document) Decode(key string, target any) error {
	n, ok := d.lookup(key)
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}
	return n.Decode(target)
}

// GetString returns a scalar value as written in the document, so "2.0"
// stays "2.0" rather than becoming a float. Null and non-scalar values are
// reported as absent.
func (d *Document) GetString(key string) (string, bool) {
	n, ok := d.lookup(key)
	if !ok || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return "", false
	}
	return n.Value, true
}

// GetStringOr returns GetString(key) or def.
func (d *Document) GetStringOr(key, def string) string {
	if s, ok := d.GetString(key); ok {
		return s
	}
	return def
}

// GetBool returns the boolean value of key.
func (d *Document) GetBool(key string) (bool, bool) {
	var b bool
	if !d.decodeScalar(key, &b) {
		return false, false
	}
	return b, true
}

// GetBoolOr returns GetBool(key) or def.
func (d *Document) GetBoolOr(key string, def bool) bool {
	if b, ok := d.GetBool(key); ok {
		return b
	}
	return def
}

// GetInt returns the integer value of key.
func (d *Document) GetInt(key string) (int, bool) {
	var i int
	if !d.decodeScalar(key, &i) {
		return 0, false
	}
	return i, true
}

// GetIntOr returns GetInt(key) or def.
func (d *Document) GetIntOr(key string, def int) int {
	if i, ok := d.GetInt(key); ok {
		return i
	}
	return def
}

// GetFloat returns the floating point value of key. Integers are widened.
func (d *Document) GetFloat(key string) (float64, bool) {
	var f float64
	if !d.decodeScalar(key, &f) {
		return 0, false
	}
	return f, true
}

// GetFloatOr returns GetFloat(key) or def.
func (d *Document) GetFloatOr(key string, def float64) float64 {
	if f, ok := d.GetFloat(key); ok {
		return f
	}
	return def
}

// GetStrings returns a sequence of scalars as strings.
func (d *Document) GetStrings(key string) ([]string, bool) {
	n, ok := d.lookup(key)
	if !ok || n.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, false
		}
		out = append(out, item.Value)
	}
	return out, true
}

// GetStringsOr returns GetStrings(key) or def.
func (d *Document) GetStringsOr(key string, def []string) []string {
	if s, ok := d.GetStrings(key); ok {
		return s
	}
	return def
}

func (d *Document) lookup(key string) (*yaml.Node, bool) {
	n, ok := d.index[lookupKey(key)]
	return n, ok
}

func (d *Document) decodeScalar(key string, target any) bool {
	n, ok := d.lookup(key)
	if !ok || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return false
	}
	return n.Decode(target) == nil
}
