package document

import (
	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"
)

// Element is one unit of a document: a Comment or a *Mapping.
type Element interface {
	isElement()
}

// Comment is a standalone comment line, stored without its leading '#'.
type Comment string

func (Comment) isElement() {}

// Mapping is a group of keys sharing one top-level section. The group is
// rendered as a single YAML block so related keys stay together.
type Mapping struct {
	section string
	entries *orderedmap.OrderedMap // key -> *yaml.Node
}

func (*Mapping) isElement() {}

func newMapping(section string) *Mapping {
	return &Mapping{section: section, entries: orderedmap.New()}
}

// Section returns the top-level section every key of the group shares.
func (m *Mapping) Section() string { return m.section }

// Keys returns the group's keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := m.entries.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of keys in the group.
func (m *Mapping) Len() int { return len(m.entries.Keys()) }

func (m *Mapping) node(key string) (*yaml.Node, bool) {
	v, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	n, ok := v.(*yaml.Node)
	return n, ok
}

func (m *Mapping) clone() *Mapping {
	c := newMapping(m.section)
	for _, k := range m.entries.Keys() {
		n, _ := m.node(k)
		c.entries.Set(k, detach(n))
	}
	return c
}
