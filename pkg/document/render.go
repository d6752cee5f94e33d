package document

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const _indent = 2

// render serializes elements. Comments become "# text" lines, each non-empty
// mapping group becomes one YAML block followed by a blank line unless it is
// the last element.
func render(elements []Element) (string, error) {
	var b strings.Builder
	for i, el := range elements {
		switch e := el.(type) {
		case Comment:
			b.WriteString("#")
			if e != "" {
				b.WriteString(" ")
				b.WriteString(string(e))
			}
			b.WriteString("\n")
		case *Mapping:
			if e.Len() == 0 {
				continue
			}
			block, err := renderMapping(e)
			if err != nil {
				return "", err
			}
			b.WriteString(block)
			if i < len(elements)-1 {
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// renderMapping nests the group's dotted keys and encodes them as one block.
func renderMapping(m *Mapping) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range m.entries.Keys() {
		value, _ := m.node(key)
		secs := path(key)
		parent := root
		for _, sec := range secs[:len(secs)-1] {
			parent = child(parent, sec)
		}
		parent.Content = append(parent.Content, keyNode(secs[len(secs)-1]), value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(_indent)
	if err := enc.Encode(root); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// child returns the mapping stored under name in parent, creating it if needed.
func child(parent *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == name && parent.Content[i+1].Kind == yaml.MappingNode {
			return parent.Content[i+1]
		}
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	parent.Content = append(parent.Content, keyNode(name), n)
	return n
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

// toNode converts an arbitrary value into a standalone YAML node.
func toNode(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case *yaml.Node:
		if v == nil {
			break
		}
		return detach(v), nil
	case yaml.Node:
		return detach(&v), nil
	}

	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return nil, err
	}
	return detach(&n), nil
}

// detach deep-copies n so it can live in a document on its own: aliases are
// resolved, anchors dropped, and full-line comments removed because the parser
// would read them back as comment elements. Multi-line strings are forced to
// double quotes so none of their lines can be mistaken for a comment.
func detach(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return detach(n.Content[0])
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return detach(n.Alias)
	}

	c := &yaml.Node{
		Kind:        n.Kind,
		Style:       n.Style,
		Tag:         n.Tag,
		Value:       n.Value,
		LineComment: n.LineComment,
	}
	if c.Kind == yaml.ScalarNode && c.ShortTag() == "!!str" && strings.ContainsAny(c.Value, "\r\n") {
		c.Style = yaml.DoubleQuotedStyle
	}
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, sub := range n.Content {
			c.Content[i] = detach(sub)
		}
	}
	return c
}
