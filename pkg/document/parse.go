package document

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse builds a document from raw text. A line whose first non-blank
// character is '#' is a comment and ends the mapping block in progress; all
// other lines accumulate into a block that is decoded as a YAML mapping and
// replayed key by key through the same rules as Add. Any failure aborts the
// whole parse.
func Parse(text string) (*Document, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	d := New()
	var (
		block []string
		start int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		err := d.addBlock(strings.Join(block, "\n"))
		block = block[:0]
		if err != nil {
			return &ParseError{Line: start, Err: err}
		}
		return nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "#") {
			if len(block) == 0 {
				start = i + 1
			}
			block = append(block, line)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		d.addComment(strings.TrimPrefix(trimmed[1:], " "))
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := d.refresh(); err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}
	return d, nil
}

// MustParse is like Parse but panics on error. Intended for hard-coded
// defaults.
func MustParse(text string) *Document {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Document) addBlock(block string) error {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(block), &root); err != nil {
		return err
	}
	if root.Kind == 0 {
		// only blank lines
		return nil
	}
	body := root.Content[0]
	if body.Kind == yaml.ScalarNode && body.ShortTag() == "!!null" {
		return nil
	}
	if body.Kind != yaml.MappingNode {
		return errors.New("expected a mapping")
	}
	return d.flatten("", body)
}

// flatten replays a mapping node as dotted keys, depth first, in order. Empty
// mappings are kept as values so they survive a round trip.
func (d *Document) flatten(prefix string, m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("unsupported key under %q", prefix)
		}
		if v.Kind == yaml.AliasNode && v.Alias != nil {
			v = v.Alias
		}

		key := quoteSection(k.Value)
		if prefix != "" {
			key = prefix + "." + key
		}

		if v.Kind == yaml.MappingNode && len(v.Content) > 0 {
			if err := d.flatten(key, v); err != nil {
				return err
			}
			continue
		}

		n := detach(v)
		if n.LineComment == "" && n.Kind == yaml.ScalarNode {
			n.LineComment = k.LineComment
		}
		if err := d.add(key, n); err != nil {
			return err
		}
	}
	return nil
}
