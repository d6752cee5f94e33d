package document_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lc/plugkit/pkg/document"
)

const _sample = `# Shop plugin configuration
# Do not edit Version.
Version: 2.0

# General settings
General:
  Prefix: '&7[Shop]'
  Debug: false # toggles verbose logging
  Limits:
    MaxItems: 64
    Ratio: 0.75

Worlds:
  world.nether:
    Enabled: true
  Allowed:
    - world
    - world_nether
`

func TestParse(t *testing.T) {
	doc, err := document.Parse(_sample)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# Shop plugin configuration",
		"# Do not edit Version.",
		"Version=Version",
		"# General settings",
		"General=General.Prefix,General.Debug,General.Limits.MaxItems,General.Limits.Ratio",
		"Worlds=Worlds.'world.nether'.Enabled,Worlds.Allowed",
	}, shape(doc))

	v, ok := doc.GetString("Version")
	assert.True(t, ok)
	assert.Equal(t, "2.0", v, "scalars keep their written form")

	assert.Equal(t, "&7[Shop]", doc.GetStringOr("General.Prefix", ""))
	assert.False(t, doc.GetBoolOr("General.Debug", true))
	assert.Equal(t, 64, doc.GetIntOr("General.Limits.MaxItems", 0))
	assert.InDelta(t, 0.75, doc.GetFloatOr("General.Limits.Ratio", 0), 1e-9)
	assert.True(t, doc.GetBoolOr("Worlds.'world.nether'.Enabled", false))
	assert.Equal(t, []string{"world", "world_nether"}, doc.GetStringsOr("Worlds.Allowed", nil))

	assert.Contains(t, doc.String(), "Version: 2.0\n")
	assert.Contains(t, doc.String(), "Debug: false # toggles verbose logging\n")
	assert.Contains(t, doc.String(), "  world.nether:\n    Enabled: true\n")
}

func TestParseIsStable(t *testing.T) {
	first, err := document.Parse(_sample)
	require.NoError(t, err)
	second, err := document.Parse(first.String())
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, shape(first), shape(second))
}

func TestParseEdgeCases(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		shape []string
	}{
		{name: "empty", in: "", shape: nil},
		{name: "blank lines only", in: "\n\n  \n", shape: nil},
		{name: "comments only", in: "#a\n  # b\n#", shape: []string{"# a", "# b", "# "}},
		{name: "crlf", in: "# c\r\nA: 1\r\nB: 2\r\n", shape: []string{"# c", "A=A", "B=B"}},
		{name: "byte order mark", in: "\ufeffA: 1\n", shape: []string{"A=A"}},
		{name: "null document", in: "~\n", shape: nil},
		{
			name:  "indented comment splits a block",
			in:    "General:\n  # the prefix\n  Prefix: x\n",
			shape: []string{"General=General", "# the prefix", "Prefix=Prefix"},
		},
		{
			name:  "duplicate section in one block",
			in:    "A:\n  x: 1\nB: 2\nA:\n  y: 3\n",
			shape: []string{"A=A.x", "B=B", "A=A.y"},
		},
		{
			name:  "anchors are resolved",
			in:    "Base: &b hello\nCopy: *b\n",
			shape: []string{"Base=Base", "Copy=Copy"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := document.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.shape, shape(doc))
		})
	}
}

func TestParseResolvesAliasValues(t *testing.T) {
	doc, err := document.Parse("Base: &b hello\nCopy: *b\n")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.GetStringOr("Copy", ""))
	assert.NotContains(t, doc.String(), "&b")
	assert.NotContains(t, doc.String(), "*b")
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		line  int
		cause error
	}{
		{name: "malformed yaml", in: "# header\nGeneral: [unclosed\n", line: 2},
		{name: "not a mapping", in: "just some text\n", line: 1},
		{name: "sequence at top level", in: "- a\n- b\n", line: 1},
		{name: "invalid key", in: "# x\n\nbad/key: 1\n", line: 2, cause: document.ErrInvalidKey},
		{name: "invalid quoting", in: "it's: 1\n", line: 1, cause: document.ErrInvalidKeyQuoting},
		{name: "leaf and parent in one group", in: "A: 1\nA:\n  b: 2\n", line: 1, cause: document.ErrInvalidKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := document.Parse(tc.in)
			require.Error(t, err)
			assert.Nil(t, doc, "a failed parse must not return a partial document")
			assert.ErrorIs(t, err, document.ErrParse)
			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}

			var perr *document.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.NotPanics(t, func() { document.MustParse("A: 1\n") })
	assert.Panics(t, func() { document.MustParse("A: [\n") })
}

func TestAccessors(t *testing.T) {
	doc := document.MustParse(`Name: Shop
Enabled: yes please
Count: 3
Ratio: 2
Empty:
List:
  - 1
  - two
Nested:
  - a: 1
`)

	_, ok := doc.GetString("Missing")
	assert.False(t, ok)
	assert.Equal(t, "fallback", doc.GetStringOr("Missing", "fallback"))

	_, ok = doc.GetString("Empty")
	assert.False(t, ok, "null is not a string")
	assert.True(t, doc.Has("Empty"))

	_, ok = doc.GetBool("Enabled")
	assert.False(t, ok)
	assert.True(t, doc.GetBoolOr("Enabled", true))

	_, ok = doc.GetInt("Name")
	assert.False(t, ok)
	assert.Equal(t, 3, doc.GetIntOr("Count", 0))

	f, ok := doc.GetFloat("Ratio")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, f, 1e-9)

	assert.Equal(t, []string{"1", "two"}, doc.GetStringsOr("List", nil))
	_, ok = doc.GetStrings("Nested")
	assert.False(t, ok)
	_, ok = doc.GetStrings("Name")
	assert.False(t, ok)

	assert.Equal(t, "x", doc.GetOr("Missing", "x"))
	assert.Equal(t, 3, doc.GetOr("Count", 0))

	var list []any
	require.NoError(t, doc.Decode("List", &list))
	assert.Equal(t, []any{1, "two"}, list)
	assert.Error(t, doc.Decode("Missing", &list))

	n, ok := doc.Node("Name")
	require.True(t, ok)
	assert.Equal(t, "Shop", n.Value)
}
