package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/lc/plugkit/pkg/document"
)

type DocumentTestSuite struct {
	suite.Suite
	doc *document.Document
}

func (s *DocumentTestSuite) SetupTest() {
	s.doc = document.New()
}

// shape describes the element list compactly: comments as "# text", groups
// as "section=key1,key2".
func shape(d *document.Document) []string {
	var out []string
	for _, el := range d.Elements() {
		switch e := el.(type) {
		case document.Comment:
			out = append(out, "# "+string(e))
		case *document.Mapping:
			out = append(out, e.Section()+"="+strings.Join(e.Keys(), ","))
		}
	}
	return out
}

func (s *DocumentTestSuite) TestSerialize() {
	s.doc.AddComment("Plugin configuration")
	s.Require().NoError(s.doc.Add("Version", "2.0"))
	s.doc.AddComment("Chat settings")
	s.Require().NoError(s.doc.Add("General.Prefix", "&7[Shop]"))
	s.Require().NoError(s.doc.Add("General.Debug", false))

	want := `# Plugin configuration
Version: "2.0"

# Chat settings
General:
  Prefix: '&7[Shop]'
  Debug: false
`
	s.Equal(want, s.doc.String())
	s.Equal([]byte(want), s.doc.Bytes())
}

func (s *DocumentTestSuite) TestGroupingUsesLastElementOnly() {
	s.Require().NoError(s.doc.Add("General.A", 1))
	s.Require().NoError(s.doc.Add("General.B", 2))
	s.Require().NoError(s.doc.Add("Shop.Currency", "coins"))
	s.Require().NoError(s.doc.Add("General.C", 3))
	s.doc.AddComment("more general settings")
	s.Require().NoError(s.doc.Add("General.D", 4))
	s.Require().NoError(s.doc.Add("General.E", 5))

	s.Equal([]string{
		"General=General.A,General.B",
		"Shop=Shop.Currency",
		"General=General.C",
		"# more general settings",
		"General=General.D,General.E",
	}, shape(s.doc))
	s.Equal([]string{"General.A", "General.B", "Shop.Currency", "General.C", "General.D", "General.E"}, s.doc.Keys())
}

func (s *DocumentTestSuite) TestAddExistingKeyUpdatesInPlace() {
	s.Require().NoError(s.doc.Add("General.Prefix", "a"))
	s.Require().NoError(s.doc.Add("Shop.Currency", "coins"))
	s.Require().NoError(s.doc.Add("General.Prefix", "b"))

	s.Equal([]string{"General=General.Prefix", "Shop=Shop.Currency"}, shape(s.doc))
	s.Equal("b", s.doc.GetStringOr("General.Prefix", ""))
	s.Equal(2, s.doc.Len())
}

func (s *DocumentTestSuite) TestAddConflictingKey() {
	s.Require().NoError(s.doc.Add("General.Prefix", "a"))

	err := s.doc.Add("General.Prefix.Color", "red")
	s.ErrorIs(err, document.ErrInvalidKey)

	err = s.doc.Add("General", "flat")
	s.ErrorIs(err, document.ErrInvalidKey)

	s.Equal([]string{"General.Prefix"}, s.doc.Keys())
}

func (s *DocumentTestSuite) TestAddInvalidKeys() {
	testCases := []struct {
		key string
		err error
	}{
		{key: "", err: document.ErrInvalidKey},
		{key: "General/Prefix", err: document.ErrInvalidKey},
		{key: "General:Prefix", err: document.ErrInvalidKey},
		{key: "a..b", err: document.ErrInvalidKey},
		{key: ".a", err: document.ErrInvalidKey},
		{key: "a.", err: document.ErrInvalidKey},
		{key: "a.''", err: document.ErrInvalidKey},
		{key: "it's", err: document.ErrInvalidKeyQuoting},
		{key: "'open.section", err: document.ErrInvalidKeyQuoting},
		{key: "a.'b'c", err: document.ErrInvalidKeyQuoting},
		{key: "a.'b''c'", err: document.ErrInvalidKeyQuoting},
	}

	for _, tc := range testCases {
		s.Run(tc.key, func() {
			doc := document.New()
			err := doc.Add(tc.key, 1)
			s.ErrorIs(err, tc.err)
			s.Empty(doc.Elements(), "a rejected key must not change the document")
		})
	}
}

func (s *DocumentTestSuite) TestValidKeys() {
	for _, key := range []string{
		"Version",
		"General.Prefix",
		"Messages.no-permission",
		"Messages.Join message",
		"snake_case.key_2",
		"Worlds.'world.nether'.Enabled",
		"Préfixe",
	} {
		s.NoError(document.ValidateKey(key), key)
	}
}

func (s *DocumentTestSuite) TestQuotedSpellingsNameOneKey() {
	s.Require().NoError(s.doc.Add("a.'b'", 1))
	s.Require().NoError(s.doc.Add("a.b", 2))

	s.Equal(1, s.doc.Len())
	s.Equal([]string{"a.b"}, s.doc.Keys())
	s.Equal(2, s.doc.GetIntOr("a.'b'", 0))
	s.Equal("a:\n  b: 2\n", s.doc.String())

	s.Require().NoError(s.doc.Add("'General'.Prefix", "x"))
	s.True(s.doc.Has("General.Prefix"))
	s.True(s.doc.Has("'General'.'Prefix'"))

	reparsed, err := document.Parse(s.doc.String())
	s.Require().NoError(err)
	s.Equal(s.doc.Keys(), reparsed.Keys())
	s.Equal(shape(s.doc), shape(reparsed))

	s.True(s.doc.Remove("'a'.b"))
	s.False(s.doc.Has("a.b"))
}

func (s *DocumentTestSuite) TestDottedSectionStaysQuoted() {
	s.Require().NoError(s.doc.Add("Worlds.'world.nether'.Enabled", true))
	s.Require().NoError(s.doc.Add("Worlds.'world.nether'.Enabled", false))

	s.Equal([]string{"Worlds.'world.nether'.Enabled"}, s.doc.Keys())
	s.False(s.doc.GetBoolOr("Worlds.'world.nether'.Enabled", true))
	s.False(s.doc.Has("Worlds.world.nether.Enabled"))
}

func (s *DocumentTestSuite) TestFailedAddLeavesDocumentUnchanged() {
	s.Require().NoError(s.doc.Add("General.Prefix", "x"))
	before := s.doc.String()

	err := s.doc.Add("General.Broken", &yaml.Node{Kind: yaml.AliasNode})
	s.Require().Error(err)

	s.Equal([]string{"General.Prefix"}, s.doc.Keys())
	s.False(s.doc.Has("General.Broken"))
	s.Equal(before, s.doc.String())

	s.doc.AddComment("after")
	s.Equal(before+"\n# after\n", s.doc.String())
	s.True(s.doc.Remove("General.Prefix"))
	s.Equal("# after\n", s.doc.String())
}

func (s *DocumentTestSuite) TestRemove() {
	s.Require().NoError(s.doc.Add("General.A", 1))
	s.Require().NoError(s.doc.Add("General.B", 2))

	s.True(s.doc.Remove("General.A"))
	s.False(s.doc.Remove("General.A"))
	s.Equal([]string{"General=General.B"}, shape(s.doc))
	s.False(s.doc.Has("General.A"))

	s.True(s.doc.Remove("General.B"))
	s.Equal([]string{"General="}, shape(s.doc), "the emptied group stays in place")
	s.Equal("", s.doc.String())

	// the empty group still collects keys of its section
	s.Require().NoError(s.doc.Add("General.C", 3))
	s.Equal([]string{"General=General.C"}, shape(s.doc))
}

func (s *DocumentTestSuite) TestMultiLineComment() {
	s.doc.AddComment("first\nsecond")
	s.Equal([]string{"# first", "# second"}, shape(s.doc))
	s.Equal("# first\n# second\n", s.doc.String())
}

func (s *DocumentTestSuite) TestRoundTrip() {
	s.doc.AddComment("Shop plugin")
	s.doc.AddComment("")
	s.doc.AddComment("  indented note")
	s.Require().NoError(s.doc.Add("Version", "2.0"))
	s.Require().NoError(s.doc.Add("General.Prefix", "&7[Shop]"))
	s.Require().NoError(s.doc.Add("General.Debug", true))
	s.Require().NoError(s.doc.Add("General.Limits.Max", 64))
	s.Require().NoError(s.doc.Add("Shop.Rate", 1.5))
	s.Require().NoError(s.doc.Add("Shop.Worlds", []string{"world", "world_nether"}))
	s.Require().NoError(s.doc.Add("General.Late", "after shop"))
	s.doc.AddComment("Messages")
	s.Require().NoError(s.doc.Add("Messages.Motd", "line one\n# not a comment"))
	s.Require().NoError(s.doc.Add("Messages.'chat.format'", "<%s> %s"))
	s.Require().NoError(s.doc.Add("Messages.Empty", map[string]any{}))
	s.Require().NoError(s.doc.Add("Messages.Nothing", nil))

	reparsed, err := document.Parse(s.doc.String())
	s.Require().NoError(err)

	s.Equal(shape(s.doc), shape(reparsed))
	s.Equal(s.doc.Keys(), reparsed.Keys())
	for _, k := range s.doc.Keys() {
		want, _ := s.doc.Get(k)
		got, ok := reparsed.Get(k)
		s.True(ok, k)
		s.Equal(want, got, k)
	}
	s.True(s.doc.Equal(reparsed))
	s.Equal(s.doc.String(), reparsed.String())
	s.Equal("line one\n# not a comment", reparsed.GetStringOr("Messages.Motd", ""))
}

func (s *DocumentTestSuite) TestClone() {
	s.Require().NoError(s.doc.Add("General.Prefix", "a"))
	c := s.doc.Clone()
	s.True(c.Equal(s.doc))

	s.Require().NoError(c.Add("General.Prefix", "b"))
	c.AddComment("only in clone")

	s.Equal("a", s.doc.GetStringOr("General.Prefix", ""))
	s.Equal("b", c.GetStringOr("General.Prefix", ""))
	s.Len(s.doc.Elements(), 1)
	s.False(c.Equal(s.doc))
}

func TestDocumentSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
