// Package document implements a comment-preserving key/value document for
// plugin configuration files.
//
// A document is an ordered list of elements. Each element is either a
// standalone Comment or a *Mapping: a group of dotted keys that share the same
// top-level section and are written out together as one YAML block.
//
// # Text Format
//
//	# Plugin configuration
//	Version: 2.0
//
//	# Chat settings
//	General:
//	  Prefix: '&7[Shop]'
//	  Debug: false
//
// Parsing yields the elements Comment("Plugin configuration"), a mapping with
// key "Version", Comment("Chat settings") and a mapping with keys
// "General.Prefix" and "General.Debug". Serializing an unmodified document and
// parsing it again yields the same elements and values.
//
// Only the subset of YAML a configuration file needs is supported: block
// mappings, scalars, sequences and full-line comments. Inline comments after a
// scalar value are kept with that value.
//
// # Keys
//
// Keys are dotted paths. A section may contain letters, digits, '_', ' ' and
// '-'. A section that itself contains a dot is wrapped in single quotes, for
// example "Worlds.'world.nether'.Enabled"; the quotes must sit at the very
// start and end of that section.
//
// # Editing
//
//	doc := document.New()
//	doc.AddComment("Chat settings")
//	if err := doc.Add("General.Prefix", "&7[Shop]"); err != nil {
//		return err
//	}
//	doc.Add("General.Debug", false) // joins the General group above
//	fmt.Print(doc.String())
//
// A new key joins the last element only when it is a mapping of the same
// top-level section; a comment in between starts a new group.
//
// # Thread Safety
//
// A Document is not safe for concurrent mutation. Documents served by a
// config.Holder are replaced wholesale and must be treated as read-only.
package document
