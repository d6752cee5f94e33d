// Package config binds configuration documents to files on disk.
//
// A Holder owns a file path, the default content shipped with the plugin and
// the document currently served to readers. A Loader reconciles registered
// holders against disk:
//
//   - a missing file is created from the default content;
//   - a file whose Version is rejected by the holder's rule, or that cannot be
//     parsed, is renamed to "outdated <name>" and replaced with the defaults;
//   - any other file is used as-is.
//
// Archiving renames before writing, so an interrupted migration leaves the
// old file, or both files, on disk. A holder whose file cannot be loaded keeps
// serving its previous document.
//
// A Reloader repeats LoadAll on an interval or on demand.
package config
