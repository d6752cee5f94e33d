// Package settings loads the plugkit CLI settings.
//
// Settings live in ~/.plugkit/settings.yaml:
//
//	log:
//	  level: info              # debug, info, warn or error
//	loader:
//	  concurrency: 4           # holders reconciled in parallel
//	  archive_prefix: "outdated "
//	watch:
//	  interval: 30s            # how often `plugkit watch` reloads
//
// A missing file yields Default. Fields absent from the file keep their
// default values. Load validates the result and wraps failures in
// ErrInvalidSettings.
package settings
