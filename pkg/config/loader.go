package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/lc/plugkit/internal/log"
	"github.com/lc/plugkit/pkg/document"
	"github.com/lc/plugkit/pkg/filesys"
	"github.com/lc/plugkit/pkg/version"
)

// ErrIO marks failures to stat, read, write or rename a configuration file.
var ErrIO = errors.New("config i/o")

const (
	// DefaultArchivePrefix is prepended to the file name of archived documents.
	DefaultArchivePrefix = "outdated "
	// DefaultConcurrency bounds how many holders are reconciled at once.
	DefaultConcurrency = 4

	_dirPerm  = 0o755
	_filePerm = 0o644
)

// Loader reconciles registered holders against the files on disk. Register
// and LoadAll may be called from any goroutine.
type Loader struct {
	fs            filesys.FileOps
	concurrency   int
	archivePrefix string

	reg   *registry
	runMu sync.Mutex // serializes runs so a file is never migrated twice

	runs     atomic.Int64
	fresh    atomic.Int64
	loaded   atomic.Int64
	migrated atomic.Int64
	failed   atomic.Int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system. Defaults to filesys.OS().
func WithFS(fsys filesys.FileOps) Option {
	return func(l *Loader) { l.fs = fsys }
}

// WithConcurrency bounds how many holders LoadAll reconciles in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithArchivePrefix sets the prefix used when naming archived files.
// An empty prefix is ignored so an archive can never target the original path.
func WithArchivePrefix(prefix string) Option {
	return func(l *Loader) {
		if prefix != "" {
			l.archivePrefix = prefix
		}
	}
}

// NewLoader creates a Loader with no registered holders.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		fs:            filesys.OS(),
		concurrency:   DefaultConcurrency,
		archivePrefix: DefaultArchivePrefix,
		reg:           newRegistry(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds h to the loader. A nil rule disables the version check for
// h. Registering a holder whose path is already registered replaces the
// earlier holder and rule.
func (l *Loader) Register(h *Holder, rule version.Rule) {
	if l.reg.put(h, rule) {
		log.Debug("config: registration replaced", "path", h.Path())
	}
}

// Unregister removes the holder registered for h's path.
func (l *Loader) Unregister(h *Holder) bool {
	return l.reg.remove(h)
}

// Holders returns the registered holders in registration order.
func (l *Loader) Holders() []*Holder {
	entries := l.reg.snapshot()
	out := make([]*Holder, len(entries))
	for i, e := range entries {
		out[i] = e.holder
	}
	return out
}

// Rule returns the acceptance rule registered for h's path.
func (l *Loader) Rule(h *Holder) (version.Rule, bool) {
	e, ok := l.reg.get(h)
	return e.rule, ok
}

// Len returns the number of registered holders.
func (l *Loader) Len() int { return l.reg.size() }

// Stats is a snapshot of the loader's cumulative counters.
type Stats struct {
	Runs     int64
	Fresh    int64
	Loaded   int64
	Migrated int64
	Failed   int64
}

// Stats returns the cumulative counters since the loader was created.
func (l *Loader) Stats() Stats {
	return Stats{
		Runs:     l.runs.Load(),
		Fresh:    l.fresh.Load(),
		Loaded:   l.loaded.Load(),
		Migrated: l.migrated.Load(),
		Failed:   l.failed.Load(),
	}
}

// LoadAll reconciles every registered holder and returns one outcome per
// holder. A failing holder never stops the others; it keeps serving its
// previous document.
func (l *Loader) LoadAll() *Report {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	entries := l.reg.snapshot()
	report := &Report{
		RunID:    uuid.NewString(),
		Started:  time.Now(),
		Outcomes: make(map[string]Outcome, len(entries)),
	}
	logger := log.With("run_id", report.RunID)
	logger.Debugw("config: load started", "holders", len(entries))

	var (
		mu  sync.Mutex
		grp errgroup.Group
	)
	grp.SetLimit(l.concurrency)
	for _, e := range entries {
		grp.Go(func() error {
			out := l.reconcile(e.holder, e.rule)
			mu.Lock()
			defer mu.Unlock()
			report.Outcomes[e.holder.Key()] = out
			return nil // failures are reported per holder, never cancel peers
		})
	}
	_ = grp.Wait()

	report.Duration = time.Since(report.Started)
	l.runs.Inc()

	for _, o := range report.Sorted() {
		if o.Err != nil {
			logger.Errorw("config: load failed", "path", o.Holder.Path(), "error", o.Err)
			continue
		}
		logger.Infow("config: loaded", "path", o.Holder.Path(), "state", o.State.String(), "archive", o.Archive)
	}
	return report
}

// Load reconciles a single holder using the rule it was registered with, or
// without a version check when it is not registered.
func (l *Loader) Load(h *Holder) Outcome {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	var rule version.Rule
	if e, ok := l.reg.get(h); ok {
		rule = e.rule
	}
	return l.reconcile(h, rule)
}

func (l *Loader) reconcile(h *Holder, rule version.Rule) Outcome {
	out := Outcome{Holder: h}

	state, archive, err := l.prepare(h, rule)
	out.Archive = archive
	if err == nil {
		var doc *document.Document
		doc, err = l.read(h.Path())
		if err == nil {
			h.replace(doc)
			out.State = state
		}
	}

	if err != nil {
		out.State = StateFailed
		out.Err = err
	}
	l.count(out.State)
	return out
}

// prepare brings the file at h's path into a loadable state: it writes
// defaults when the file is missing, and archives then rewrites the file
// when a rule rejects its version.
func (l *Loader) prepare(h *Holder, rule version.Rule) (State, string, error) {
	path := h.Path()

	_, err := l.fs.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := l.writeDefaults(h); err != nil {
			return StateFailed, "", err
		}
		return StateFresh, "", nil
	case err != nil:
		return StateFailed, "", ioErr("stat", path, err)
	case rule == nil:
		return StateLoaded, "", nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return StateFailed, "", ioErr("read", path, err)
	}
	if v, err := versionOf(data); err == nil && rule.Accepts(v) {
		return StateLoaded, "", nil
	} else if err != nil {
		log.Debug("config: no usable version", "path", path, "error", err)
	}

	archive, err := l.archive(path)
	if err != nil {
		return StateFailed, "", err
	}
	if err := l.writeDefaults(h); err != nil {
		return StateFailed, archive, err
	}
	return StateMigrated, archive, nil
}

// archive moves the file at path aside under a name that is not taken yet.
func (l *Loader) archive(path string) (string, error) {
	dir, name := filepath.Split(path)
	target, err := filesys.UniquePath(l.fs, filepath.Join(dir, l.archivePrefix+name))
	if err != nil {
		return "", fmt.Errorf("%w: choosing archive name for %q: %w", ErrIO, path, err)
	}
	if err := l.fs.Rename(path, target); err != nil {
		return "", ioErr("archive", path, err)
	}
	return target, nil
}

func (l *Loader) writeDefaults(h *Holder) error {
	path := h.Path()
	if err := l.fs.MkdirAll(filepath.Dir(path), _dirPerm); err != nil {
		return ioErr("mkdir", filepath.Dir(path), err)
	}
	if err := filesys.AtomicWrite(l.fs, path, []byte(h.DefaultContent()), os.FileMode(_filePerm)); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}

func (l *Loader) read(path string) (*document.Document, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return doc, nil
}

func (l *Loader) count(s State) {
	switch s {
	case StateFresh:
		l.fresh.Inc()
	case StateLoaded:
		l.loaded.Inc()
	case StateMigrated:
		l.migrated.Inc()
	default:
		l.failed.Inc()
	}
}

func versionOf(data []byte) (version.Version, error) {
	doc, err := document.Parse(string(data))
	if err != nil {
		return version.Version{}, err
	}
	return VersionOf(doc)
}

func ioErr(op, path string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrIO, op, path, err)
}
