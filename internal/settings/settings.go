package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/lc/plugkit/pkg/config"
	"github.com/lc/plugkit/pkg/filesys"
)

var (
	// ErrInvalidSettings is returned when the settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrNoSettings is returned when the settings file is not found.
	ErrNoSettings = errors.New("settings file not found")
)

const (
	// DefaultPath is the settings file location relative to the home directory.
	DefaultPath = ".plugkit/settings.yaml"
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
	// DefaultWatchInterval is how often `plugkit watch` reloads.
	DefaultWatchInterval = 30 * time.Second
)

// Settings holds the CLI settings.
type Settings struct {
	Log    LogSettings    `yaml:"log"`
	Loader LoaderSettings `yaml:"loader"`
	Watch  WatchSettings  `yaml:"watch"`
}

// LogSettings holds logging settings.
type LogSettings struct {
	Level string `yaml:"level"`
}

// LoaderSettings holds the options passed to config.NewLoader.
type LoaderSettings struct {
	Concurrency   int    `yaml:"concurrency"`
	ArchivePrefix string `yaml:"archive_prefix"`
}

// WatchSettings holds reloader settings.
type WatchSettings struct {
	Interval time.Duration `yaml:"interval"`
}

// Provider defines the interface for loading settings.
type Provider interface {
	Load() (*Settings, error)
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.FileOps
	path string
}

var _ Provider = (*FSProvider)(nil)

// New creates a provider for ~/.plugkit/settings.yaml on the OS filesystem.
// If the home directory cannot be determined, the path is resolved against
// the current directory.
func New() Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine home directory: %v\n", err)
		home = ""
	}
	return NewWithPath(filesys.OS(), filepath.Join(home, DefaultPath))
}

// NewWithPath creates a provider reading path through fs.
func NewWithPath(fs filesys.FileOps, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Default returns the settings used when no file exists. Fields missing from
// a settings file keep these values.
func Default() *Settings {
	return &Settings{
		Log: LogSettings{
			Level: DefaultLogLevel,
		},
		Loader: LoaderSettings{
			Concurrency:   config.DefaultConcurrency,
			ArchivePrefix: config.DefaultArchivePrefix,
		},
		Watch: WatchSettings{
			Interval: DefaultWatchInterval,
		},
	}
}

// Load reads and validates the settings file. A missing file yields Default.
func (p *FSProvider) Load() (*Settings, error) {
	s, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoSettings) {
			return Default(), nil
		}
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return s, nil
}

// Validate checks that every field holds a usable value.
func (s *Settings) Validate() error {
	if _, err := zapcore.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log level %q is not one of debug, info, warn, error", s.Log.Level)
	}
	if s.Loader.Concurrency < 1 {
		return errors.New("loader concurrency must be at least 1")
	}
	if strings.TrimSpace(s.Loader.ArchivePrefix) == "" {
		return errors.New("archive prefix cannot be empty")
	}
	if strings.ContainsAny(s.Loader.ArchivePrefix, `/\`) {
		return errors.New("archive prefix cannot contain a path separator")
	}
	if s.Watch.Interval < time.Second {
		return errors.New("watch interval must be at least 1 second")
	}
	return nil
}

// LoaderOptions returns the config.Loader options these settings describe.
func (s *Settings) LoaderOptions() []config.Option {
	return []config.Option{
		config.WithConcurrency(s.Loader.Concurrency),
		config.WithArchivePrefix(s.Loader.ArchivePrefix),
	}
}

func (p *FSProvider) loadAndParse() (*Settings, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSettings
		}
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close()

	s := Default()
	if err := yaml.NewDecoder(f).Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding settings file: %w", err)
	}
	return s, nil
}
