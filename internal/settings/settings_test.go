package settings_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lc/plugkit/internal/settings"
	"github.com/lc/plugkit/pkg/config"
	"github.com/lc/plugkit/pkg/filesys"
)

type SettingsTestSuite struct {
	suite.Suite
	fs       mockFS
	provider settings.Provider
}

// mockFS serves files from memory. Methods the provider does not use are
// left to the embedded nil interface.
type mockFS struct {
	filesys.FileOps
	files map[string]string
	t     *testing.T
}

func (m mockFS) Open(path string) (*os.File, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	tmp, err := os.CreateTemp(m.t.TempDir(), "mock-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}

func (s *SettingsTestSuite) SetupTest() {
	s.fs = mockFS{
		files: make(map[string]string),
		t:     s.T(),
	}
	s.provider = settings.NewWithPath(s.fs, "test/settings.yaml")
}

func (s *SettingsTestSuite) TestLoadDefaultWhenNoFile() {
	st, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(settings.DefaultLogLevel, st.Log.Level)
	s.Equal(config.DefaultConcurrency, st.Loader.Concurrency)
	s.Equal(config.DefaultArchivePrefix, st.Loader.ArchivePrefix)
	s.Equal(settings.DefaultWatchInterval, st.Watch.Interval)
}

func (s *SettingsTestSuite) TestLoadValidSettings() {
	s.fs.files["test/settings.yaml"] = `
log:
  level: debug
loader:
  concurrency: 8
  archive_prefix: "old "
watch:
  interval: 2m
`
	st, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal("debug", st.Log.Level)
	s.Equal(8, st.Loader.Concurrency)
	s.Equal("old ", st.Loader.ArchivePrefix)
	s.Equal(2*time.Minute, st.Watch.Interval)
	s.Len(st.LoaderOptions(), 2)
}

func (s *SettingsTestSuite) TestPartialFileKeepsDefaults() {
	s.fs.files["test/settings.yaml"] = "watch:\n  interval: 5s\n"

	st, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(5*time.Second, st.Watch.Interval)
	s.Equal(settings.DefaultLogLevel, st.Log.Level)
	s.Equal(config.DefaultArchivePrefix, st.Loader.ArchivePrefix)
}

func (s *SettingsTestSuite) TestEmptyFile() {
	s.fs.files["test/settings.yaml"] = ""

	st, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(settings.Default(), st)
}

func (s *SettingsTestSuite) TestValidation() {
	valid := func(mutate func(*settings.Settings)) settings.Settings {
		st := settings.Default()
		mutate(st)
		return *st
	}

	testCases := []struct {
		name        string
		settings    settings.Settings
		expectedErr string
	}{
		{
			name:     "defaults",
			settings: valid(func(*settings.Settings) {}),
		},
		{
			name:        "unknown log level",
			settings:    valid(func(st *settings.Settings) { st.Log.Level = "loud" }),
			expectedErr: "log level",
		},
		{
			name:     "upper case log level",
			settings: valid(func(st *settings.Settings) { st.Log.Level = "WARN" }),
		},
		{
			name:        "zero concurrency",
			settings:    valid(func(st *settings.Settings) { st.Loader.Concurrency = 0 }),
			expectedErr: "concurrency must be at least 1",
		},
		{
			name:        "blank archive prefix",
			settings:    valid(func(st *settings.Settings) { st.Loader.ArchivePrefix = "  " }),
			expectedErr: "archive prefix cannot be empty",
		},
		{
			name:        "archive prefix with separator",
			settings:    valid(func(st *settings.Settings) { st.Loader.ArchivePrefix = "old/" }),
			expectedErr: "path separator",
		},
		{
			name:        "watch interval too short",
			settings:    valid(func(st *settings.Settings) { st.Watch.Interval = 500 * time.Millisecond }),
			expectedErr: "watch interval must be at least 1 second",
		},
		{
			name:     "watch interval exactly 1 second",
			settings: valid(func(st *settings.Settings) { st.Watch.Interval = time.Second }),
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.settings.Validate()
			if tc.expectedErr == "" {
				s.NoError(err)
			} else {
				s.Error(err)
				s.Contains(err.Error(), tc.expectedErr)
			}
		})
	}
}

func (s *SettingsTestSuite) TestLoadInvalidSettings() {
	s.fs.files["test/settings.yaml"] = "loader:\n  concurrency: -1\n"

	_, err := s.provider.Load()

	s.ErrorIs(err, settings.ErrInvalidSettings)
}

func (s *SettingsTestSuite) TestLoadInvalidYAML() {
	s.fs.files["test/settings.yaml"] = `
log:
  level: [invalid: yaml]
`
	_, err := s.provider.Load()

	s.Error(err)
	s.Contains(err.Error(), "decoding settings file")
}

func TestSettingsSuite(t *testing.T) {
	suite.Run(t, new(SettingsTestSuite))
}
