// Package mocks holds testify mocks for plugkit interfaces.
package mocks

import (
	"io/fs"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/lc/plugkit/pkg/filesys"
)

var _ filesys.FileOps = (*MockFS)(nil)

// MockFS is a filesys.FileOps whose calls are scripted with On(...). Methods
// returning a value accept nil for it in Return.
type MockFS struct {
	mock.Mock
}

func (m *MockFS) Stat(p string) (fs.FileInfo, error) {
	args := m.Called(p)
	info, _ := args.Get(0).(fs.FileInfo)
	return info, args.Error(1)
}

func (m *MockFS) Open(p string) (*os.File, error) {
	return fileResult(m.Called(p))
}

func (m *MockFS) ReadFile(p string) ([]byte, error) {
	args := m.Called(p)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFS) WriteFile(p string, b []byte, mode os.FileMode) error {
	return m.Called(p, b, mode).Error(0)
}

func (m *MockFS) MkdirAll(p string, mode os.FileMode) error {
	return m.Called(p, mode).Error(0)
}

func (m *MockFS) CreateTemp(dir, pattern string) (*os.File, error) {
	return fileResult(m.Called(dir, pattern))
}

func (m *MockFS) Rename(from, to string) error {
	return m.Called(from, to).Error(0)
}

func (m *MockFS) Remove(p string) error {
	return m.Called(p).Error(0)
}

func (m *MockFS) Chmod(p string, mode os.FileMode) error {
	return m.Called(p, mode).Error(0)
}

func fileResult(args mock.Arguments) (*os.File, error) {
	f, _ := args.Get(0).(*os.File)
	return f, args.Error(1)
}
