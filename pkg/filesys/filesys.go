// Package filesys provides the file system surface used by the configuration
// loader. Operations go through the FileOps interface so that loader tests can
// inject failures, and every write of default content goes through
// AtomicWrite.
package filesys

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lc/plugkit/internal/log"
)

// FileOps is everything the loader and the path allocator touch on disk.
type FileOps interface {
	Stat(string) (fs.FileInfo, error)
	Open(string) (*os.File, error)
	ReadFile(string) ([]byte, error)
	WriteFile(string, []byte, os.FileMode) error
	MkdirAll(string, os.FileMode) error
	CreateTemp(string, string) (*os.File, error)
	Rename(string, string) error
	Remove(string) error
	Chmod(string, os.FileMode) error
}

// OS returns a FileOps that delegates to the standard library.
func OS() OsFS {
	return OsFS{}
}

// OsFS implements FileOps against the local disk.
type OsFS struct{}

func (OsFS) Stat(p string) (fs.FileInfo, error)                { return os.Stat(p) }
func (OsFS) Open(p string) (*os.File, error)                   { return os.Open(p) }
func (OsFS) ReadFile(p string) ([]byte, error)                 { return os.ReadFile(p) }
func (OsFS) WriteFile(p string, b []byte, m os.FileMode) error { return os.WriteFile(p, b, m) }
func (OsFS) MkdirAll(p string, m os.FileMode) error            { return os.MkdirAll(p, m) }
func (OsFS) CreateTemp(dir, pat string) (*os.File, error)      { return os.CreateTemp(dir, pat) }
func (OsFS) Rename(old, newName string) error                  { return os.Rename(old, newName) }
func (OsFS) Remove(p string) error                             { return os.Remove(p) }
func (OsFS) Chmod(p string, m os.FileMode) error               { return os.Chmod(p, m) }

var _ FileOps = OsFS{}

// AtomicWrite persists data to dst with the provided file mode. Readers see
// either the previous file or the complete new one:
//
//  1. temp file in the same dir
//  2. fsync(temp) + close
//  3. chmod(temp, perm)
//  4. rename(temp, dst)
//  5. fsync(dir)
func AtomicWrite(fsys FileOps, dst string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(dst)
	tmp, err := fsys.CreateTemp(dir, ".plugkit-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	cerr := tmp.Close()
	if err == nil {
		err = cerr
	}
	if err == nil {
		err = fsys.Chmod(tmp.Name(), perm)
	}
	if err == nil {
		err = fsys.Rename(tmp.Name(), dst)
	}
	if err != nil {
		if removeErr := fsys.Remove(tmp.Name()); removeErr != nil {
			log.Warn("filesys: failed to remove temp file", "path", tmp.Name(), "error", removeErr)
		}
		return err
	}

	if d, err := fsys.Open(dir); err == nil {
		if syncErr := d.Sync(); syncErr != nil {
			log.Debug("filesys: failed to sync directory", "path", dir, "error", syncErr)
		}
		if closeErr := d.Close(); closeErr != nil {
			log.Warn("filesys: failed to close directory", "path", dir, "error", closeErr)
		}
	}
	return nil
}
