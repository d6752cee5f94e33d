package filesys

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// copy counter at the end of a stem, e.g. "config (3)".
var _counterPattern = regexp.MustCompile(`^(.*) \(([0-9]+)\)$`)

// UniquePath returns path unchanged if nothing exists there. Otherwise it
// derives a sibling name by appending " (1)" to the stem, or by incrementing
// an existing " (N)" counter, until it finds a name that does not exist:
//
//	outdated config.yml     -> outdated config (1).yml
//	outdated config (1).yml -> outdated config (2).yml
//
// Directories are treated the same way as files.
func UniquePath(fsys FileOps, path string) (string, error) {
	for {
		_, err := fsys.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %q: %w", path, err)
		}
		path = nextCopyName(path)
	}
}

// nextCopyName returns the candidate that follows path.
func nextCopyName(path string) string {
	dir, name := filepath.Split(path)
	stem, ext := splitExt(name)

	if m := _counterPattern.FindStringSubmatch(stem); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 && n < int(^uint(0)>>1) {
			return dir + m[1] + " (" + strconv.Itoa(n+1) + ")" + ext
		}
	}
	return dir + stem + " (1)" + ext
}

// splitExt splits name into stem and extension. A leading dot is part of the
// stem, so ".env" has no extension.
func splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
