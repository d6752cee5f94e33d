// Package version provides the dotted-integer Version used to stamp
// configuration documents, together with the acceptance rules a loader uses
// to decide whether an on-disk document is current enough to keep.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when a string is not a dotted-integer version.
var ErrInvalidFormat = errors.New("invalid version format")

var _versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)+$`)

// Version is an immutable sequence of non-negative integers such as "1.2" or
// "2.0.13". The zero value is not a valid version; use Parse.
type Version struct {
	raw   string
	parts []int
}

// Parse validates s and returns the Version it describes. At least two
// components are required and each must fit an int.
func Parse(s string) (Version, error) {
	if !_versionPattern.MatchString(s) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: component %d: %v", ErrInvalidFormat, s, i, err)
		}
		parts[i] = n
	}

	return Version{raw: s, parts: parts}, nil
}

// MustParse is like Parse but panics on error. Intended for hard-coded literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to,
// or after b. Missing trailing components count as zero.
func Compare(a, b Version) int {
	n := len(a.parts)
	if len(b.parts) > n {
		n = len(b.parts)
	}
	for i := 0; i < n; i++ {
		x, y := a.part(i), b.part(i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// Compare compares v with other. See the package-level Compare.
func (v Version) Compare(other Version) int { return Compare(v, other) }

// Equal reports whether v and other compare equal, so "1.2" equals "1.2.0".
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return Compare(v, other) < 0 }

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool { return len(v.parts) == 0 }

// String returns the text v was parsed from.
func (v Version) String() string { return v.raw }

// Components returns a copy of the numeric components.
func (v Version) Components() []int {
	out := make([]int, len(v.parts))
	copy(out, v.parts)
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Version) part(i int) int {
	if i < len(v.parts) {
		return v.parts[i]
	}
	return 0
}
