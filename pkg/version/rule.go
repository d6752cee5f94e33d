package version

import "strings"

// Rule decides whether a document version is acceptable as-is.
type Rule interface {
	Accepts(v Version) bool
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(Version) bool

// Accepts calls f(v).
func (f RuleFunc) Accepts(v Version) bool { return f(v) }

// Set accepts versions equal to any of its members.
type Set []Version

// OneOf returns a Rule accepting exactly the given versions.
func OneOf(vs ...Version) Set {
	return Set(vs)
}

// Accepts reports whether v equals a member of s.
func (s Set) Accepts(v Version) bool {
	for _, m := range s {
		if m.Equal(v) {
			return true
		}
	}
	return false
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Range accepts versions between Min and Max, both inclusive. A zero bound is
// open.
type Range struct {
	Min Version
	Max Version
}

// Between returns a Rule accepting min <= v <= max.
func Between(minV, maxV Version) Range {
	return Range{Min: minV, Max: maxV}
}

// AtLeast returns a Rule accepting v >= minV.
func AtLeast(minV Version) Range {
	return Range{Min: minV}
}

// AtMost returns a Rule accepting v <= maxV.
func AtMost(maxV Version) Range {
	return Range{Max: maxV}
}

// Accepts reports whether v lies within r.
func (r Range) Accepts(v Version) bool {
	if !r.Min.IsZero() && v.Less(r.Min) {
		return false
	}
	if !r.Max.IsZero() && r.Max.Less(v) {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "*", "*"
	if !r.Min.IsZero() {
		lo = r.Min.String()
	}
	if !r.Max.IsZero() {
		hi = r.Max.String()
	}
	return "[" + lo + ", " + hi + "]"
}
