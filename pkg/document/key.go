package document

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateKey checks a dotted key against the charset and quoting rules.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	for _, r := range key {
		if !isKeyRune(r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidKey, key, r)
		}
	}
	for _, sec := range splitKey(key) {
		if err := validateSection(key, sec); err != nil {
			return err
		}
	}
	return nil
}

func isKeyRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '\'', '.', ' ', '-':
		return true
	}
	return false
}

func validateSection(key, sec string) error {
	quotes := strings.Count(sec, "'")
	switch {
	case quotes == 0:
		if sec == "" {
			return fmt.Errorf("%w: %q has an empty section", ErrInvalidKey, key)
		}
	case quotes != 2 || len(sec) < 2 || sec[0] != '\'' || sec[len(sec)-1] != '\'':
		return fmt.Errorf("%w: section %q of %q", ErrInvalidKeyQuoting, sec, key)
	case len(sec) == 2:
		return fmt.Errorf("%w: %q has an empty quoted section", ErrInvalidKey, key)
	}
	return nil
}

// splitKey splits a key at dots that are not inside single quotes.
func splitKey(key string) []string {
	var (
		out    []string
		start  int
		quoted bool
	)
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '\'':
			quoted = !quoted
		case '.':
			if !quoted {
				out = append(out, key[start:i])
				start = i + 1
			}
		}
	}
	return append(out, key[start:])
}

// unquote strips the surrounding quotes of a quoted section.
func unquote(sec string) string {
	if len(sec) >= 2 && sec[0] == '\'' && sec[len(sec)-1] == '\'' {
		return sec[1 : len(sec)-1]
	}
	return sec
}

// quoteSection turns a mapping key read from YAML into a key section.
func quoteSection(name string) string {
	if strings.Contains(name, ".") {
		return "'" + name + "'"
	}
	return name
}

// path returns the unquoted sections of a valid key.
func path(key string) []string {
	secs := splitKey(key)
	for i, s := range secs {
		secs[i] = unquote(s)
	}
	return secs
}

// canonical rewrites a valid key so that every section is quoted exactly when
// it contains a dot. "'General'.Prefix" and "General.Prefix" name one key.
func canonical(key string) string {
	secs := path(key)
	for i, sec := range secs {
		secs[i] = quoteSection(sec)
	}
	return strings.Join(secs, ".")
}

// lookupKey maps a caller-supplied key to the form used in the index. Invalid
// keys are returned unchanged and simply never match.
func lookupKey(key string) string {
	if ValidateKey(key) != nil {
		return key
	}
	return canonical(key)
}

// TopSection returns the first section of key, e.g. "General" for
// "General.Prefix".
func TopSection(key string) string {
	return unquote(splitKey(key)[0])
}

// overlaps reports whether one path is a strict prefix of the other.
func overlaps(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if len(a) == len(b) {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
