// Package dotenv reads and writes KEY=VALUE environment files.
//
// Parsing understands comments (including quote-aware inline comments), an
// optional `export ` prefix and one pair of matching outer quotes. It does
// not unescape quoted values: what is between the quotes is returned as is.
package dotenv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidKey reports whether s can be used as an environment variable name.
func IsValidKey(s string) bool {
	return keyPattern.MatchString(s)
}

// Pair is one parsed KEY=VALUE entry.
type Pair struct {
	Key   string
	Value string
}

// Line is a rendered KEY=VALUE line. Value is written verbatim, so callers
// decide between a bare reference and a Quote()d literal.
type Line struct {
	Key   string
	Value string
}

func (l Line) String() string {
	return l.Key + "=" + l.Value
}

// Lines renders each line with String.
func Lines(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

// MalformedSourceError is returned when a source env file cannot be read.
type MalformedSourceError struct {
	Path string
	Err  error
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// WarnFunc receives keys that were skipped because they are not valid
// identifiers. It may be nil.
type WarnFunc func(key string)

// Parse reads dotenv content from r. Later duplicates of a key replace the
// earlier pair and move it to the end of the result.
func Parse(r io.Reader, warn WarnFunc) ([]Pair, error) {
	var pairs []Pair
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, rawValue, ok := splitLine(scanner.Text())
		if !ok {
			continue
		}
		if !IsValidKey(key) {
			if warn != nil {
				warn(key)
			}
			continue
		}

		if pos, seen := index[key]; seen {
			pairs = append(pairs[:pos], pairs[pos+1:]...)
			for k, i := range index {
				if i > pos {
					index[k] = i - 1
				}
			}
		}
		index[key] = len(pairs)
		pairs = append(pairs, Pair{Key: key, Value: normalizeValue(rawValue)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// ParseFile parses the file at path. Read failures are reported as
// *MalformedSourceError.
func ParseFile(path string, warn WarnFunc) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MalformedSourceError{Path: path, Err: err}
	}
	defer f.Close()

	pairs, err := Parse(f, warn)
	if err != nil {
		return nil, &MalformedSourceError{Path: path, Err: err}
	}
	return pairs, nil
}

// KeyOf returns the key declared by a raw file line. Blank lines, comments
// and lines without '=' have no key. The key is not validated.
func KeyOf(line string) (string, bool) {
	key, _, ok := splitLine(line)
	return key, ok
}

// splitLine trims the line, drops blanks and comments, strips `export ` and
// splits on the first '='. The returned value is untrimmed.
func splitLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = stripExport(line)

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), value, true
}

func stripExport(line string) string {
	rest, found := strings.CutPrefix(line, "export")
	if !found || rest == "" {
		return line
	}
	r := []rune(rest)[0]
	if !unicode.IsSpace(r) {
		return line
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace)
}

func normalizeValue(raw string) string {
	value := strings.TrimSpace(stripInlineComment(raw))
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return value
}

// stripInlineComment cuts value at the first '#' that is outside quotes and
// either starts the value or follows whitespace.
func stripInlineComment(value string) string {
	var (
		inSingle bool
		inDouble bool
		escaped  bool
		prev     rune
		hasPrev  bool
	)

	for idx, ch := range value {
		switch {
		case inDouble:
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inDouble = false
			}
		case inSingle:
			if ch == '\'' {
				inSingle = false
			}
		case ch == '"':
			inDouble = true
		case ch == '\'':
			inSingle = true
		case ch == '#':
			if idx == 0 || (hasPrev && unicode.IsSpace(prev)) {
				return strings.TrimRightFunc(value[:idx], unicode.IsSpace)
			}
		}
		prev, hasPrev = ch, true
	}
	return value
}
