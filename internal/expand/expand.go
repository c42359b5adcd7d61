// Package expand substitutes resolved secret values into command arguments.
//
// Only $NAME and ${NAME} are recognized, and only names present in the
// supplied map are replaced. Everything else, including $HOME style
// references to the ambient environment, is left exactly as written so the
// child process can deal with it.
package expand

import (
	"sort"
	"strings"

	"github.com/buildkite/interpolate"
)

// Expand performs a single left-to-right substitution pass over s.
// Substituted values are never rescanned.
func Expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}

		start := i
		i++
		braced := i < len(s) && s[i] == '{'
		if braced {
			i++
		}
		nameStart := i
		for i < len(s) && isNameByte(s[i]) {
			i++
		}
		name := s[nameStart:i]

		if braced {
			if i >= len(s) || s[i] != '}' {
				// Unterminated ${: emit what was consumed untouched.
				b.WriteString(s[start:i])
				continue
			}
			i++
		}

		if value, ok := vars[name]; ok && name != "" {
			b.WriteString(value)
			continue
		}
		b.WriteString(s[start:i])
	}

	return b.String()
}

// ExpandAll applies Expand to every element of args.
func ExpandAll(args []string, vars map[string]string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Expand(a, vars)
	}
	return out
}

// Unresolved lists, sorted and de-duplicated, the variable names referenced
// by args that are not in vars. These are passed through to the child
// untouched. Arguments that are not valid shell-style strings are skipped.
func Unresolved(args []string, vars map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range args {
		if !strings.Contains(a, "$") {
			continue
		}
		ids, err := interpolate.Identifiers(a)
		if err != nil {
			continue
		}
		for _, id := range ids {
			if _, ok := vars[id]; ok || seen[id] {
				continue
			}
			seen[id] = true
			names = append(names, id)
		}
	}
	sort.Strings(names)
	return names
}

// Suggest returns the key that name most likely misspells: a key equal to
// name ignoring case, or one edit away from it. Names shorter than three
// characters never match.
func Suggest(name string, keys []string) (string, bool) {
	if len(name) < 3 {
		return "", false
	}
	folded := strings.ToUpper(name)
	for _, k := range keys {
		if k != name && strings.ToUpper(k) == folded {
			return k, true
		}
	}
	for _, k := range keys {
		if k != name && oneEditApart(folded, strings.ToUpper(k)) {
			return k, true
		}
	}
	return "", false
}

// oneEditApart reports whether a and b differ by exactly one inserted,
// deleted or substituted byte.
func oneEditApart(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	switch len(b) - len(a) {
	case 0:
		diff := 0
		for i := 0; i < len(a); i++ {
			if a[i] != b[i] {
				diff++
			}
		}
		return diff == 1
	case 1:
		i := 0
		for i < len(a) && a[i] == b[i] {
			i++
		}
		return a[i:] == b[i+1:]
	}
	return false
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
