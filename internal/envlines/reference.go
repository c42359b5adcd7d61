package envlines

import (
	"fmt"
	"strings"
)

// DefaultScheme is the reference scheme understood by `op read`.
const DefaultScheme = "op"

// Reference points at one field of one item: scheme://vault/item/field.
type Reference struct {
	Scheme string
	Vault  string
	Item   string
	// Field may contain further slashes (section/field).
	Field string
}

func (r Reference) String() string {
	return fmt.Sprintf("%s://%s/%s/%s", r.Scheme, r.Vault, r.Item, r.Field)
}

// ParseReference splits s into its parts. Every part must be non-empty.
func ParseReference(s string) (Reference, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return Reference{}, fmt.Errorf("%q is not a secret reference", s)
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Reference{}, fmt.Errorf("%q is not a secret reference: want %s://vault/item/field", s, scheme)
	}
	return Reference{Scheme: scheme, Vault: parts[0], Item: parts[1], Field: parts[2]}, nil
}

// IsReference reports whether s is a reference in the given scheme.
func IsReference(s, scheme string) bool {
	ref, err := ParseReference(s)
	return err == nil && ref.Scheme == scheme
}
