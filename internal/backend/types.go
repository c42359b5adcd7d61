package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VaultRef identifies a vault in listing and item output.
type VaultRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemSummary is one entry of `op item list`.
type ItemSummary struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Vault *VaultRef `json:"vault,omitempty"`
}

// VaultName returns the vault name or "-" when the listing carried none.
func (s ItemSummary) VaultName() string {
	if s.Vault == nil || s.Vault.Name == "" {
		return "-"
	}
	return s.Vault.Name
}

// ItemDetail is the subset of `op item get` that opz reads.
type ItemDetail struct {
	Fields []Field   `json:"fields"`
	Vault  *VaultRef `json:"vault,omitempty"`
}

// Field is a labelled value of an item. Both parts are optional in the
// backend's output.
type Field struct {
	Label *string     `json:"label,omitempty"`
	Value *FieldValue `json:"value,omitempty"`
}

// ValueKind tags the JSON type a field value arrived as.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindJSON
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "json"
	}
}

// FieldValue is a field value of any JSON type. A JSON null decodes to a
// nil *FieldValue, which callers treat as "no value".
type FieldValue struct {
	Kind ValueKind
	str  string
	raw  json.RawMessage
}

// UnmarshalJSON classifies the value by its first non-space byte.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty field value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = FieldValue{Kind: KindString, str: s}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = FieldValue{Kind: KindBool, raw: append(json.RawMessage(nil), trimmed...)}
	case '{', '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return err
		}
		*v = FieldValue{Kind: KindJSON, raw: compact.Bytes()}
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*v = FieldValue{Kind: KindNumber, raw: json.RawMessage(n.String())}
	}
	return nil
}

// MarshalJSON writes the value back in its original JSON type.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Kind == KindString {
		return json.Marshal(v.str)
	}
	return v.raw, nil
}

// Text renders the value for use in an environment variable: strings as
// is, numbers and booleans in their JSON literal form, objects and arrays
// as compact JSON.
func (v *FieldValue) Text() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindString {
		return v.str
	}
	return string(v.raw)
}

// CreateRequest describes a new item built from env pairs.
type CreateRequest struct {
	Title  string
	Vault  string
	Fields []CreateField
}

// CreateField is one custom text field of a new item.
type CreateField struct {
	Label string
	Value string
}
