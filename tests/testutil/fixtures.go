package testutil

import (
	"encoding/json"
	"testing"
)

// OPItem is a minimal `op item list` entry.
type OPItem struct {
	ID        string
	Title     string
	VaultID   string
	VaultName string
}

// OPField is a minimal field of `op item get` output. Value may be any
// JSON-encodable value; nil encodes as null.
type OPField struct {
	Label any
	Value any
}

// ItemListJSON renders items the way `op item list --format json` does,
// including properties opz ignores.
func ItemListJSON(t *testing.T, items ...OPItem) string {
	t.Helper()

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		entry := map[string]any{
			"id":         it.ID,
			"title":      it.Title,
			"version":    1,
			"category":   "API_CREDENTIAL",
			"created_at": "2024-01-02T03:04:05Z",
		}
		if it.VaultID != "" || it.VaultName != "" {
			entry["vault"] = map[string]any{"id": it.VaultID, "name": it.VaultName}
		}
		out = append(out, entry)
	}
	return mustJSON(t, out)
}

// ItemGetJSON renders `op item get --format json` output.
func ItemGetJSON(t *testing.T, vaultID string, fields ...OPField) string {
	t.Helper()

	fs := make([]map[string]any, 0, len(fields))
	for i, f := range fields {
		fs = append(fs, map[string]any{
			"id":    "field" + string(rune('a'+i)),
			"type":  "STRING",
			"label": f.Label,
			"value": f.Value,
		})
	}
	doc := map[string]any{
		"id":     "item",
		"fields": fs,
	}
	if vaultID != "" {
		doc["vault"] = map[string]any{"id": vaultID, "name": vaultID}
	}
	return mustJSON(t, doc)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(data)
}
