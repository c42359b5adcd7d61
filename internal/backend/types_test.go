package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind ValueKind
		wantText string
	}{
		{name: "string", input: `"hello"`, wantKind: KindString, wantText: "hello"},
		{name: "empty string", input: `""`, wantKind: KindString, wantText: ""},
		{name: "escaped string", input: `"a\nb"`, wantKind: KindString, wantText: "a\nb"},
		{name: "integer", input: `42`, wantKind: KindNumber, wantText: "42"},
		{name: "negative float", input: `-1.5`, wantKind: KindNumber, wantText: "-1.5"},
		{name: "large integer keeps digits", input: `12345678901234567890`, wantKind: KindNumber, wantText: "12345678901234567890"},
		{name: "true", input: `true`, wantKind: KindBool, wantText: "true"},
		{name: "false", input: `false`, wantKind: KindBool, wantText: "false"},
		{name: "object compacted", input: `{ "a" : 1,  "b": [1, 2] }`, wantKind: KindJSON, wantText: `{"a":1,"b":[1,2]}`},
		{name: "array", input: `[ "x" ]`, wantKind: KindJSON, wantText: `["x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var v FieldValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.wantKind, v.Kind)
			assert.Equal(t, tt.wantText, v.Text())
		})
	}
}

func TestFieldValue_Null(t *testing.T) {
	t.Parallel()

	var f Field
	require.NoError(t, json.Unmarshal([]byte(`{"label":"X","value":null}`), &f))
	assert.Nil(t, f.Value)
	assert.Equal(t, "", f.Value.Text())
}

func TestFieldValue_RoundTripKeepsType(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`"s"`, `7`, `true`, `{"k":"v"}`} {
		var v FieldValue
		require.NoError(t, json.Unmarshal([]byte(input), &v))
		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, input, string(out))
	}
}

func TestFieldValue_Invalid(t *testing.T) {
	t.Parallel()

	var v FieldValue
	assert.Error(t, v.UnmarshalJSON([]byte(`   `)))
	assert.Error(t, v.UnmarshalJSON([]byte(`tru`)))
}

func TestValueKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "bool", KindBool.String())
	assert.Equal(t, "json", KindJSON.String())
}

func TestItemSummary_VaultName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", ItemSummary{}.VaultName())
	assert.Equal(t, "-", ItemSummary{Vault: &VaultRef{ID: "v"}}.VaultName())
	assert.Equal(t, "Private", ItemSummary{Vault: &VaultRef{Name: "Private"}}.VaultName())
}
