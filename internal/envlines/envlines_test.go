package envlines

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/dotenv"
)

func item(t *testing.T, raw string) *backend.ItemDetail {
	t.Helper()
	var d backend.ItemDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return &d
}

func TestFromItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		want     []dotenv.Line
		wantWarn []string
	}{
		{
			name: "basic",
			raw:  `{"fields":[{"label":"API_KEY","value":"k"},{"label":"DB_HOST","value":"h"}]}`,
			want: []dotenv.Line{
				{Key: "API_KEY", Value: "op://vault-id/abc123/API_KEY"},
				{Key: "DB_HOST", Value: "op://vault-id/abc123/DB_HOST"},
			},
		},
		{
			name:     "invalid labels warned and skipped",
			raw:      `{"fields":[{"label":"VALID_KEY","value":"x"},{"label":"invalid-key","value":"x"},{"label":"123START","value":"x"},{"label":"has space","value":"x"}]}`,
			want:     []dotenv.Line{{Key: "VALID_KEY", Value: "op://vault-id/abc123/VALID_KEY"}},
			wantWarn: []string{"invalid-key", "123START", "has space"},
		},
		{
			name: "missing label or value skipped silently",
			raw:  `{"fields":[{"value":"orphan"},{"label":null,"value":"x"},{"label":"NO_VALUE"},{"label":"NULL_VALUE","value":null},{"label":"HAS_VALUE","value":"v"}]}`,
			want: []dotenv.Line{{Key: "HAS_VALUE", Value: "op://vault-id/abc123/HAS_VALUE"}},
		},
		{
			name: "empty string value still counts",
			raw:  `{"fields":[{"label":"EMPTY","value":""}]}`,
			want: []dotenv.Line{{Key: "EMPTY", Value: "op://vault-id/abc123/EMPTY"}},
		},
		{
			name: "non-string values count",
			raw:  `{"fields":[{"label":"PORT","value":5432},{"label":"ON","value":true}]}`,
			want: []dotenv.Line{
				{Key: "PORT", Value: "op://vault-id/abc123/PORT"},
				{Key: "ON", Value: "op://vault-id/abc123/ON"},
			},
		},
		{
			name: "duplicate labels keep one line",
			raw:  `{"fields":[{"label":"A","value":"1"},{"label":"B","value":"2"},{"label":"A","value":"3"}]}`,
			want: []dotenv.Line{
				{Key: "A", Value: "op://vault-id/abc123/A"},
				{Key: "B", Value: "op://vault-id/abc123/B"},
			},
		},
		{
			name: "no fields",
			raw:  `{"fields":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var warned []string
			got := FromItem(item(t, tt.raw), "vault-id", "abc123", "", func(label string) {
				warned = append(warned, label)
			})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromItem mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantWarn, warned)
		})
	}
}

func TestFromItem_CustomScheme(t *testing.T) {
	t.Parallel()

	got := FromItem(item(t, `{"fields":[{"label":"K","value":"v"}]}`), "v", "i", "vault", nil)
	assert.Equal(t, []dotenv.Line{{Key: "K", Value: "vault://v/i/K"}}, got)
}

func TestFromItem_Nil(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FromItem(nil, "v", "i", "", nil))
}

func TestFromItemValues(t *testing.T) {
	t.Parallel()

	got := FromItemValues(item(t, `{"fields":[
		{"label":"TOKEN","value":"abc"},
		{"label":"MULTI","value":"a\nb \"q\""},
		{"label":"PORT","value":8080},
		{"label":"CFG","value":{"a": [1, 2]}},
		{"label":"bad-label","value":"x"}
	]}`), nil)

	want := []dotenv.Line{
		{Key: "TOKEN", Value: `"abc"`},
		{Key: "MULTI", Value: `"a\nb \"q\""`},
		{Key: "PORT", Value: `"8080"`},
		{Key: "CFG", Value: `"{\"a\":[1,2]}"`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromItemValues mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	sections := []Section{
		{Title: "a", Lines: []dotenv.Line{{Key: "X", Value: "1"}, {Key: "Y", Value: "2"}}},
		{Title: "b", Lines: []dotenv.Line{{Key: "X", Value: "9"}, {Key: "Z", Value: "3"}}},
	}

	type override struct{ key, from, to string }
	var overrides []override
	got := Merge(sections, func(key, from, to string) {
		overrides = append(overrides, override{key, from, to})
	})

	want := []dotenv.Line{{Key: "X", Value: "9"}, {Key: "Y", Value: "2"}, {Key: "Z", Value: "3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []override{{"X", "a", "b"}}, overrides)
}

func TestMerge_EdgeCases(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Merge(nil, nil))

	single := []dotenv.Line{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}
	assert.Equal(t, single, Merge([]Section{{Title: "only", Lines: single}}, nil))

	threeWay := Merge([]Section{
		{Title: "a", Lines: []dotenv.Line{{Key: "K", Value: "a"}}},
		{Title: "b", Lines: []dotenv.Line{{Key: "L", Value: "b"}}},
		{Title: "c", Lines: []dotenv.Line{{Key: "K", Value: "c"}}},
	}, nil)
	assert.Equal(t, []dotenv.Line{{Key: "K", Value: "c"}, {Key: "L", Value: "b"}}, threeWay)
}
