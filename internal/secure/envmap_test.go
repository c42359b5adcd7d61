package secure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvMap_SetAndReveal(t *testing.T) {
	t.Parallel()

	m := NewEnvMap()
	defer m.Destroy()
	m.Set("B", "two")
	m.Set("A", "one")
	m.Set("EMPTY", "")
	m.Set("B", "deux")

	assert.Equal(t, []string{"B", "A", "EMPTY"}, m.Keys())
	assert.Equal(t, 3, m.Len())

	var got map[string]string
	require.NoError(t, m.Reveal(func(values map[string]string) error {
		got = values
		return nil
	}))
	assert.Equal(t, map[string]string{"A": "one", "B": "deux", "EMPTY": ""}, got)
}

func TestEnvMap_RevealPropagatesError(t *testing.T) {
	t.Parallel()

	m := NewEnvMap()
	defer m.Destroy()
	m.Set("K", "v")

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Reveal(func(map[string]string) error { return boom }), boom)
}

func TestEnvMap_Destroy(t *testing.T) {
	t.Parallel()

	m := NewEnvMap()
	m.Set("K", "v")
	m.Destroy()

	assert.Equal(t, 0, m.Len())
	require.NoError(t, m.Reveal(func(values map[string]string) error {
		assert.Empty(t, values)
		return nil
	}))
}
