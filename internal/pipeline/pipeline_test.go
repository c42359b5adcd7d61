package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/cache"
	"github.com/systmms/opz/internal/dotenv"
	"github.com/systmms/opz/internal/pipeline"
	"github.com/systmms/opz/internal/resolve"
	"github.com/systmms/opz/tests/testutil"
)

func newPipeline(t *testing.T, mock *testutil.MockCommandExecutor, cacheDir string) (*pipeline.Pipeline, *testutil.LogCapture) {
	t.Helper()
	client, err := backend.New("op", backend.WithExecutor(mock))
	require.NoError(t, err)
	logger, capture := testutil.NewTestLogger(t, true)

	var lister resolve.Lister = client
	if cacheDir != "" {
		c := cache.New(&cache.FileStore{Dir: cacheDir}, client)
		c.Logger = logger
		lister = c
	}
	return &pipeline.Pipeline{
		Resolver: &resolve.Resolver{Lister: lister, Getter: client, Logger: logger},
		Backend:  client,
		Logger:   logger,
	}, capture
}

func TestLines_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op item list", testutil.ItemListJSON(t,
		testutil.OPItem{ID: "item1", Title: "myapp", VaultID: "vault1", VaultName: "Work"},
	))
	mock.AddJSONResponse("op item get item1", testutil.ItemGetJSON(t, "vault1",
		testutil.OPField{Label: "API_KEY", Value: "k"},
		testutil.OPField{Label: "DB_PASS", Value: "p"},
	))
	p, _ := newPipeline(t, mock, filepath.Join(dir, "cache"))

	lines, err := p.Lines(context.Background(), "", []string{"myapp"}, false)
	require.NoError(t, err)

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, dotenv.WriteFile(envFile, lines))
	testutil.AssertFileContents(t, envFile,
		"API_KEY=op://vault1/item1/API_KEY\nDB_PASS=op://vault1/item1/DB_PASS\n")

	cached, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, cache.KeyFor(""), cached[0].Name())

	// The second run is served from the cache.
	_, err = p.Lines(context.Background(), "", []string{"myapp"}, false)
	require.NoError(t, err)
	mock.AssertCallCount(t, "op item list", 1)
	mock.AssertCallCount(t, "op item get", 2)
}

func TestLines_MergesItemsInOrder(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op item list", testutil.ItemListJSON(t,
		testutil.OPItem{ID: "a", Title: "base", VaultID: "v"},
		testutil.OPItem{ID: "b", Title: "override", VaultID: "v"},
	))
	mock.AddJSONResponse("op item get a", testutil.ItemGetJSON(t, "v",
		testutil.OPField{Label: "X", Value: "1"},
		testutil.OPField{Label: "Y", Value: "2"},
		testutil.OPField{Label: "bad-name", Value: "3"},
	))
	mock.AddJSONResponse("op item get b", testutil.ItemGetJSON(t, "v",
		testutil.OPField{Label: "X", Value: "9"},
		testutil.OPField{Label: "Z", Value: "3"},
	))
	p, logs := newPipeline(t, mock, "")

	lines, err := p.Lines(context.Background(), "", []string{"base", "override"}, false)
	require.NoError(t, err)

	want := []dotenv.Line{
		{Key: "X", Value: "op://v/b/X"},
		{Key: "Y", Value: "op://v/a/Y"},
		{Key: "Z", Value: "op://v/b/Z"},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	logs.AssertContains(t, `Skipping field "bad-name" of "base"`)
	logs.AssertContains(t, `X from "base" overridden by "override"`)
}

func TestLines_DirectValues(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op item list", testutil.ItemListJSON(t,
		testutil.OPItem{ID: "a", Title: "svc", VaultID: "v"},
	))
	mock.AddJSONResponse("op item get a", testutil.ItemGetJSON(t, "v",
		testutil.OPField{Label: "TOKEN", Value: "t\"ok"},
	))
	p, _ := newPipeline(t, mock, "")

	lines, err := p.Lines(context.Background(), "", []string{"svc"}, true)
	require.NoError(t, err)
	assert.Equal(t, []dotenv.Line{{Key: "TOKEN", Value: `"t\"ok"`}}, lines)
	mock.AssertNotCalled(t, "op read")
}

func TestLines_StopsAtFirstResolutionError(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op item list", testutil.ItemListJSON(t,
		testutil.OPItem{ID: "a", Title: "svc", VaultID: "v"},
	))
	p, _ := newPipeline(t, mock, "")

	_, err := p.Lines(context.Background(), "", []string{"missing", "svc"}, false)
	var nf *resolve.NotFoundError
	require.ErrorAs(t, err, &nf)
	mock.AssertNotCalled(t, "op item get")
}

func TestValues(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op read op://v/a/TOKEN", "tok\n")
	mock.AddJSONResponse("op read op://v/a/EMPTY", "")
	p, _ := newPipeline(t, mock, "")

	env, err := p.Values(context.Background(), []dotenv.Line{
		{Key: "TOKEN", Value: "op://v/a/TOKEN"},
		{Key: "EMPTY", Value: "op://v/a/EMPTY"},
		{Key: "DIRECT", Value: `"line1\nline2"`},
		{Key: "SINGLE", Value: `'raw\n'`},
		{Key: "PLAIN", Value: "plain"},
	})
	require.NoError(t, err)
	defer env.Destroy()

	assert.Equal(t, []string{"TOKEN", "EMPTY", "DIRECT", "SINGLE", "PLAIN"}, env.Keys())
	require.NoError(t, env.Reveal(func(values map[string]string) error {
		assert.Equal(t, map[string]string{
			"TOKEN":  "tok",
			"EMPTY":  "",
			"DIRECT": "line1\nline2",
			"SINGLE": `raw\n`,
			"PLAIN":  "plain",
		}, values)
		return nil
	}))
}

func TestValues_ReadFailureAborts(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("op read op://v/a/ONE", "1")
	mock.AddErrorResponse("op read op://v/a/TWO", "[ERROR] could not read secret", 1)
	p, _ := newPipeline(t, mock, "")

	env, err := p.Values(context.Background(), []dotenv.Line{
		{Key: "ONE", Value: "op://v/a/ONE"},
		{Key: "TWO", Value: "op://v/a/TWO"},
		{Key: "THREE", Value: "op://v/a/THREE"},
	})
	assert.Nil(t, env)
	var be *backend.BackendError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), "read TWO")
	mock.AssertNotCalled(t, "op read op://v/a/THREE")
}
