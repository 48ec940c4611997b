package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eprefs/pkg/adapters/sqlite"
	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

func setupTestStore(t *testing.T, path, namespace string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(sqlite.Config{
		Path:      path,
		Namespace: namespace,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_PrimitivesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s := setupTestStore(t, path, "settings")

	ed := s.Edit()
	ed.PutBool("flag", true)
	ed.PutInt("count", -3)
	ed.PutLong("big", 1<<40)
	ed.PutFloat("ratio", 0.1)
	ed.PutString("name", "alice")
	require.NoError(t, ed.Commit(ctx))
	require.NoError(t, s.Close())

	reopened := setupTestStore(t, path, "settings")
	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"flag":  true,
		"count": int32(-3),
		"big":   int64(1 << 40),
		"ratio": float32(0.1),
		"name":  "alice",
	}, all)
}

func TestSQLiteStore_GettersAndRemove(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, filepath.Join(t.TempDir(), "prefs.db"), "")

	got, err := s.GetInt(ctx, "count", 42)
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)

	ed := s.Edit()
	ed.PutInt("count", 1)
	ed.PutInt("count", 2)
	require.NoError(t, ed.Commit(ctx))

	got, err = s.GetInt(ctx, "count", 42)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)

	_, err = s.GetString(ctx, "count", "")
	assert.ErrorIs(t, err, core.ErrWrongType)

	ed = s.Edit()
	ed.Remove("count")
	require.NoError(t, ed.Commit(ctx))

	ok, err := s.Contains(ctx, "count")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")
	a := setupTestStore(t, path, "a")
	b := setupTestStore(t, path, "b")

	ed := a.Edit()
	ed.PutString("k", "from-a")
	require.NoError(t, ed.Commit(ctx))

	ok, err := b.Contains(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_ApplyDrainsOnClose(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")
	s := setupTestStore(t, path, "")

	for i := range 20 {
		ed := s.Edit()
		ed.PutInt("count", int32(i))
		ed.Apply()
	}
	require.NoError(t, s.Close())

	state, ok := s.State().(sqlite.StoreState)
	require.True(t, ok)
	assert.True(t, state.Closed)
	assert.Equal(t, int64(20), state.Commits)

	reopened := setupTestStore(t, path, "")
	got, err := reopened.GetInt(ctx, "count", -1)
	require.NoError(t, err)
	assert.Equal(t, int32(19), got)
}

func TestSQLiteStore_CommitAfterClose(t *testing.T) {
	s := setupTestStore(t, filepath.Join(t.TempDir(), "prefs.db"), "")
	require.NoError(t, s.Close())

	ed := s.Edit()
	ed.PutBool("flag", true)
	assert.ErrorIs(t, ed.Commit(context.Background()), core.ErrClosed)
}

func TestSQLiteStore_CancelledContext(t *testing.T) {
	s := setupTestStore(t, filepath.Join(t.TempDir(), "prefs.db"), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ed := s.Edit()
	ed.PutBool("flag", true)
	assert.ErrorIs(t, ed.Commit(ctx), context.Canceled)
}

type profile struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func TestSQLiteStore_BacksDispatcher(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")
	p := prefs.New(setupTestStore(t, path, ""))

	people := []any{profile{Name: "a", Tags: []string{"x"}}, profile{Name: "b"}}
	require.NoError(t, p.Save(ctx, "people", people))
	require.NoError(t, p.Save(ctx, "scores", []int32{3, 1, 2}))
	require.NoError(t, p.Close())

	reopened := prefs.New(setupTestStore(t, path, ""))
	scores, ok, err := reopened.Load(ctx, "scores", core.ArrayOf(core.Int))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int32{3, 1, 2}, scores)

	listType := core.ListOf(core.RecordOf("profile", func() any { return new(profile) }))
	got, ok, err := reopened.Load(ctx, "people", listType)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{&profile{Name: "a", Tags: []string{"x"}}, &profile{Name: "b"}}, got)

	require.NoError(t, reopened.Delete(ctx, "people", listType))
	keys, err := reopened.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"scores", "scores0", "scores1", "scores2"}, keys)
}
