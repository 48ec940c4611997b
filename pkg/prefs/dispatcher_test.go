package prefs_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eprefs/pkg/adapters/memory"
	"github.com/aretw0/eprefs/pkg/codec"
	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

type testObject struct {
	Boolean      bool
	Int          int32
	Long         int64
	Float        float32
	String       string
	BooleanArray []bool
	IntArray     []int32
	LongArray    []int64
	FloatArray   []float32
	StringArray  []string
}

func (testObject) PrefsSerializable() {}

// unmarkedObject is a plain struct without the binary codec marker.
type unmarkedObject struct {
	Boolean bool
}

var testObjectType = core.RecordOf("testObject", func() any { return new(testObject) })

func newTestObject(seed int32, s string) testObject {
	f := float32(seed)
	l := int64(seed)
	return testObject{
		Boolean:      false,
		Int:          seed,
		Long:         l,
		Float:        f,
		String:       s,
		BooleanArray: []bool{true, true, true},
		IntArray:     []int32{seed, seed + 1, seed + 2},
		LongArray:    []int64{l, l + 1, l + 2},
		FloatArray:   []float32{f, f + 1, f + 2},
		StringArray:  []string{s + "1", s + "2", s + "3"},
	}
}

func newPrefs(t *testing.T, opts ...prefs.Option) (*prefs.Prefs, *memory.Store) {
	t.Helper()
	store := memory.New("preferences")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]prefs.Option{prefs.WithLogger(logger), prefs.WithNamespace("preferences")}, opts...)
	return prefs.New(store, opts...), store
}

func snapshot(t *testing.T, store core.Store) map[string]any {
	t.Helper()
	all, err := store.All(context.Background())
	require.NoError(t, err)
	return all
}

func TestPrimitiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	tests := []struct {
		name  string
		value any
		typ   core.Type
	}{
		{"bool", true, core.Bool},
		{"int", int32(7), core.Int},
		{"int min", int32(math.MinInt32), core.Int},
		{"long", int64(77777777), core.Long},
		{"long max", int64(math.MaxInt64), core.Long},
		{"float", float32(7.7), core.Float},
		{"string", "test", core.String},
		{"empty string", "", core.String},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := "test_" + tc.name
			require.NoError(t, p.Save(ctx, key, tc.value))

			got, ok, err := p.Load(ctx, key, tc.typ)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.value, got)

			require.NoError(t, p.Delete(ctx, key, tc.typ))
			got, ok, err = p.Load(ctx, key, tc.typ)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestGoIntUsesIntSlot(t *testing.T) {
	ctx := context.Background()
	p, store := newPrefs(t)

	require.NoError(t, p.Save(ctx, "n", 7))
	got, ok, err := p.Load(ctx, "n", core.Int)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(7), got)

	err = p.Save(ctx, "big", math.MaxInt32+1)
	assert.ErrorIs(t, err, core.ErrUnsupportedType)
	assert.NotContains(t, snapshot(t, store), "big")
}

func TestArrayRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	tests := []struct {
		name  string
		value any
		want  any
		typ   core.Type
	}{
		{"bool", []bool{true, true, false}, []bool{true, true, false}, core.ArrayOf(core.Bool)},
		{"int", []int32{1, 2, 3}, []int32{1, 2, 3}, core.ArrayOf(core.Int)},
		{"go int", []int{1, 2, 3}, []int32{1, 2, 3}, core.ArrayOf(core.Int)},
		{"go array", [3]int32{4, 5, 6}, []int32{4, 5, 6}, core.ArrayOf(core.Int)},
		{"long", []int64{1, 2, 3}, []int64{1, 2, 3}, core.ArrayOf(core.Long)},
		{"float", []float32{1, 2, 3}, []float32{1, 2, 3}, core.ArrayOf(core.Float)},
		{"string", []string{"ready", "set", "go"}, []string{"ready", "set", "go"}, core.ArrayOf(core.String)},
		{"empty", []string{}, []string{}, core.ArrayOf(core.String)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := "test_array_" + tc.name
			require.NoError(t, p.Save(ctx, key, tc.value))

			got, ok, err := p.Load(ctx, key, tc.typ)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			require.NoError(t, p.Delete(ctx, key, tc.typ))
			_, ok, err = p.Load(ctx, key, tc.typ)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestScenarioBool(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	require.NoError(t, p.Save(ctx, "k1", true))
	got, ok, err := p.Load(ctx, "k1", core.Bool)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, true, got)

	require.NoError(t, p.Delete(ctx, "k1", core.Bool))
	_, ok, err = p.Load(ctx, "k1", core.Bool)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenarioIntArrayLayout(t *testing.T) {
	ctx := context.Background()
	p, store := newPrefs(t)

	require.NoError(t, p.Save(ctx, "k2", []int32{1, 2, 3}))
	assert.Equal(t, map[string]any{
		"k2":  int32(3),
		"k20": int32(1),
		"k21": int32(2),
		"k22": int32(3),
	}, snapshot(t, store))

	got, ok, err := p.Load(ctx, "k2", core.ArrayOf(core.Int))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3}, got)

	require.NoError(t, p.Delete(ctx, "k2", core.ArrayOf(core.Int)))
	assert.Empty(t, snapshot(t, store))
}

type smallRecord struct {
	Flag bool   `json:"flag"`
	N    int32  `json:"n"`
	S    string `json:"s"`
}

func (smallRecord) PrefsSerializable() {}

func TestScenarioRecord(t *testing.T) {
	recordType := core.RecordOf("smallRecord", func() any { return new(smallRecord) })

	for _, c := range []codec.Codec{codec.NewText(), codec.NewBinary()} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			p, _ := newPrefs(t, prefs.WithCodec(c))
			want := smallRecord{Flag: false, N: 23, S: "Test"}

			require.NoError(t, p.Save(ctx, "k3", want))
			got, ok, err := p.Load(ctx, "k3", recordType)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, *got.(*smallRecord))

			require.NoError(t, p.Delete(ctx, "k3", recordType))
			_, ok, err = p.Load(ctx, "k3", recordType)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRecordWithArrayFields(t *testing.T) {
	for _, c := range []codec.Codec{codec.NewText(), codec.NewBinary()} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			p, store := newPrefs(t, prefs.WithCodec(c))
			want := newTestObject(23, "Test")

			require.NoError(t, p.Save(ctx, "test_object", &want))
			assert.Len(t, snapshot(t, store), 1, "records occupy a single string slot")

			got, ok, err := p.Load(ctx, "test_object", testObjectType)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, *got.(*testObject))
		})
	}
}

func TestRecordList(t *testing.T) {
	ctx := context.Background()
	listType := core.ListOf(testObjectType)
	want := []testObject{newTestObject(23, "Test"), newTestObject(33, "Test1")}

	for _, c := range []codec.Codec{codec.NewText(), codec.NewBinary()} {
		t.Run(c.Name(), func(t *testing.T) {
			p, store := newPrefs(t, prefs.WithCodec(c))

			require.NoError(t, p.Save(ctx, "test_object_list", want))
			assert.Len(t, snapshot(t, store), 3)

			got, ok, err := p.Load(ctx, "test_object_list", listType)
			require.NoError(t, err)
			require.True(t, ok)
			items := got.([]any)
			require.Len(t, items, len(want))
			for i := range want {
				assert.Equal(t, want[i], *items[i].(*testObject))
			}

			require.NoError(t, p.Delete(ctx, "test_object_list", listType))
			assert.Empty(t, snapshot(t, store))
		})
	}
}

func TestRecordArrayLoadsAsList(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)
	want := [2]testObject{newTestObject(1, "a"), newTestObject(2, "b")}

	require.NoError(t, p.Save(ctx, "test_object_array", want))
	got, ok, err := p.Load(ctx, "test_object_array", core.ListOf(testObjectType))
	require.NoError(t, err)
	require.True(t, ok)
	items := got.([]any)
	require.Len(t, items, 2)
	assert.Equal(t, want[1], *items[1].(*testObject))
}

func TestLooseListOfPrimitives(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	require.NoError(t, p.Save(ctx, "mixed", []any{int32(1), int32(2)}))
	got, ok, err := p.Load(ctx, "mixed", core.ListOf(core.Int))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int32(1), int32(2)}, got)
}

func TestSequenceSkipsMissingElements(t *testing.T) {
	ctx := context.Background()
	p, store := newPrefs(t)

	require.NoError(t, p.Save(ctx, "seq", []string{"a", "b", "c"}))
	ed := store.Edit()
	ed.Remove("seq1")
	require.NoError(t, ed.Commit(ctx))

	got, ok, err := p.Load(ctx, "seq", core.ArrayOf(core.String))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, got)

	require.NoError(t, p.Delete(ctx, "seq", core.ArrayOf(core.String)))
	assert.Empty(t, snapshot(t, store))
}

func TestLoadAbsent(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	types := []core.Type{
		core.Bool, core.Int, core.Long, core.Float, core.String,
		core.ArrayOf(core.Bool), core.ArrayOf(core.Int), core.ArrayOf(core.Long),
		core.ArrayOf(core.Float), core.ArrayOf(core.String),
		testObjectType, core.ListOf(testObjectType),
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			got, ok, err := p.Load(ctx, "nonexistent_key", typ)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, got)

			assert.NoError(t, p.Delete(ctx, "nonexistent_key", typ))
		})
	}
}

func TestUnsupportedSave(t *testing.T) {
	ctx := context.Background()
	binary := prefs.WithCodec(codec.NewBinary())

	tests := []struct {
		name  string
		value any
		opts  []prefs.Option
	}{
		{"unmarked object", unmarkedObject{}, []prefs.Option{binary}},
		{"unmarked object array", []unmarkedObject{{}}, []prefs.Option{binary}},
		{"unmarked object in valid list", []any{newTestObject(1, "a"), unmarkedObject{}}, []prefs.Option{binary}},
		{"map", map[string]int{"a": 1}, nil},
		{"channel", make(chan int), nil},
		{"float64", 7.7, nil},
		{"nil", nil, nil},
		{"nested sequence", [][]int32{{1}, {2}}, nil},
		{"bytes", []byte("abc"), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, store := newPrefs(t, tc.opts...)

			err := p.Save(ctx, "exception_key", tc.value)
			assert.ErrorIs(t, err, core.ErrUnsupportedType)
			assert.Empty(t, snapshot(t, store), "failed save must not write")

			p.SafeSave(ctx, "exception_key", tc.value)
			assert.Empty(t, snapshot(t, store), "safe save must not write")
		})
	}
}

func TestUnsupportedDescriptor(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)
	require.NoError(t, p.Save(ctx, "k", int32(1)))

	for _, typ := range []core.Type{
		{},
		core.ArrayOf(testObjectType),
		core.ArrayOf(core.ArrayOf(core.Int)),
		core.ListOf(core.ListOf(core.Int)),
		{Kind: core.KindArray},
	} {
		_, _, err := p.Load(ctx, "k", typ)
		assert.ErrorIs(t, err, core.ErrUnsupportedType, typ.String())
		assert.ErrorIs(t, p.Delete(ctx, "k", typ), core.ErrUnsupportedType, typ.String())

		got, ok := p.SafeLoad(ctx, "k", typ)
		assert.False(t, ok)
		assert.Nil(t, got)
	}
}

func TestRecordWithoutConstructor(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)
	require.NoError(t, p.Save(ctx, "plain", unmarkedObject{Boolean: true}))

	_, _, err := p.Load(ctx, "plain", core.Type{Kind: core.KindRecord, Name: "unmarkedObject"})
	assert.ErrorIs(t, err, core.ErrUnsupportedType)
}

func TestCodecMismatchSurfaces(t *testing.T) {
	ctx := context.Background()
	store := memory.New("shared")
	textPrefs := prefs.New(store, prefs.WithCodec(codec.NewText()))
	binaryPrefs := prefs.New(store, prefs.WithCodec(codec.NewBinary()))

	require.NoError(t, textPrefs.Save(ctx, "obj", newTestObject(1, "x")))

	_, _, err := binaryPrefs.Load(ctx, "obj", testObjectType)
	assert.ErrorIs(t, err, core.ErrCodecFailure)

	got, ok := binaryPrefs.SafeLoad(ctx, "obj", testObjectType)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestWrongTypeLoad(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)
	require.NoError(t, p.Save(ctx, "s", "text"))

	_, _, err := p.Load(ctx, "s", core.Int)
	assert.ErrorIs(t, err, core.ErrWrongType)

	_, ok := p.SafeLoad(ctx, "s", core.Int)
	assert.False(t, ok)
}

func TestSafeDelete(t *testing.T) {
	ctx := context.Background()
	p, store := newPrefs(t)
	require.NoError(t, p.Save(ctx, "arr", []int32{1, 2}))

	p.SafeDelete(ctx, "arr", core.ArrayOf(testObjectType))
	assert.Len(t, snapshot(t, store), 3, "invalid descriptor must not mutate")

	p.SafeDelete(ctx, "arr", core.ArrayOf(core.Int))
	assert.Empty(t, snapshot(t, store))
}

func TestEmptyKey(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	assert.ErrorIs(t, p.Save(ctx, "", true), core.ErrInvalidKey)
	_, _, err := p.Load(ctx, "", core.Bool)
	assert.ErrorIs(t, err, core.ErrInvalidKey)
	assert.ErrorIs(t, p.Delete(ctx, "", core.Bool), core.ErrInvalidKey)
	_, err = p.Contains(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidKey)
}

func TestSubKeyAliasing(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	require.NoError(t, p.Save(ctx, "a", []string{"x", "y"}))
	require.NoError(t, p.Save(ctx, "a0", "overwritten"))

	got, _, err := p.Load(ctx, "a", core.ArrayOf(core.String))
	require.NoError(t, err)
	assert.Equal(t, []string{"overwritten", "y"}, got)
}

func TestAsyncCommit(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t, prefs.WithCommitMode(prefs.CommitAsync))

	require.NoError(t, p.Save(ctx, "a", int64(1)))
	require.NoError(t, p.Save(ctx, "b", int64(2), prefs.Sync()))

	got, ok, err := p.Load(ctx, "b", core.Long)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got)
}

func TestKeys(t *testing.T) {
	ctx := context.Background()
	p, _ := newPrefs(t)

	require.NoError(t, p.Save(ctx, "user/name", "alice"))
	require.NoError(t, p.Save(ctx, "user/scores", []int32{1, 2}))
	require.NoError(t, p.Save(ctx, "theme", "dark"))

	all, err := p.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"theme", "user/name", "user/scores", "user/scores0", "user/scores1"}, all)

	users, err := p.Keys(ctx, "user/*")
	require.NoError(t, err)
	assert.Len(t, users, 4)

	_, err = p.Keys(ctx, "user/[")
	assert.Error(t, err)
}

func TestWatchUnsupported(t *testing.T) {
	p, _ := newPrefs(t)
	_, err := p.Watch(context.Background())
	assert.Error(t, err)
}

func TestState(t *testing.T) {
	p, _ := newPrefs(t, prefs.WithCodec(codec.NewBinary()))
	require.NoError(t, p.Save(context.Background(), "k", true))

	state, ok := p.State().(prefs.PrefsState)
	require.True(t, ok)
	assert.Equal(t, "preferences", state.Namespace)
	assert.Equal(t, "binary", state.Codec)
	assert.Equal(t, "sync", state.CommitMode)
	assert.Equal(t, "memory-store", state.StoreType)
	assert.Equal(t, memory.StoreState{Namespace: "preferences", Keys: 1, Commits: 1}, state.Store)
}

func TestParseCommitMode(t *testing.T) {
	for in, want := range map[string]prefs.CommitMode{
		"": prefs.CommitSync, "sync": prefs.CommitSync, "commit": prefs.CommitSync,
		"async": prefs.CommitAsync, "apply": prefs.CommitAsync,
	} {
		got, err := prefs.ParseCommitMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := prefs.ParseCommitMode("later")
	assert.Error(t, err)
}
