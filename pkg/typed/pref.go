// Package typed offers generic handles over a prefs.Prefs so callers work
// with static Go types instead of core.Type descriptors and `any` results.
//
//	scores := typed.IntArray(p)
//	_ = scores.Save(ctx, "scores", []int32{1, 2, 3})
//	got, ok, err := scores.Load(ctx, "scores")
//
//	profiles := typed.Record[Profile](p)
//	_ = profiles.Save(ctx, "me", Profile{Name: "Alice"})
package typed

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// Pref stores and loads values of type T through a Prefs.
type Pref[T any] struct {
	prefs *prefs.Prefs
	typ   core.Type
	from  func(any) (T, error)
}

// Type returns the descriptor used for Load and Delete.
func (r *Pref[T]) Type() core.Type {
	return r.typ
}

// Save persists v under key.
func (r *Pref[T]) Save(ctx context.Context, key string, v T, opts ...prefs.WriteOption) error {
	return r.prefs.Save(ctx, key, v, opts...)
}

// SafeSave persists v under key, discarding any failure.
func (r *Pref[T]) SafeSave(ctx context.Context, key string, v T, opts ...prefs.WriteOption) {
	r.prefs.SafeSave(ctx, key, v, opts...)
}

// Load retrieves the value at key. The bool is false when the key is absent.
func (r *Pref[T]) Load(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, ok, err := r.prefs.Load(ctx, key, r.typ)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := r.from(raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// SafeLoad retrieves the value at key, reporting any failure as absence.
func (r *Pref[T]) SafeLoad(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, ok := r.prefs.SafeLoad(ctx, key, r.typ)
	if !ok {
		return zero, false
	}
	v, err := r.from(raw)
	if err != nil {
		return zero, false
	}
	return v, true
}

// LoadOr retrieves the value at key or def when it is absent.
func (r *Pref[T]) LoadOr(ctx context.Context, key string, def T) (T, error) {
	v, ok, err := r.Load(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Delete removes the value at key, including sequence sub-keys.
func (r *Pref[T]) Delete(ctx context.Context, key string, opts ...prefs.WriteOption) error {
	return r.prefs.Delete(ctx, key, r.typ, opts...)
}

// SafeDelete removes the value at key, discarding any failure.
func (r *Pref[T]) SafeDelete(ctx context.Context, key string, opts ...prefs.WriteOption) {
	r.prefs.SafeDelete(ctx, key, r.typ, opts...)
}

// At binds the handle to a single key.
func (r *Pref[T]) At(key string) *Entry[T] {
	return &Entry[T]{Key: key, pref: r}
}

// Entry is a Pref bound to one key.
type Entry[T any] struct {
	Key  string
	pref *Pref[T]
}

func (e *Entry[T]) Save(ctx context.Context, v T, opts ...prefs.WriteOption) error {
	return e.pref.Save(ctx, e.Key, v, opts...)
}

func (e *Entry[T]) Load(ctx context.Context) (T, bool, error) {
	return e.pref.Load(ctx, e.Key)
}

func (e *Entry[T]) Delete(ctx context.Context, opts ...prefs.WriteOption) error {
	return e.pref.Delete(ctx, e.Key, opts...)
}

// --- Constructors ---

func Bool(p *prefs.Prefs) *Pref[bool] {
	return native[bool](p, core.Bool)
}

func Int(p *prefs.Prefs) *Pref[int32] {
	return native[int32](p, core.Int)
}

func Long(p *prefs.Prefs) *Pref[int64] {
	return native[int64](p, core.Long)
}

func Float(p *prefs.Prefs) *Pref[float32] {
	return native[float32](p, core.Float)
}

func String(p *prefs.Prefs) *Pref[string] {
	return native[string](p, core.String)
}

func BoolArray(p *prefs.Prefs) *Pref[[]bool] {
	return native[[]bool](p, core.ArrayOf(core.Bool))
}

func IntArray(p *prefs.Prefs) *Pref[[]int32] {
	return native[[]int32](p, core.ArrayOf(core.Int))
}

func LongArray(p *prefs.Prefs) *Pref[[]int64] {
	return native[[]int64](p, core.ArrayOf(core.Long))
}

func FloatArray(p *prefs.Prefs) *Pref[[]float32] {
	return native[[]float32](p, core.ArrayOf(core.Float))
}

func StringArray(p *prefs.Prefs) *Pref[[]string] {
	return native[[]string](p, core.ArrayOf(core.String))
}

func native[T any](p *prefs.Prefs, typ core.Type) *Pref[T] {
	return &Pref[T]{prefs: p, typ: typ, from: assert[T]}
}

func assert[T any](raw any) (T, error) {
	v, ok := raw.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: loaded %T, want %T", core.ErrWrongType, raw, zero)
	}
	return v, nil
}

// Record returns a handle for a struct type T stored through the record codec.
func Record[T any](p *prefs.Prefs) *Pref[T] {
	return &Pref[T]{prefs: p, typ: recordType[T](), from: deref[T]}
}

// Records returns a handle for a list of T, fanned out one record per sub-key.
func Records[T any](p *prefs.Prefs) *Pref[[]T] {
	return &Pref[[]T]{
		prefs: p,
		typ:   core.ListOf(recordType[T]()),
		from: func(raw any) ([]T, error) {
			items, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: loaded %T, want list", core.ErrWrongType, raw)
			}
			out := make([]T, 0, len(items))
			for _, item := range items {
				v, err := deref[T](item)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

func recordType[T any]() core.Type {
	return core.RecordOf(reflect.TypeFor[T]().String(), func() any { return new(T) })
}

func deref[T any](raw any) (T, error) {
	ptr, ok := raw.(*T)
	if !ok || ptr == nil {
		var zero T
		return zero, fmt.Errorf("%w: loaded %T, want *%T", core.ErrWrongType, raw, zero)
	}
	return *ptr, nil
}
