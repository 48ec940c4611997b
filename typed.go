package eprefs

import (
	"github.com/aretw0/eprefs/pkg/typed"
)

// Pref is a public alias for the generic typed handle.
type Pref[T any] = typed.Pref[T]

func BoolPref(p *Prefs) *Pref[bool] { return typed.Bool(p) }

func IntPref(p *Prefs) *Pref[int32] { return typed.Int(p) }

func LongPref(p *Prefs) *Pref[int64] { return typed.Long(p) }

func FloatPref(p *Prefs) *Pref[float32] { return typed.Float(p) }

func StringPref(p *Prefs) *Pref[string] { return typed.String(p) }

func IntArray(p *Prefs) *Pref[[]int32] { return typed.IntArray(p) }

func StringArray(p *Prefs) *Pref[[]string] { return typed.StringArray(p) }

// Record returns a handle storing T through the record codec.
func Record[T any](p *Prefs) *Pref[T] {
	return typed.Record[T](p)
}

// Records returns a handle storing a list of T, one record per sub-key.
func Records[T any](p *Prefs) *Pref[[]T] {
	return typed.Records[T](p)
}
