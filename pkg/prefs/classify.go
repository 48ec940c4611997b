package prefs

import (
	"fmt"
	"math"
	"reflect"

	"github.com/aretw0/eprefs/pkg/core"
)

// classify maps a runtime value to its storage kind. The order is fixed:
// exact primitive, known primitive slice, any other slice or array, record
// capability of the codec, unsupported.
func (p *Prefs) classify(v any) core.Kind {
	switch v.(type) {
	case bool:
		return core.KindBool
	case int32, int:
		return core.KindInt
	case int64:
		return core.KindLong
	case float32:
		return core.KindFloat
	case string:
		return core.KindString
	case []bool, []int32, []int, []int64, []float32, []string:
		return core.KindArray
	case nil:
		return core.KindUnsupported
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return core.KindList
	}

	if p.codec.Supports(v) == nil {
		return core.KindRecord
	}
	return core.KindUnsupported
}

// elements flattens a sequence value into its elements in index order.
func elements(v any) []any {
	switch s := v.(type) {
	case []bool:
		return boxed(s)
	case []int32:
		return boxed(s)
	case []int:
		return boxed(s)
	case []int64:
		return boxed(s)
	case []float32:
		return boxed(s)
	case []string:
		return boxed(s)
	case []any:
		return s
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func boxed[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// toInt32 narrows a Go int to the 32-bit int slot.
func toInt32(key string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q: int %d overflows the 32-bit int slot, use int64", core.ErrUnsupportedType, key, v)
	}
	return int32(v), nil
}

// typedSlice converts loaded array elements into the Go slice type matching
// the element kind.
func typedSlice(elem core.Kind, values []any) any {
	switch elem {
	case core.KindBool:
		return unboxed[bool](values)
	case core.KindInt:
		return unboxed[int32](values)
	case core.KindLong:
		return unboxed[int64](values)
	case core.KindFloat:
		return unboxed[float32](values)
	case core.KindString:
		return unboxed[string](values)
	}
	return values
}

func unboxed[T any](values []any) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, v.(T))
	}
	return out
}
