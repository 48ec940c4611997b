package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/eprefs/pkg/core"
)

// parseValue converts command line text into the Go value of t.
// Arrays are comma separated.
func parseValue(t core.Type, raw string) (any, error) {
	if t.Kind != core.KindArray {
		return parseScalar(t.Kind, raw)
	}

	var parts []string
	if raw != "" {
		parts = strings.Split(raw, ",")
	}
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		v, err := parseScalar(t.Elem.Kind, strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	switch t.Elem.Kind {
	case core.KindBool:
		return collect[bool](values), nil
	case core.KindInt:
		return collect[int32](values), nil
	case core.KindLong:
		return collect[int64](values), nil
	case core.KindFloat:
		return collect[float32](values), nil
	default:
		return collect[string](values), nil
	}
}

func collect[T any](values []any) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = v.(T)
	}
	return out
}

func parseScalar(kind core.Kind, raw string) (any, error) {
	switch kind {
	case core.KindBool:
		return strconv.ParseBool(raw)
	case core.KindInt:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case core.KindLong:
		return strconv.ParseInt(raw, 10, 64)
	case core.KindFloat:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case core.KindString:
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedType, kind)
}

// formatValue renders a loaded value for terminal output.
func formatValue(v any) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case string:
		return x
	}
	s := fmt.Sprint(v)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return strings.ReplaceAll(strings.Trim(s, "[]"), " ", ",")
	}
	return s
}
