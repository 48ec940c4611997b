// Package codec converts structured records to storable strings and back.
//
// Two strategies exist and a Prefs instance uses exactly one of them:
//
//   - Binary (tag "b1"): encoding/gob plus base64. Requires the
//     core.Serializable marker and rebuilds the exact Go type, including
//     slices of structs and unexported-free nested graphs. The bytes are tied
//     to the Go type layout.
//   - Text (tag "j1"): encoding/json. Accepts any struct without opt-in, but
//     decoding needs a constructor in the descriptor and integer widths or
//     nil-vs-empty slices may not survive exactly.
//
// Every encoded string carries its strategy tag ("j1:{...}"), so a value
// written by one strategy is rejected, never misparsed, by the other.
package codec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/eprefs/pkg/core"
)

// Codec encodes and decodes records for a store's string slot.
type Codec interface {
	// Name returns the codec identifier used for configuration and diagnostics.
	Name() string
	// Tag is the prefix written in front of every encoded payload.
	Tag() string
	// Supports returns ErrUnsupportedType if v cannot be stored as a record.
	Supports(v any) error
	// Encode serializes v into tagged text.
	Encode(v any) (string, error)
	// Decode parses tagged text into a fresh value built by t.New.
	Decode(text string, t core.Type) (any, error)
}

const tagSeparator = ":"

// Default returns the canonical codec.
func Default() Codec {
	return NewText()
}

// ByName resolves a codec from its configuration name.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "text", "json":
		return NewText(), nil
	case "binary", "gob":
		return NewBinary(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// TagOf returns the strategy tag of an encoded string, or "" if untagged.
func TagOf(text string) string {
	tag, _, ok := strings.Cut(text, tagSeparator)
	if !ok {
		return ""
	}
	return tag
}

func seal(tag string, payload string) string {
	return tag + tagSeparator + payload
}

func unseal(tag string, text string) (string, error) {
	got, payload, ok := strings.Cut(text, tagSeparator)
	if !ok {
		return "", fmt.Errorf("%w: missing strategy tag", core.ErrCodecFailure)
	}
	if got != tag {
		return "", fmt.Errorf("%w: encoded with strategy %q, codec expects %q", core.ErrCodecFailure, got, tag)
	}
	return payload, nil
}

// construct builds the decode target for t.
func construct(t core.Type) (any, error) {
	if t.New == nil {
		return nil, fmt.Errorf("%w: %s has no constructor", core.ErrUnsupportedType, t)
	}
	target := t.New()
	if target == nil || reflect.TypeOf(target).Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: constructor for %s must return a pointer", core.ErrUnsupportedType, t)
	}
	return target, nil
}

// typeName is the identity of v's underlying type, ignoring pointers.
// Named types are qualified by their import path.
func typeName(v any) string {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	if rt.PkgPath() != "" && rt.Name() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}

// isStruct reports whether v is a struct or a non-nil pointer to one.
func isStruct(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}
