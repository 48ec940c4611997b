// Package core holds the domain types shared by the dispatcher, the codecs
// and the store adapters: storage kinds, type descriptors, the store contract
// and the error taxonomy.
package core

import "fmt"

// DefaultNamespace is the namespace used when none is configured.
const DefaultNamespace = "preferences"

// Kind is the closed set of storage shapes a value can take.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindBool
	KindInt
	KindLong
	KindFloat
	KindString
	KindArray  // sequence of primitives
	KindList   // sequence of records (or loosely typed elements)
	KindRecord // opaque structured record, stored as encoded text
)

var kindNames = [...]string{
	KindUnsupported: "unsupported",
	KindBool:        "bool",
	KindInt:         "int",
	KindLong:        "long",
	KindFloat:       "float",
	KindString:      "string",
	KindArray:       "array",
	KindList:        "list",
	KindRecord:      "record",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Primitive reports whether k is stored in a native store slot.
func (k Kind) Primitive() bool {
	return k >= KindBool && k <= KindString
}

// Sequence reports whether k is fanned out over indexed sub-keys.
func (k Kind) Sequence() bool {
	return k == KindArray || k == KindList
}

// Type describes the shape a caller expects when loading or deleting a key.
// The store keeps no type metadata, so the descriptor is the only source of
// truth on the read path.
type Type struct {
	Kind Kind
	// Elem is the element descriptor for KindArray and KindList.
	Elem *Type
	// New returns a pointer to a fresh zero value for KindRecord.
	// A nil New means the record cannot be constructed on decode.
	New func() any
	// Name identifies the record type in logs and errors.
	Name string
}

// Primitive descriptors.
var (
	Bool   = Type{Kind: KindBool}
	Int    = Type{Kind: KindInt}
	Long   = Type{Kind: KindLong}
	Float  = Type{Kind: KindFloat}
	String = Type{Kind: KindString}
)

// ArrayOf describes a sequence of primitives.
func ArrayOf(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// ListOf describes a sequence of records.
func ListOf(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// RecordOf describes a structured record. newFn must return a pointer to a
// freshly allocated value, e.g. func() any { return new(Profile) }.
func RecordOf(name string, newFn func() any) Type {
	return Type{Kind: KindRecord, New: newFn, Name: name}
}

// Validate checks that the descriptor names a shape the dispatcher can serve.
// Nested sequences and arrays of non-primitives are rejected.
func (t Type) Validate() error {
	switch {
	case t.Kind.Primitive(), t.Kind == KindRecord:
		return nil
	case t.Kind == KindArray:
		if t.Elem == nil || !t.Elem.Kind.Primitive() {
			return fmt.Errorf("%w: array elements must be primitive", ErrUnsupportedType)
		}
		return nil
	case t.Kind == KindList:
		if t.Elem == nil || t.Elem.Kind.Sequence() || t.Elem.Kind == KindUnsupported {
			return fmt.Errorf("%w: list elements must be records or primitives", ErrUnsupportedType)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindArray, KindList:
		if t.Elem == nil {
			return t.Kind.String() + "<?>"
		}
		return t.Kind.String() + "<" + t.Elem.String() + ">"
	case KindRecord:
		if t.Name != "" {
			return "record<" + t.Name + ">"
		}
	}
	return t.Kind.String()
}

// ParseType maps a textual descriptor (as used by the CLI and config) to a
// primitive or primitive array Type. Records need a Go constructor and cannot
// be named textually.
func ParseType(s string) (Type, error) {
	switch s {
	case "bool":
		return Bool, nil
	case "int":
		return Int, nil
	case "long":
		return Long, nil
	case "float":
		return Float, nil
	case "string":
		return String, nil
	case "bool[]":
		return ArrayOf(Bool), nil
	case "int[]":
		return ArrayOf(Int), nil
	case "long[]":
		return ArrayOf(Long), nil
	case "float[]":
		return ArrayOf(Float), nil
	case "string[]":
		return ArrayOf(String), nil
	}
	return Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// Serializable marks a record type as storable by the binary codec.
// The text codec accepts any struct and ignores the marker.
type Serializable interface {
	PrefsSerializable()
}

// EventType represents the type of change observed on a namespace.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a single key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
