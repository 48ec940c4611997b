package core

import (
	"fmt"
	"time"
)

// Mutation is a single staged write or removal.
type Mutation struct {
	Key    string
	Value  any // bool, int32, int64, float32 or string
	Remove bool
}

// Batch records mutations in the order they were staged. Store adapters embed
// it to implement the Put/Remove half of Editor.
type Batch struct {
	mutations []Mutation
}

// PutBool stages a boolean write.
func (b *Batch) PutBool(key string, v bool) { b.put(key, v) }

// PutInt stages a 32-bit integer write.
func (b *Batch) PutInt(key string, v int32) { b.put(key, v) }

// PutLong stages a 64-bit integer write.
func (b *Batch) PutLong(key string, v int64) { b.put(key, v) }

// PutFloat stages a 32-bit float write.
func (b *Batch) PutFloat(key string, v float32) { b.put(key, v) }

// PutString stages a string write.
func (b *Batch) PutString(key string, v string) { b.put(key, v) }

// Remove stages the removal of key.
func (b *Batch) Remove(key string) {
	b.mutations = append(b.mutations, Mutation{Key: key, Remove: true})
}

func (b *Batch) put(key string, v any) {
	b.mutations = append(b.mutations, Mutation{Key: key, Value: v})
}

// Len returns the number of staged mutations.
func (b *Batch) Len() int { return len(b.mutations) }

// Mutations returns the staged mutations in order.
func (b *Batch) Mutations() []Mutation { return b.mutations }

// Reset drops every staged mutation.
func (b *Batch) Reset() {
	b.mutations = nil
}

// ApplyTo replays the batch onto m and reports the resulting changes.
// Later mutations of the same key win.
func (b *Batch) ApplyTo(m map[string]any) []Event {
	now := time.Now().Unix()
	var events []Event
	for _, mu := range b.mutations {
		old, existed := m[mu.Key]
		if mu.Remove {
			if existed {
				delete(m, mu.Key)
				events = append(events, Event{Type: EventDelete, Key: mu.Key, Timestamp: now})
			}
			continue
		}
		m[mu.Key] = mu.Value
		switch {
		case !existed:
			events = append(events, Event{Type: EventCreate, Key: mu.Key, Timestamp: now})
		case old != mu.Value:
			events = append(events, Event{Type: EventModify, Key: mu.Key, Timestamp: now})
		}
	}
	return events
}

// Diff compares two snapshots of a namespace.
func Diff(before, after map[string]any) []Event {
	now := time.Now().Unix()
	var events []Event
	for k, v := range after {
		old, ok := before[k]
		switch {
		case !ok:
			events = append(events, Event{Type: EventCreate, Key: k, Timestamp: now})
		case old != v:
			events = append(events, Event{Type: EventModify, Key: k, Timestamp: now})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			events = append(events, Event{Type: EventDelete, Key: k, Timestamp: now})
		}
	}
	return events
}

// Native is the set of Go types a store slot can hold.
type Native interface {
	bool | int32 | int64 | float32 | string
}

// Lookup reads key from a snapshot map with the getter semantics of Store.
func Lookup[T Native](m map[string]any, key string, def T) (T, error) {
	v, ok := m[key]
	if !ok {
		return def, nil
	}
	t, ok := v.(T)
	if !ok {
		return def, fmt.Errorf("%w: %q holds %T, want %T", ErrWrongType, key, v, def)
	}
	return t, nil
}

// KindOf returns the primitive kind of a native slot value.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int32:
		return KindInt
	case int64:
		return KindLong
	case float32:
		return KindFloat
	case string:
		return KindString
	}
	return KindUnsupported
}
