package core

import "context"

// Store defines the contract of the flat key-value store a namespace lives in.
// Adhering to this interface keeps the dispatcher independent of the
// underlying storage mechanism (memory, files, SQL).
//
// Getters return def when the key is absent. They return ErrWrongType when
// the key holds a different primitive type.
type Store interface {
	Contains(ctx context.Context, key string) (bool, error)

	GetBool(ctx context.Context, key string, def bool) (bool, error)
	GetInt(ctx context.Context, key string, def int32) (int32, error)
	GetLong(ctx context.Context, key string, def int64) (int64, error)
	GetFloat(ctx context.Context, key string, def float32) (float32, error)
	GetString(ctx context.Context, key string, def string) (string, error)

	// All returns a snapshot of every stored key and its native value.
	All(ctx context.Context) (map[string]any, error)

	// Edit starts a batch of mutations. Nothing is visible until Commit or Apply.
	Edit() Editor
}

// Editor stages mutations for a single atomic write.
type Editor interface {
	PutBool(key string, v bool)
	PutInt(key string, v int32)
	PutLong(key string, v int64)
	PutFloat(key string, v float32)
	PutString(key string, v string)
	Remove(key string)

	// Commit applies all staged mutations atomically and blocks until they are
	// durable. A subsequent read of the same key observes the write.
	Commit(ctx context.Context) error

	// Apply schedules the staged mutations without waiting for the result.
	Apply()
}

// Watchable is implemented by stores that can report changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
