package core

import "errors"

// Common errors.
var (
	// ErrUnsupportedType means the value or requested type matches no storage shape.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrCodecFailure means a structured record could not be encoded or decoded.
	ErrCodecFailure = errors.New("codec failure")
	// ErrWrongType means the stored slot holds a different primitive type than requested.
	ErrWrongType = errors.New("stored value has a different type")
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("key cannot be empty")
	// ErrClosed is returned by stores after Close.
	ErrClosed = errors.New("store is closed")
)
