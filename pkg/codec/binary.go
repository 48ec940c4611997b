package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"

	"github.com/aretw0/eprefs/pkg/core"
)

// BinaryTag marks gob+base64 payloads.
const BinaryTag = "b1"

// Binary encodes the full object graph with encoding/gob and stores the bytes
// as base64 text. The stream starts with the Go type name of the record so a
// decode into a different type fails instead of silently matching fields.
type Binary struct{}

// NewBinary creates a new binary codec.
func NewBinary() *Binary {
	return &Binary{}
}

func (c *Binary) Name() string { return "binary" }

func (c *Binary) Tag() string { return BinaryTag }

func (c *Binary) Supports(v any) error {
	if _, ok := v.(core.Serializable); !ok {
		return fmt.Errorf("%w: %T does not implement core.Serializable", core.ErrUnsupportedType, v)
	}
	if !isStruct(v) {
		return fmt.Errorf("%w: %T is not a struct", core.ErrUnsupportedType, v)
	}
	return nil
}

func (c *Binary) Encode(v any) (string, error) {
	if err := c.Supports(v); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(typeName(v)); err != nil {
		return "", fmt.Errorf("%w: failed to write type header: %v", core.ErrCodecFailure, err)
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: failed to encode %T: %v", core.ErrCodecFailure, v, err)
	}

	return seal(BinaryTag, base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func (c *Binary) Decode(text string, t core.Type) (any, error) {
	target, err := construct(t)
	if err != nil {
		return nil, err
	}

	payload, err := unseal(BinaryTag, text)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", core.ErrCodecFailure, err)
	}

	dec := gob.NewDecoder(bytes.NewReader(raw))
	var name string
	if err := dec.Decode(&name); err != nil {
		return nil, fmt.Errorf("%w: failed to read type header: %v", core.ErrCodecFailure, err)
	}
	if want := typeName(target); name != want {
		return nil, fmt.Errorf("%w: stored %s, requested %s", core.ErrCodecFailure, name, want)
	}
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", core.ErrCodecFailure, name, err)
	}
	return target, nil
}
