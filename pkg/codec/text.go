package codec

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/eprefs/pkg/core"
)

// TextTag marks JSON payloads.
const TextTag = "j1"

// Text encodes records as JSON documents.
type Text struct{}

// NewText creates a new text codec.
func NewText() *Text {
	return &Text{}
}

func (c *Text) Name() string { return "text" }

func (c *Text) Tag() string { return TextTag }

func (c *Text) Supports(v any) error {
	if _, ok := v.(json.Marshaler); ok {
		return nil
	}
	if !isStruct(v) {
		return fmt.Errorf("%w: %T is not a struct", core.ErrUnsupportedType, v)
	}
	return nil
}

func (c *Text) Encode(v any) (string, error) {
	if err := c.Supports(v); err != nil {
		return "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal %T: %v", core.ErrCodecFailure, v, err)
	}
	return seal(TextTag, string(data)), nil
}

func (c *Text) Decode(text string, t core.Type) (any, error) {
	target, err := construct(t)
	if err != nil {
		return nil, err
	}

	payload, err := unseal(TextTag, text)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return nil, fmt.Errorf("%w: invalid json for %s: %v", core.ErrCodecFailure, t, err)
	}
	return target, nil
}
