package fs

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/eprefs/pkg/core"
)

// Serializer defines how a namespace file is read and written.
// JSON and YAML lose the distinction between int widths and floats, so every
// value is stored next to its slot type:
//
//	{"count": {"type": "int", "value": 3}}
type Serializer interface {
	// Parse reads a namespace snapshot from r.
	Parse(r io.Reader) (map[string]any, error)
	// Serialize converts a namespace snapshot to bytes.
	Serialize(values map[string]any) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers, keyed by extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

type entry struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
	// Encoding is set when Value is not stored verbatim. Only "base64" is
	// defined, for strings that are not valid UTF-8.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

const encodingBase64 = "base64"

func toEntries(values map[string]any) (map[string]entry, error) {
	entries := make(map[string]entry, len(values))
	for k, v := range values {
		kind := core.KindOf(v)
		if !kind.Primitive() {
			return nil, fmt.Errorf("%w: %q holds %T", core.ErrUnsupportedType, k, v)
		}
		entries[k] = entry{Type: kind.String(), Value: v}
	}
	return entries, nil
}

func fromEntries(entries map[string]entry) (map[string]any, error) {
	values := make(map[string]any, len(entries))
	for k, e := range entries {
		raw, err := e.raw()
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", k, err)
		}
		v, err := decodeValue(e.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", k, err)
		}
		values[k] = v
	}
	return values, nil
}

func (e entry) raw() (any, error) {
	switch e.Encoding {
	case "":
		return e.Value, nil
	case encodingBase64:
		s, ok := e.Value.(string)
		if !ok || e.Type != core.KindString.String() {
			return nil, fmt.Errorf("%w: base64 %s entry holds %T", core.ErrWrongType, e.Type, e.Value)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrWrongType, err)
		}
		return string(b), nil
	}
	return nil, fmt.Errorf("%w: encoding %q", core.ErrUnsupportedType, e.Encoding)
}

// jsonSafe rewrites the values JSON cannot hold: non-finite floats become
// their strconv text and invalid UTF-8 strings become base64.
func jsonSafe(entries map[string]entry) {
	for k, e := range entries {
		switch v := e.Value.(type) {
		case float32:
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				e.Value = strconv.FormatFloat(f, 'g', -1, 32)
			}
		case string:
			if !utf8.ValidString(v) {
				e.Value = base64.StdEncoding.EncodeToString([]byte(v))
				e.Encoding = encodingBase64
			}
		}
		entries[k] = e
	}
}

// decodeValue restores the native slot type from a generically decoded value.
func decodeValue(typ string, raw any) (any, error) {
	switch typ {
	case "bool":
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case "string":
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case "int":
		if s, ok := numeral(raw); ok {
			n, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, err
			}
			return int32(n), nil
		}
	case "long":
		if s, ok := numeral(raw); ok {
			return strconv.ParseInt(s, 10, 64)
		}
	case "float":
		s, ok := numeral(raw)
		if !ok {
			s, ok = raw.(string)
		}
		if ok {
			f, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, err
			}
			return float32(f), nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedType, typ)
	}
	return nil, fmt.Errorf("%w: %T is not a %s", core.ErrWrongType, raw, typ)
}

// numeral renders a decoded number as text so it can be parsed at the target
// width without going through float64.
func numeral(raw any) (string, bool) {
	switch v := raw.(type) {
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return "", false
}

// --- JSON Serializer ---

// JSONSerializer handles namespace files in JSON.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]any), nil
	}

	var entries map[string]entry
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return fromEntries(entries)
}

func (s *JSONSerializer) Serialize(values map[string]any) ([]byte, error) {
	entries, err := toEntries(values)
	if err != nil {
		return nil, err
	}
	jsonSafe(entries)
	return json.MarshalIndent(entries, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles namespace files in YAML.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries map[string]entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if entries == nil {
		return make(map[string]any), nil
	}
	return fromEntries(entries)
}

func (s *YAMLSerializer) Serialize(values map[string]any) ([]byte, error) {
	entries, err := toEntries(values)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(entries); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
