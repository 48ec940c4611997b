package prefs

import (
	"context"
	"fmt"

	"github.com/aretw0/eprefs/pkg/core"
)

// Save stores value under key. Every write of the call, including the
// elements of a sequence, is staged in one editor and committed once; if any
// part fails nothing is written.
func (p *Prefs) Save(ctx context.Context, key string, value any, opts ...WriteOption) error {
	if key == "" {
		return core.ErrInvalidKey
	}

	ed := p.store.Edit()
	if err := p.stage(ctx, ed, key, value, false); err != nil {
		return err
	}
	return p.finish(ctx, ed, opts)
}

// stage writes value into ed. nested is true for sequence elements, which may
// not be sequences themselves.
func (p *Prefs) stage(ctx context.Context, ed core.Editor, key string, value any, nested bool) error {
	switch kind := p.classify(value); kind {
	case core.KindBool:
		ed.PutBool(key, value.(bool))
	case core.KindInt:
		switch v := value.(type) {
		case int32:
			ed.PutInt(key, v)
		case int:
			n, err := toInt32(key, v)
			if err != nil {
				return err
			}
			ed.PutInt(key, n)
		}
	case core.KindLong:
		ed.PutLong(key, value.(int64))
	case core.KindFloat:
		ed.PutFloat(key, value.(float32))
	case core.KindString:
		ed.PutString(key, value.(string))
	case core.KindArray, core.KindList:
		if nested {
			return fmt.Errorf("%w: %q: nested sequence %T", core.ErrUnsupportedType, key, value)
		}
		return p.stageSequence(ctx, ed, key, value)
	case core.KindRecord:
		text, err := p.codec.Encode(value)
		if err != nil {
			p.logger.Warn("failed to encode record", "key", key, "type", fmt.Sprintf("%T", value), "codec", p.codec.Name(), "error", err)
			return err
		}
		ed.PutString(key, text)
	default:
		return fmt.Errorf("%w: %q: %T", core.ErrUnsupportedType, key, value)
	}
	return nil
}

// Load reads key as type t. A missing key yields (nil, false, nil).
//
// Primitive kinds return bool, int32, int64, float32 or string. Arrays return
// the matching typed slice. Records return the pointer built by t.New. Lists
// return []any of decoded elements.
func (p *Prefs) Load(ctx context.Context, key string, t core.Type) (any, bool, error) {
	if key == "" {
		return nil, false, core.ErrInvalidKey
	}
	if err := t.Validate(); err != nil {
		return nil, false, err
	}
	return p.load(ctx, key, t)
}

func (p *Prefs) load(ctx context.Context, key string, t core.Type) (any, bool, error) {
	ok, err := p.store.Contains(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var v any
	switch t.Kind {
	case core.KindBool:
		v, err = p.store.GetBool(ctx, key, false)
	case core.KindInt:
		v, err = p.store.GetInt(ctx, key, 0)
	case core.KindLong:
		v, err = p.store.GetLong(ctx, key, 0)
	case core.KindFloat:
		v, err = p.store.GetFloat(ctx, key, 0)
	case core.KindString:
		v, err = p.store.GetString(ctx, key, "")
	case core.KindArray, core.KindList:
		return p.loadSequence(ctx, key, t)
	case core.KindRecord:
		return p.loadRecord(ctx, key, t)
	default:
		return nil, false, fmt.Errorf("%w: %q: %s", core.ErrUnsupportedType, key, t)
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (p *Prefs) loadRecord(ctx context.Context, key string, t core.Type) (any, bool, error) {
	text, err := p.store.GetString(ctx, key, "")
	if err != nil {
		return nil, false, err
	}
	v, err := p.codec.Decode(text, t)
	if err != nil {
		p.logger.Warn("failed to decode record", "key", key, "type", t.String(), "codec", p.codec.Name(), "error", err)
		return nil, false, err
	}
	return v, true, nil
}

// Delete removes key as type t. Sequences remove their indexed sub-keys too.
// Deleting a missing key is a no-op.
func (p *Prefs) Delete(ctx context.Context, key string, t core.Type, opts ...WriteOption) error {
	if key == "" {
		return core.ErrInvalidKey
	}
	if err := t.Validate(); err != nil {
		return err
	}

	ok, err := p.store.Contains(ctx, key)
	if err != nil || !ok {
		return err
	}

	ed := p.store.Edit()
	if err := p.stageDelete(ctx, ed, key, t); err != nil {
		return err
	}
	return p.finish(ctx, ed, opts)
}

func (p *Prefs) stageDelete(ctx context.Context, ed core.Editor, key string, t core.Type) error {
	switch {
	case t.Kind.Primitive(), t.Kind == core.KindRecord:
		ed.Remove(key)
		return nil
	case t.Kind.Sequence():
		return p.deleteSequence(ctx, ed, key, t)
	}
	return fmt.Errorf("%w: %q: %s", core.ErrUnsupportedType, key, t)
}
