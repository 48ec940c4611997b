package prefs

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/aretw0/eprefs/pkg/core"
)

// subKey derives the key of element i. The base key is not escaped, so a
// scalar "a0" aliases element 0 of a sequence stored at "a".
func subKey(base string, i int) string {
	return base + strconv.Itoa(i)
}

func (p *Prefs) stageSequence(ctx context.Context, ed core.Editor, key string, value any) error {
	elems := elements(value)
	if len(elems) > math.MaxInt32 {
		return fmt.Errorf("%w: %q: sequence of %d elements exceeds the int length slot", core.ErrUnsupportedType, key, len(elems))
	}

	ed.PutInt(key, int32(len(elems)))
	for i, elem := range elems {
		if err := p.stage(ctx, ed, subKey(key, i), elem, true); err != nil {
			return err
		}
	}
	return nil
}

// loadSequence reads the length at key, then every present element in index
// order. Missing elements are skipped.
func (p *Prefs) loadSequence(ctx context.Context, key string, t core.Type) (any, bool, error) {
	n, err := p.store.GetInt(ctx, key, 0)
	if err != nil {
		return nil, false, err
	}

	values := make([]any, 0, max(n, 0))
	for i := range int(n) {
		v, ok, err := p.load(ctx, subKey(key, i), *t.Elem)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		values = append(values, v)
	}

	if t.Kind == core.KindArray {
		return typedSlice(t.Elem.Kind, values), true, nil
	}
	return values, true, nil
}

func (p *Prefs) deleteSequence(ctx context.Context, ed core.Editor, key string, t core.Type) error {
	n, err := p.store.GetInt(ctx, key, 0)
	if err != nil {
		return err
	}
	for i := range int(n) {
		if err := p.stageDelete(ctx, ed, subKey(key, i), *t.Elem); err != nil {
			return err
		}
	}
	ed.Remove(key)
	return nil
}
