package prefs

import (
	"context"
	"fmt"

	"github.com/aretw0/eprefs/pkg/core"
)

// SafeSave is Save with every failure discarded. A failed save writes nothing.
func (p *Prefs) SafeSave(ctx context.Context, key string, value any, opts ...WriteOption) {
	_ = p.safely("save", key, func() error {
		return p.Save(ctx, key, value, opts...)
	})
}

// SafeLoad is Load with every failure reported as a missing value.
func (p *Prefs) SafeLoad(ctx context.Context, key string, t core.Type) (any, bool) {
	var (
		v  any
		ok bool
	)
	err := p.safely("load", key, func() error {
		var err error
		v, ok, err = p.Load(ctx, key, t)
		return err
	})
	if err != nil {
		return nil, false
	}
	return v, ok
}

// SafeDelete is Delete with every failure discarded.
func (p *Prefs) SafeDelete(ctx context.Context, key string, t core.Type, opts ...WriteOption) {
	_ = p.safely("delete", key, func() error {
		return p.Delete(ctx, key, t, opts...)
	})
}

// safely runs a strict call, turning panics into errors. The error is logged
// and returned so callers decide how to collapse it.
func (p *Prefs) safely(op, key string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s: %v", op, r)
		}
		if err != nil {
			p.logger.Debug("safe call discarded error", "op", op, "key", key, "error", err)
		}
	}()
	return fn()
}
