package prefs

import (
	"github.com/aretw0/introspection"
)

// PrefsState exposes internal state for observability.
type PrefsState struct {
	Namespace  string `json:"namespace"`
	Codec      string `json:"codec"`
	CommitMode string `json:"commit_mode"`
	StoreType  string `json:"store_type"`
	Store      any    `json:"store,omitempty"`
}

// State implements introspection.Introspectable.
func (p *Prefs) State() any {
	state := PrefsState{
		Namespace:  p.namespace,
		Codec:      p.codec.Name(),
		CommitMode: p.mode.String(),
		StoreType:  "store",
	}
	if comp, ok := p.store.(introspection.Component); ok {
		state.StoreType = comp.ComponentType()
	}
	if in, ok := p.store.(introspection.Introspectable); ok {
		state.Store = in.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (p *Prefs) ComponentType() string {
	return "prefs"
}

var _ introspection.Introspectable = (*Prefs)(nil)
var _ introspection.Component = (*Prefs)(nil)
