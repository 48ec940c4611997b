// Package eprefs is the composition root of the eprefs library.
//
// It stores primitives, primitive arrays and structured records in a flat
// key-value store that only understands bool, int32, int64, float32 and
// string slots. Arrays and lists are fanned out into a length under the key
// plus one sub-key per element ("scores", "scores0", "scores1", ...).
// Records are encoded to a tagged string by a codec.
//
// Stores:
//
//   - **fs** (default): one JSON or YAML file per namespace, atomic writes, optional reload on external edits.
//   - **sqlite**: one table shared by every namespace of a database file.
//   - **memory**: an in-process map, for tests and ephemeral state.
//
// Usage:
//
//	p, err := eprefs.Open("settings",
//		eprefs.WithAdapter("sqlite"),
//		eprefs.WithPath("app.db"),
//	)
//
//	err = p.Save(ctx, "scores", []int32{3, 1, 2})
//	v, ok, err := p.Load(ctx, "scores", eprefs.ArrayOf(eprefs.Int))
//
//	// Or with static types:
//	scores := eprefs.IntArray(p)
//	got, ok, err := scores.Load(ctx, "scores")
package eprefs
