package typegen

import (
	"slices"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/errs"
)

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	done
)

// SortTypes orders types so that each one follows every type it references.
// Array types are moved behind all other types afterwards, keeping their
// relative order, because an array declaration always trails its base.
//
// A type that reaches itself through attributes aborts the sort with an
// ErrKindCircularDependency error naming it. A reference to the type's own
// array wrapper is not a dependency.
func SortTypes(r *Registry, types []catalog.Type) ([]catalog.Type, error) {
	index := make(map[int64]catalog.Type, len(types))
	for _, t := range types {
		index[t.ID] = t
	}

	deps := make(map[int64][]int64, len(types))
	for _, t := range types {
		deps[t.ID] = dependencies(r, t, index)
	}

	state := make(map[int64]visitState, len(types))
	sorted := make([]catalog.Type, 0, len(types))

	var visit func(id int64) error
	visit = func(id int64) error {
		switch state[id] {
		case done:
			return nil
		case onStack:
			t := index[id]
			return errs.Newf(errs.ErrKindCircularDependency,
				"circular dependency detected involving type %q", t.Schema+"."+t.Name)
		}

		state[id] = onStack
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		sorted = append(sorted, index[id])
		return nil
	}

	for _, t := range types {
		if err := visit(t.ID); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(sorted, func(a, b catalog.Type) int {
		switch {
		case a.IsArray() == b.IsArray():
			return 0
		case a.IsArray():
			return 1
		default:
			return -1
		}
	})
	return sorted, nil
}

// dependencies lists the ids t must follow, restricted to the sorted set.
func dependencies(r *Registry, t catalog.Type, index map[int64]catalog.Type) []int64 {
	var out []int64
	add := func(id int64) {
		if _, ok := index[id]; ok && id != t.ID && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	if base, ok := r.baseOf(t); ok {
		add(base.ID)
	}
	for _, a := range t.Attributes {
		dep, ok := r.Lookup(a.TypeID)
		if !ok {
			continue
		}
		if dep.IsArray() {
			base, ok := r.baseOf(dep)
			if ok && base.ID == t.ID {
				// t holds an array of itself.
				continue
			}
			if ok {
				add(base.ID)
			}
		}
		add(dep.ID)
	}
	return out
}
