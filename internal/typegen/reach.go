package typegen

import "github.com/koustreak/pgmeta/internal/catalog"

// RequiredTypes returns the types that must be declared to spell every
// given column and function signature, in registry order.
//
// The closure runs over an explicit worklist with a visited set, so cyclic
// composites terminate here and are reported later by SortTypes.
func RequiredTypes(r *Registry, columns []catalog.Column, functions []catalog.Function) []catalog.Type {
	var work []int64
	push := func(t catalog.Type, ok bool) {
		if ok {
			work = append(work, t.ID)
		}
	}

	for _, c := range columns {
		schema := r.columnSchema(c)
		push(r.LookupName(c.Format, schema))
		if c.IsArray() {
			push(r.LookupName(c.Format[len(catalog.ArrayPrefix):], schema))
		}
	}
	for _, f := range functions {
		for _, a := range f.Args {
			work = append(work, a.TypeID)
		}
		work = append(work, f.ReturnTypeID)
	}

	visited := make(map[int64]bool)
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[id] {
			continue
		}
		t, ok := r.Lookup(id)
		if !ok {
			continue
		}
		visited[id] = true

		for _, a := range t.Attributes {
			work = append(work, a.TypeID)
		}
		if t.IsArray() {
			push(r.baseOf(t))
		} else {
			push(r.arrayOf(t))
		}
	}

	var out []catalog.Type
	for _, t := range r.Types() {
		if visited[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
