package lang

import (
	"iter"
	"slices"
)

// Enumerate yields the elements v stands for when iterated.
//
// An undefined value yields nothing. A string yields itself once; strings are
// never split into characters. Lists yield their elements in order, maps
// yield a [Pair] entry per key in sorted key order, and a [Sequence] yields
// whatever it yields. Any other value yields itself once.
func Enumerate(v Value) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		switch v.kind {
		case KindUndefined:
			return

		case KindList:
			for _, e := range v.data.([]Value) {
				if !yield(e) {
					return
				}
			}

			return

		case KindMap:
			m := v.data.(map[string]Value)
			for _, k := range sortedKeys(m) {
				if !yield(External(Pair{Key: k, Value: m[k]})) {
					return
				}
			}

			return

		case KindExternal:
			if seq, ok := v.data.(Sequence); ok {
				for e := range seq.All() {
					if !yield(e) {
						return
					}
				}

				return
			}
		}

		yield(v)
	}
}

// Count returns the number of elements [Enumerate] yields for v. A
// [Sequence] without a [Counter] is consumed once to count it.
func Count(v Value) int {
	switch v.kind {
	case KindUndefined:
		return 0

	case KindList:
		return len(v.data.([]Value))

	case KindMap:
		return len(v.data.(map[string]Value))

	case KindExternal:
		if c, ok := v.data.(Counter); ok {
			return c.Len()
		}

		if seq, ok := v.data.(Sequence); ok {
			n := 0
			for range seq.All() {
				n++
			}

			return n
		}
	}

	return 1
}

// collectOnce returns v with a [Sequence] that cannot count itself gathered
// into a list, so counting and enumerating it run the sequence only once.
// Sequences backed by a single-use iterator are empty on a second run.
func collectOnce(v Value) Value {
	if v.kind != KindExternal {
		return v
	}

	if _, ok := v.data.(Counter); ok {
		return v
	}

	if _, ok := v.data.(Sequence); !ok {
		return v
	}

	return List(slices.Collect(Enumerate(v))...)
}
