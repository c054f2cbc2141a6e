package lang

import (
	"log/slog"
	"slices"
)

// Scope is a handle to one level of the hierarchical metadata context.
//
// Lookups search the local bindings first, then each ancestor toward the
// root. Writes are always local, so a child never mutates its parent.
//
// All scopes spawned from the same root share one arena of slots owned by a
// single render. A Scope must not be used concurrently; independent renders
// use independent roots.
type Scope struct {
	arena *arena
	index int
	gen   uint32
}

type arena struct {
	slots []slot
	free  []int
}

type slot struct {
	vars     map[string]Value
	registry *registry
	opts     *options
	parent   int
	gen      uint32
	live     bool
}

const noParent = -1

// NewScope returns a fresh root scope seeded with the given bindings.
//
// The options apply to every scope spawned from the root unless a [Template]
// installs its own.
func NewScope(seed map[string]Value, opts ...Option) *Scope {
	a := &arena{}
	s := a.alloc(noParent)
	a.slots[s.index].opts = makeOptions(opts...)

	for name, v := range seed {
		s.Set(name, v)
	}

	return s
}

// ScopeOf returns a fresh root scope seeded from native Go data, such as a
// decoded metadata document.
func ScopeOf(seed map[string]any, opts ...Option) *Scope {
	s := NewScope(nil, opts...)

	for name, x := range seed {
		s.Set(name, ValueOf(x))
	}

	return s
}

func (a *arena) alloc(parent int) *Scope {
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]

		sl := &a.slots[i]
		sl.gen++
		sl.parent = parent
		sl.live = true

		return &Scope{arena: a, index: i, gen: sl.gen}
	}

	a.slots = append(a.slots, slot{parent: parent, live: true})

	return &Scope{arena: a, index: len(a.slots) - 1}
}

// slot returns the slot addressed by s, panicking if s has been released.
func (s *Scope) slot() *slot {
	sl := &s.arena.slots[s.index]
	if !sl.live || sl.gen != s.gen {
		panic(ErrScopeReleased.With(slog.Int("slot", s.index)))
	}

	return sl
}

// chain yields s's slot followed by each ancestor's slot.
func (s *Scope) chain(yield func(*slot) bool) {
	for sl := s.slot(); ; {
		if !yield(sl) || sl.parent == noParent {
			return
		}

		sl = &s.arena.slots[sl.parent]
	}
}

// Lookup returns the innermost binding for name.
// The second result is false when no scope in the chain binds name.
func (s *Scope) Lookup(name string) (Value, bool) {
	for sl := range s.chain {
		if v, ok := sl.vars[name]; ok {
			return v, true
		}
	}

	return Undefined(), false
}

// Set binds name to v in this scope only. Binding an undefined value
// removes the local binding.
func (s *Scope) Set(name string, v Value) {
	sl := s.slot()

	if !v.IsDefined() {
		delete(sl.vars, name)

		return
	}

	if sl.vars == nil {
		sl.vars = make(map[string]Value)
	}

	sl.vars[name] = v
}

// SetValue binds name to [ValueOf](x) in this scope only.
func (s *Scope) SetValue(name string, x any) { s.Set(name, ValueOf(x)) }

// Spawn returns a new child scope whose parent is s.
func (s *Scope) Spawn() *Scope {
	s.slot()

	return s.arena.alloc(s.index)
}

// Release destroys s. Its bindings are discarded and any later use of the
// handle panics. Releasing a scope twice is a no-op.
func (s *Scope) Release() {
	sl := &s.arena.slots[s.index]
	if !sl.live || sl.gen != s.gen {
		return
	}

	clear(sl.vars)
	sl.registry = nil
	sl.opts = nil
	sl.live = false
	s.arena.free = append(s.arena.free, s.index)
}

// Released reports whether s has been released.
func (s *Scope) Released() bool {
	sl := &s.arena.slots[s.index]

	return !sl.live || sl.gen != s.gen
}

// Names returns every name visible from s, sorted.
func (s *Scope) Names() []string {
	seen := make(map[string]struct{})

	for sl := range s.chain {
		for name := range sl.vars {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Bindings returns every visible binding with inner scopes shadowing outer.
func (s *Scope) Bindings() map[string]Value {
	out := make(map[string]Value)

	for sl := range s.chain {
		for name, v := range sl.vars {
			if _, ok := out[name]; !ok {
				out[name] = v
			}
		}
	}

	return out
}

func (s *Scope) options() *options {
	for sl := range s.chain {
		if sl.opts != nil {
			return sl.opts
		}
	}

	return makeOptions()
}

func (s *Scope) registry() *registry {
	for sl := range s.chain {
		if sl.registry != nil {
			return sl.registry
		}
	}

	return nil
}

// install attaches a registry and options to this scope level.
func (s *Scope) install(reg *registry, opts *options) {
	sl := s.slot()
	sl.registry = reg
	sl.opts = opts
}
