package value

import "unique"

type name = unique.Handle[string]

// scope is one level of the environment. A shared scope is reachable from
// more than one Environment and is copied before its first write.
type scope struct {
	vars   map[name]Value
	shared bool
}

// Environment is a stack of lexical scopes, innermost last.
//
// Clone is O(depth): it marks every scope shared instead of copying the
// maps, and whichever environment writes to a shared scope first copies it.
// A clone therefore behaves as a deep copy of the scope chain.
type Environment struct {
	scopes []*scope
}

// NewEnvironment returns an environment with one empty root scope.
func NewEnvironment() *Environment {
	return &Environment{scopes: []*scope{{vars: make(map[name]Value)}}}
}

// Define binds n in the innermost scope, shadowing outer bindings.
func (e *Environment) Define(n string, v Value) {
	s := e.writable(len(e.scopes) - 1)
	s.vars[unique.Make(n)] = v
}

// Get searches the scopes from innermost to outermost.
func (e *Environment) Get(n string) (Value, bool) {
	key := unique.Make(n)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set replaces the innermost existing binding of n. It reports false when n
// is not bound anywhere.
func (e *Environment) Set(n string, v Value) bool {
	key := unique.Make(n)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i].vars[key]; ok {
			e.writable(i).vars[key] = v
			return true
		}
	}
	return false
}

func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, &scope{vars: make(map[name]Value)})
}

// PopScope drops the innermost scope. The root scope is never popped.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes[len(e.scopes)-1] = nil
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Depth is the number of scopes, root included.
func (e *Environment) Depth() int { return len(e.scopes) }

// Clone snapshots the environment for closure capture.
func (e *Environment) Clone() *Environment {
	for _, s := range e.scopes {
		s.shared = true
	}
	return &Environment{scopes: append([]*scope(nil), e.scopes...)}
}

// Bindings returns every visible binding; inner scopes win.
func (e *Environment) Bindings() map[string]Value {
	out := make(map[string]Value)
	for _, s := range e.scopes {
		for k, v := range s.vars {
			out[k.Value()] = v
		}
	}
	return out
}

func (e *Environment) writable(i int) *scope {
	s := e.scopes[i]
	if !s.shared {
		return s
	}
	vars := make(map[name]Value, len(s.vars))
	for k, v := range s.vars {
		vars[k] = v
	}
	copied := &scope{vars: vars}
	e.scopes[i] = copied
	return copied
}
