// Hindley-Milner style inference over Sable expression trees.
// Inference is best effort: it backs `typeof` and IR type annotation, and
// its errors are reported to the caller rather than aborting evaluation.

package types

import (
	"fmt"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
)

// Env is a type environment. Lookups walk the parent chain.
type Env struct {
	vars   map[string]*Type
	parent *Env
}

// NewEnv creates an environment nested in parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]*Type), parent: parent}
}

func (e *Env) Define(name string, t *Type) {
	e.vars[name] = t
}

func (e *Env) Lookup(name string) (*Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// InferenceEngine holds the substitution built up while inferring.
type InferenceEngine struct {
	nextVar int
	subst   map[int]*Type
}

// NewInferenceEngine creates an engine with an empty substitution.
func NewInferenceEngine() *InferenceEngine {
	return &InferenceEngine{subst: make(map[int]*Type)}
}

// FreshVar returns a type variable not used before by this engine.
func (ie *InferenceEngine) FreshVar() *Type {
	v := NewVar(ie.nextVar)
	ie.nextVar++
	return v
}

// Reset discards the substitution so the engine can be reused.
func (ie *InferenceEngine) Reset() {
	ie.subst = make(map[int]*Type)
}

// Apply resolves every bound type variable in t.
func (ie *InferenceEngine) Apply(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindVar:
		if bound, ok := ie.subst[t.ID]; ok {
			return ie.Apply(bound)
		}
		return t
	case KindList:
		return NewList(ie.Apply(t.Elem))
	case KindTuple:
		return NewTuple(ie.applyAll(t.Elems)...)
	case KindFunction:
		return NewFunction(ie.applyAll(t.Elems), ie.Apply(t.Result))
	case KindRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: ie.Apply(f.Type)}
		}
		return NewRecord(fields...)
	default:
		return t
	}
}

func (ie *InferenceEngine) applyAll(ts []*Type) []*Type {
	out := make([]*Type, len(ts))
	for i, t := range ts {
		out[i] = ie.Apply(t)
	}
	return out
}

// Unify makes a and b equal by extending the substitution. Unknown acts as a
// wildcard and never binds anything.
func (ie *InferenceEngine) Unify(a, b *Type) error {
	a, b = ie.Apply(a), ie.Apply(b)

	if a.Kind == KindUnknown || b.Kind == KindUnknown {
		return nil
	}
	if a.Kind == KindVar {
		return ie.bind(a, b)
	}
	if b.Kind == KindVar {
		return ie.bind(b, a)
	}
	if a.Kind != b.Kind {
		return mismatch(a, b)
	}

	switch a.Kind {
	case KindList:
		return ie.Unify(a.Elem, b.Elem)
	case KindTuple:
		if len(a.Elems) != len(b.Elems) {
			return mismatch(a, b)
		}
		return ie.unifyAll(a.Elems, b.Elems)
	case KindFunction:
		if len(a.Elems) != len(b.Elems) {
			return mismatch(a, b)
		}
		if err := ie.unifyAll(a.Elems, b.Elems); err != nil {
			return err
		}
		return ie.Unify(a.Result, b.Result)
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return mismatch(a, b)
		}
		for _, f := range a.Fields {
			other, ok := b.Field(f.Name)
			if !ok {
				return mismatch(a, b)
			}
			if err := ie.Unify(f.Type, other); err != nil {
				return err
			}
		}
		return nil
	case KindStruct, KindQuantity:
		if a.Name != b.Name {
			return mismatch(a, b)
		}
		return nil
	default:
		return nil
	}
}

func (ie *InferenceEngine) unifyAll(as, bs []*Type) error {
	for i := range as {
		if err := ie.Unify(as[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (ie *InferenceEngine) bind(v, t *Type) error {
	if t.Kind == KindVar && t.ID == v.ID {
		return nil
	}
	if ie.occurs(v.ID, t) {
		return serrors.TypeMismatch(v.String(), fmt.Sprintf("infinite type %s", t), position.Span{})
	}
	ie.subst[v.ID] = t
	return nil
}

func (ie *InferenceEngine) occurs(id int, t *Type) bool {
	t = ie.Apply(t)
	switch t.Kind {
	case KindVar:
		return t.ID == id
	case KindList:
		return ie.occurs(id, t.Elem)
	case KindTuple:
		for _, e := range t.Elems {
			if ie.occurs(id, e) {
				return true
			}
		}
	case KindFunction:
		for _, e := range t.Elems {
			if ie.occurs(id, e) {
				return true
			}
		}
		return ie.occurs(id, t.Result)
	case KindRecord:
		for _, f := range t.Fields {
			if ie.occurs(id, f.Type) {
				return true
			}
		}
	}
	return false
}

func mismatch(expected, actual *Type) error {
	return serrors.TypeMismatch(expected.String(), actual.String(), position.Span{})
}
