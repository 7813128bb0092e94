// Package units is the unit-of-measure registry consulted during
// evaluation. Base units define a dimension; derived units carry a scale
// relative to the base of their dimension.
package units

import (
	"fmt"
	"sort"
)

// Unit is a registered unit of measure.
type Unit struct {
	Name      string
	Dimension string
	Scale     float64 // size of one Name expressed in the dimension's base unit
}

func (u Unit) String() string {
	if u.Scale == 1 {
		return fmt.Sprintf("%s [%s]", u.Name, u.Dimension)
	}
	return fmt.Sprintf("%s [%s x%g]", u.Name, u.Dimension, u.Scale)
}

// Registry maps unit names to units. The zero value is not usable; create
// one with NewRegistry.
type Registry struct {
	units map[string]Unit
}

func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// DefineBase registers name as the base unit of a new dimension of the same
// name. Redefining a unit replaces it.
func (r *Registry) DefineBase(name string) Unit {
	u := Unit{Name: name, Dimension: name, Scale: 1}
	r.units[name] = u
	return u
}

// DefineDerived registers name as scale multiples of base. base may itself
// be derived; the new unit's scale is expressed against the dimension's
// base unit.
func (r *Registry) DefineDerived(name, base string, scale float64) (Unit, error) {
	b, ok := r.units[base]
	if !ok {
		return Unit{}, fmt.Errorf("unknown base unit '%s'", base)
	}
	if scale == 0 {
		return Unit{}, fmt.Errorf("unit '%s' cannot have a zero scale", name)
	}
	u := Unit{Name: name, Dimension: b.Dimension, Scale: b.Scale * scale}
	r.units[name] = u
	return u, nil
}

func (r *Registry) Lookup(name string) (Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Convert expresses value, measured in from, in the unit to.
func (r *Registry) Convert(value float64, from, to string) (float64, error) {
	f, ok := r.units[from]
	if !ok {
		return 0, fmt.Errorf("unknown unit '%s'", from)
	}
	t, ok := r.units[to]
	if !ok {
		return 0, fmt.Errorf("unknown unit '%s'", to)
	}
	return ConvertUnits(value, f, t)
}

// ConvertUnits converts between two units of the same dimension.
func ConvertUnits(value float64, from, to Unit) (float64, error) {
	if from.Dimension != to.Dimension {
		return 0, fmt.Errorf("cannot convert %s to %s: dimension mismatch", from.Name, to.Name)
	}
	return value * from.Scale / to.Scale, nil
}

// Names returns the registered unit names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
