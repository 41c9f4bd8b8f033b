package rules

import (
	"github.com/okian/railshot/internal/domain/model"
)

// Field selects the descriptor value a predicate reads.
type Field int

// Descriptor fields. FieldCue is the raw measurement, before the wrap
// convention.
const (
	FieldRails Field = iota
	FieldCue
	FieldEffectiveCue
	FieldWhiteBall
	FieldAim
	FieldPath
)

func (f Field) value(s model.Shot) float64 {
	switch f {
	case FieldRails:
		return float64(s.Rails)
	case FieldCue:
		return s.Cue
	case FieldEffectiveCue:
		return s.EffectiveCue()
	case FieldWhiteBall:
		return s.WhiteBall
	case FieldAim:
		return s.Aim.Numeric()
	case FieldPath:
		return s.Path
	default:
		return 0
	}
}

// Op is a comparison operator.
type Op int

// Comparison operators.
const (
	Eq Op = iota
	Lt
	Le
	Gt
	Ge
)

// Predicate is a closed set of conditions over a shot. Implementations live
// in this package only.
type Predicate interface {
	holds(s model.Shot) bool
}

// Compare holds when Field Op Value.
type Compare struct {
	Field Field
	Op    Op
	Value float64
}

func (c Compare) holds(s model.Shot) bool {
	v := c.Field.value(s)
	switch c.Op {
	case Eq:
		return v == c.Value
	case Lt:
		return v < c.Value
	case Le:
		return v <= c.Value
	case Gt:
		return v > c.Value
	case Ge:
		return v >= c.Value
	default:
		return false
	}
}

// Range holds when Min <= Field <= Max.
type Range struct {
	Field Field
	Min   float64
	Max   float64
}

func (r Range) holds(s model.Shot) bool {
	v := r.Field.value(s)
	return v >= r.Min && v <= r.Max
}

// All holds when every member holds. An empty All holds.
type All []Predicate

func (a All) holds(s model.Shot) bool {
	for _, p := range a {
		if p == nil || !p.holds(s) {
			return false
		}
	}
	return true
}

// Builtin returns the predicates every engine starts with, keyed by the
// condition strings used in knowledge base rules.
func Builtin() map[string]Predicate {
	return map[string]Predicate{
		"rails == 1":                       Compare{Field: FieldRails, Op: Eq, Value: 1},
		"rails == 2":                       Compare{Field: FieldRails, Op: Eq, Value: 2},
		"rails == 3":                       Compare{Field: FieldRails, Op: Eq, Value: 3},
		"rails == 4":                       Compare{Field: FieldRails, Op: Eq, Value: 4},
		"rails >= 3":                       Compare{Field: FieldRails, Op: Ge, Value: 3},
		"rails <= 2":                       Compare{Field: FieldRails, Op: Le, Value: 2},
		"cueValue < 1":                     Compare{Field: FieldCue, Op: Lt, Value: 1},
		"cueValue < 1.5":                   Compare{Field: FieldCue, Op: Lt, Value: 1.5},
		"cueValue > 3":                     Compare{Field: FieldCue, Op: Gt, Value: 3},
		"cueValue > 3.5":                   Compare{Field: FieldCue, Op: Gt, Value: 3.5},
		"cueValue >= 1.5 && cueValue <= 3": Range{Field: FieldCue, Min: 1.5, Max: 3},
		"cueValue >= 2 && cueValue <= 3":   Range{Field: FieldCue, Min: 2, Max: 3},
	}
}
