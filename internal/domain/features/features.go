// Package features turns a shot descriptor into the fixed-order numeric
// vector consumed by the neural predictor.
package features

import (
	"math"

	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
)

// Size is the length of a feature vector.
const Size = 10

// Vector is a feature vector in the order listed by Names.
type Vector [Size]float64

// Names labels each position of a Vector.
var Names = [Size]string{ //nolint:gochecknoglobals // fixed lookup table
	"rails",
	"cue",
	"path",
	"white_ball",
	"angle_complexity",
	"power_to_distance",
	"notes",
	"rail_distance",
	"spin_requirement",
	"risk",
}

// Slice returns the vector as a fresh slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Extractor computes feature vectors. The notes feature reads the keyword
// weights of its knowledge base.
type Extractor struct {
	kb *knowledge.Base
}

// NewExtractor returns an extractor over kb, or the built-in knowledge base
// when kb is nil.
func NewExtractor(kb *knowledge.Base) Extractor {
	if kb == nil {
		kb = knowledge.Default()
	}
	return Extractor{kb: kb}
}

// Extract computes the feature vector of s with the built-in keyword table.
func Extract(s model.Shot) Vector {
	return NewExtractor(nil).Extract(s)
}

// Extract computes the feature vector of s.
func (e Extractor) Extract(s model.Shot) Vector {
	rails := float64(s.Rails)
	aim := s.Aim.Numeric()
	cue := unwrap(s.Cue)
	distance := math.Abs(aim - s.WhiteBall)

	spin := 0.3
	if s.Rails > 2 {
		spin = 0.7
	}
	overpower := 0.0
	if cue > 3.5 {
		overpower = 0.3
	}

	return Vector{
		rails / 4,
		cue / 10,
		s.Path / 10,
		s.WhiteBall / 8,
		distance / 10,
		s.Cue / (distance + 1),
		e.kb.NoteScore(s.Notes),
		math.Min(rails*0.25, 1),
		spin,
		(rails*0.4 + math.Abs(cue-2.5)*0.2 + overpower) / 3,
	}
}

// unwrap maps the two-digit cue readings above 10 back to their single-digit
// value.
func unwrap(cue float64) float64 {
	if cue > 10 {
		return cue - 10
	}
	return cue
}
