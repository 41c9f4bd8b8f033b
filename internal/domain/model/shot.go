// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Measurement ranges accepted by Validate.
const (
	MinRails     = 1
	MaxRails     = 4
	MaxWhiteBall = 8.0
	MaxAim       = 12.0
	MaxCue       = 15.0
	MaxPath      = 12.0

	// CornerPocketLabel is the JSON spelling of the corner-pocket aim sentinel.
	CornerPocketLabel = "corner_pocket"
	// cornerPocketLabelAR is the label used by the original measurement tables.
	cornerPocketLabelAR = "جيب الزاوية"

	// CornerPocketAimEquivalent is the numeric aim used when a formula needs a
	// number for the corner pocket (0.9 of the aim scale).
	CornerPocketAimEquivalent = 10.8

	cueWrapOffset = 10.0
)

// Aim is either a diamond measurement in [0, 12] or the corner-pocket sentinel.
type Aim struct {
	Value  float64
	Corner bool
}

// AimAt returns a numeric aim measurement.
func AimAt(v float64) Aim { return Aim{Value: v} }

// CornerPocket returns the corner-pocket aim sentinel.
func CornerPocket() Aim { return Aim{Corner: true} }

// Numeric returns the aim as a number, mapping the corner pocket to its equivalent.
func (a Aim) Numeric() float64 {
	if a.Corner {
		return CornerPocketAimEquivalent
	}
	return a.Value
}

// MarshalJSON encodes the sentinel as a string and everything else as a number.
func (a Aim) MarshalJSON() ([]byte, error) {
	if a.Corner {
		return json.Marshal(CornerPocketLabel)
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON accepts a number, a numeric string or a corner-pocket label.
func (a *Aim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == CornerPocketLabel || s == cornerPocketLabelAR {
			*a = CornerPocket()
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: aim %q is neither a number nor %q", ErrValidation, s, CornerPocketLabel)
		}
		*a = AimAt(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = AimAt(v)
	return nil
}

// Shot is the shot descriptor supplied by the measurement collaborator.
type Shot struct {
	Rails     int     `json:"rails"`
	WhiteBall float64 `json:"white_ball"`
	Aim       Aim     `json:"aim"`
	Cue       float64 `json:"cue"`
	Path      float64 `json:"path"`
	Notes     string  `json:"notes,omitempty"`
	// Contact names the cushion contact point, e.g. "long_3". Optional.
	Contact string `json:"contact,omitempty"`
}

// Validate rejects descriptors with missing or out-of-range fields.
func (s Shot) Validate() error {
	if s.Rails < MinRails || s.Rails > MaxRails {
		return fieldError("rails", "must be between %d and %d, got %d", MinRails, MaxRails, s.Rails)
	}
	if err := checkRange("white_ball", s.WhiteBall, 0, MaxWhiteBall); err != nil {
		return err
	}
	if !s.Aim.Corner {
		if err := checkRange("aim", s.Aim.Value, 0, MaxAim); err != nil {
			return err
		}
	}
	if err := checkRange("cue", s.Cue, 0, MaxCue); err != nil {
		return err
	}
	return checkRange("path", s.Path, 0, MaxPath)
}

// EffectiveCue applies the wrap convention: values in (0,1) mean raw+10 and 0 means 10.
func (s Shot) EffectiveCue() float64 {
	switch {
	case s.Cue == 0:
		return cueWrapOffset
	case s.Cue > 0 && s.Cue < 1:
		return s.Cue + cueWrapOffset
	default:
		return s.Cue
	}
}

// ContactLabel returns the explicit contact label, or the long-rail diamond
// nearest to the white-ball measurement.
func (s Shot) ContactLabel() string {
	if s.Contact != "" {
		return s.Contact
	}
	return "long_" + strconv.Itoa(int(math.Round(s.WhiteBall)))
}

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fieldError(field, "must be a finite number")
	}
	if v < lo || v > hi {
		return fieldError(field, "must be between %g and %g, got %g", lo, hi, v)
	}
	return nil
}

func fieldError(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, fmt.Sprintf(format, args...))
}
