package model

import "math"

// Point is a table coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CushionContact annotates one bounce of the simulated path.
type CushionContact struct {
	Rail            int     `json:"rail"`
	Point           Point   `json:"point"`
	IncidenceAngle  float64 `json:"incidence_angle"`
	ReflectionAngle float64 `json:"reflection_angle"`
	ResidualSpeed   float64 `json:"residual_speed"`
	SpinRequirement float64 `json:"spin_requirement"`
}

// GeometryResult is the simulated reflection path of a shot.
type GeometryResult struct {
	Start         Point            `json:"start"`
	Target        Point            `json:"target"`
	FirstContact  Point            `json:"first_contact"`
	Path          []Point          `json:"path"`
	Cushions      []CushionContact `json:"cushions"`
	Difficulty    float64          `json:"difficulty"`
	Distance      float64          `json:"distance"`
	EstimatedTime float64          `json:"estimated_time"`
}

// Bounce is one entry of a reflection sequence.
type Bounce struct {
	Number     int     `json:"number"`
	Angle      float64 `json:"angle"`
	Position   Point   `json:"position"`
	EnergyLoss float64 `json:"energy_loss"`
}

// Angles describes the aiming angles of a shot, in degrees.
type Angles struct {
	Base  float64 `json:"base"`
	Cue   float64 `json:"cue"`
	Final float64 `json:"final"`
}

// ValidateReflection rejects reflection inputs outside the rail range or
// holding non-finite numbers.
func ValidateReflection(rails int, angle float64, position Point) error {
	if rails < MinRails || rails > MaxRails {
		return fieldError("rails", "must be between %d and %d, got %d", MinRails, MaxRails, rails)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"angle", angle}, {"position.x", position.X}, {"position.y", position.Y}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fieldError(f.name, "must be a finite number")
		}
	}
	return nil
}
