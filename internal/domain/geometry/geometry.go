// Package geometry simulates the cue ball's cushion path: ray casting to the
// table edges, the law of reflection and per-cushion speed attenuation.
package geometry

import (
	"context"
	"math"
	"time"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

// Simulation constants.
const (
	DefaultWidth  = 254.0
	DefaultHeight = 127.0

	// SpeedDecay is the fraction of speed kept after each cushion.
	SpeedDecay = 0.9
	// BallSpeed is the average travel speed used for time estimates, in
	// table units per second.
	BallSpeed = 200.0
	// FallbackAngle replaces the direction of a zero-length vector.
	FallbackAngle = math.Pi / 4

	aimRowFraction    = 0.05
	cornerXFraction   = 0.9
	cornerYFraction   = 0.1
	speedNormalizer   = 5.0
	reflectionEnergy  = 0.1
	steepAngleDegrees = 45.0
	castEpsilon       = 1e-9
)

// Table is the playing surface, with the origin in a corner.
type Table struct {
	Width  float64
	Height float64
}

// wall identifies which pair of cushions a ray reached.
type wall int

const (
	wallNone wall = iota
	wallSide      // x = 0 or x = Width
	wallEnd       // y = 0 or y = Height
)

// Engine simulates reflection paths on a table.
type Engine struct {
	table Table
	log   logger.Logger
}

// New creates an engine on the standard 254×127 table.
func New(opts ...Option) *Engine {
	e := &Engine{
		table: Table{Width: DefaultWidth, Height: DefaultHeight},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("geometry")
	}
	return e
}

// Table returns the table dimensions.
func (e *Engine) Table() Table { return e.table }

// WhiteBallPosition maps a white-ball measurement (0–8) onto the lower cushion.
func (e *Engine) WhiteBallPosition(wb float64) model.Point {
	return model.Point{X: wb / model.MaxWhiteBall * e.table.Width, Y: 0}
}

// AimPosition maps an aim measurement (0–12) to the target point. The corner
// pocket has a fixed position.
func (e *Engine) AimPosition(aim model.Aim) model.Point {
	if aim.Corner {
		return model.Point{X: cornerXFraction * e.table.Width, Y: cornerYFraction * e.table.Height}
	}
	return model.Point{X: aim.Value / model.MaxAim * e.table.Width, Y: aimRowFraction * e.table.Height}
}

// Simulate maps the measurements onto the table and traces rails cushions.
// cue is the raw measurement; the wrap convention is applied here.
func (e *Engine) Simulate(ctx context.Context, wb float64, aim model.Aim, cue float64, rails int) model.GeometryResult {
	start := time.Now()
	speed := model.Shot{Cue: cue}.EffectiveCue() / speedNormalizer
	res := e.Trace(ctx, e.WhiteBallPosition(wb), e.AimPosition(aim), speed, rails)
	metrics.RecordSimulation(float64(time.Since(start).Microseconds())/1000, res.Difficulty)
	return res
}

// SimulateShot is Simulate over a shot descriptor.
func (e *Engine) SimulateShot(ctx context.Context, s model.Shot) model.GeometryResult {
	return e.Simulate(ctx, s.WhiteBall, s.Aim, s.Cue, s.Rails)
}

// Trace casts from start toward target and follows rails cushions. speed is
// the initial speed factor. A zero-length direction falls back to
// FallbackAngle; contact points are clamped to the table.
func (e *Engine) Trace(ctx context.Context, start, target model.Point, speed float64, rails int) model.GeometryResult {
	dx, dy := target.X-start.X, target.Y-start.Y
	theta := math.Atan2(dy, dx)
	if math.Hypot(dx, dy) == 0 {
		theta = FallbackAngle
		metrics.RecordGeometryFallback()
		e.log.Debug(ctx, "zero-length direction, using fallback angle",
			logger.Float64("x", start.X), logger.Float64("y", start.Y))
	}

	res := model.GeometryResult{
		Start:  start,
		Target: target,
		Path:   []model.Point{start},
	}

	first, hit := e.cast(start, theta)
	res.FirstContact = first

	if rails < 0 {
		rails = 0
	}
	res.Cushions = make([]model.CushionContact, 0, rails)
	point, heading, incidence := first, theta, theta
	for i := 0; i < rails; i++ {
		reflected := math.Pi - incidence
		residual := speed * math.Pow(SpeedDecay, float64(i+1))
		res.Cushions = append(res.Cushions, model.CushionContact{
			Rail:            i + 1,
			Point:           point,
			IncidenceAngle:  incidence,
			ReflectionAngle: reflected,
			ResidualSpeed:   residual,
			SpinRequirement: spinRequirement(reflected, residual),
		})
		res.Path = append(res.Path, point)

		heading = bounce(heading, hit)
		point, hit = e.cast(point, heading)
		incidence = reflected
	}
	res.Path = append(res.Path, target)

	res.Difficulty = difficulty(start, first, theta, speed, rails)
	res.Distance = pathLength(res.Path)
	res.EstimatedTime = res.Distance / BallSpeed
	return res
}

// Reflections lists rails bounces starting from angle at position, turning
// off an end cushion first and then alternating. Each bounce loses a further
// tenth of the energy.
func (e *Engine) Reflections(rails int, angle float64, position model.Point) []model.Bounce {
	out := make([]model.Bounce, 0, max(rails, 0))
	current, pos := angle, e.clamp(position)
	for i := 0; i < rails; i++ {
		out = append(out, model.Bounce{
			Number:     i + 1,
			Angle:      current,
			Position:   pos,
			EnergyLoss: reflectionEnergy * float64(i+1),
		})
		pos, _ = e.cast(pos, current)
		if i%2 == 0 {
			current = bounce(current, wallEnd)
		} else {
			current = bounce(current, wallSide)
		}
	}
	return out
}

// Angles returns the aiming angles of a shot in degrees. The final angle is
// normalized to [0, 360).
func Angles(wb float64, aim model.Aim, cue float64) model.Angles {
	base := math.Atan2(aim.Numeric()-model.MaxAim/2, wb-model.MaxWhiteBall/2)
	cueAngle := cue / model.MaxCue * math.Pi
	final := math.Mod(base+0.1*cueAngle, 2*math.Pi)
	if final < 0 {
		final += 2 * math.Pi
	}
	return model.Angles{
		Base:  degrees(base),
		Cue:   degrees(cueAngle),
		Final: degrees(final),
	}
}

// cast follows the ray from p at angle theta to the first cushion it meets.
// The returned point is clamped to the table. A ray that cannot leave p
// returns p itself.
func (e *Engine) cast(p model.Point, theta float64) (model.Point, wall) {
	dx, dy := math.Cos(theta), math.Sin(theta)
	tx, ty := math.Inf(1), math.Inf(1)
	switch {
	case dx > castEpsilon:
		tx = (e.table.Width - p.X) / dx
	case dx < -castEpsilon:
		tx = -p.X / dx
	}
	switch {
	case dy > castEpsilon:
		ty = (e.table.Height - p.Y) / dy
	case dy < -castEpsilon:
		ty = -p.Y / dy
	}
	if tx <= castEpsilon {
		tx = math.Inf(1)
	}
	if ty <= castEpsilon {
		ty = math.Inf(1)
	}

	t, w := tx, wallSide
	if ty < tx {
		t, w = ty, wallEnd
	}
	if math.IsInf(t, 1) {
		return e.clamp(p), wallNone
	}
	return e.clamp(model.Point{X: p.X + t*dx, Y: p.Y + t*dy}), w
}

func (e *Engine) clamp(p model.Point) model.Point {
	return model.Point{
		X: math.Max(0, math.Min(e.table.Width, p.X)),
		Y: math.Max(0, math.Min(e.table.Height, p.Y)),
	}
}

// bounce mirrors a heading off the given cushion pair.
func bounce(theta float64, w wall) float64 {
	switch w {
	case wallSide:
		return math.Pi - theta
	case wallEnd:
		return -theta
	default:
		return theta + math.Pi
	}
}

func spinRequirement(angle, speed float64) float64 {
	spin := 0.3
	if math.Abs(degrees(angle)) > steepAngleDegrees {
		spin = 0.7
	}
	if speed > 1.5 {
		spin += 0.2
	} else {
		spin -= 0.1
	}
	return math.Max(0, math.Min(1, spin))
}

func difficulty(start, first model.Point, theta, speed float64, rails int) float64 {
	d := math.Hypot(first.X-start.X, first.Y-start.Y)
	score := math.Min(d/100, 1)*2 +
		math.Abs(math.Sin(theta))*3 +
		float64(rails)*1.5 +
		math.Abs(speed-1)
	return math.Max(0, math.Min(10, score))
}

func pathLength(points []model.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	return total
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
