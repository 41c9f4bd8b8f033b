package geometry_test

import (
	"context"
	"math"
	"testing"

	"github.com/okian/railshot/internal/domain/geometry"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestSimulateCushions(t *testing.T) {
	Convey("Given a two-rail shot", t, func() {
		e := geometry.New()
		res := e.Simulate(context.Background(), 2.5, model.AimAt(7), 3, 2)

		Convey("Then there are exactly two cushion records", func() {
			So(res.Cushions, ShouldHaveLength, 2)
			So(res.Cushions[0].Rail, ShouldEqual, 1)
			So(res.Cushions[1].Rail, ShouldEqual, 2)
		})

		Convey("Then residual speed decays by 0.9 per cushion", func() {
			s := 3.0 / 5
			So(res.Cushions[0].ResidualSpeed, ShouldAlmostEqual, s*0.9)
			So(res.Cushions[1].ResidualSpeed, ShouldBeLessThan, res.Cushions[0].ResidualSpeed)
			So(res.Cushions[1].ResidualSpeed/res.Cushions[0].ResidualSpeed, ShouldAlmostEqual, 0.9)
		})

		Convey("Then each reflection is π minus the incidence", func() {
			for i, c := range res.Cushions {
				So(c.ReflectionAngle, ShouldAlmostEqual, math.Pi-c.IncidenceAngle)
				if i > 0 {
					So(c.IncidenceAngle, ShouldAlmostEqual, res.Cushions[i-1].ReflectionAngle)
				}
			}
		})

		Convey("Then the path runs from start through each contact to the target", func() {
			So(res.Path, ShouldHaveLength, 4)
			So(res.Path[0], ShouldResemble, res.Start)
			So(res.Path[1], ShouldResemble, res.FirstContact)
			So(res.Path[3], ShouldResemble, res.Target)
			So(res.EstimatedTime, ShouldAlmostEqual, res.Distance/geometry.BallSpeed)
		})
	})
}

func TestSimulateStraightUp(t *testing.T) {
	Convey("Given a shot aimed straight across the table", t, func() {
		e := geometry.New()
		res := e.Simulate(context.Background(), 4, model.AimAt(6), 2.5, 1)

		Convey("Then the first contact is on the far cushion", func() {
			So(res.Start, ShouldResemble, model.Point{X: 127, Y: 0})
			So(res.FirstContact.X, ShouldAlmostEqual, 127, 1e-9)
			So(res.FirstContact.Y, ShouldAlmostEqual, 127, 1e-9)
		})

		Convey("Then difficulty and spin follow the closed forms", func() {
			So(res.Difficulty, ShouldAlmostEqual, 2+3+1.5+0.5, 1e-9)
			So(res.Cushions[0].SpinRequirement, ShouldAlmostEqual, 0.6)
		})
	})
}

func TestSimulateBounds(t *testing.T) {
	Convey("Given every measurement combination", t, func() {
		e := geometry.New()
		tbl := e.Table()
		aims := []model.Aim{model.CornerPocket()}
		for a := 0.0; a <= 12; a += 1.5 {
			aims = append(aims, model.AimAt(a))
		}

		Convey("Then contacts stay on the table and difficulty in range", func() {
			for rails := 1; rails <= 4; rails++ {
				for wb := 0.0; wb <= 8; wb += 1 {
					for _, aim := range aims {
						for cue := 0.0; cue <= 15; cue += 2.5 {
							res := e.Simulate(context.Background(), wb, aim, cue, rails)
							So(res.Cushions, ShouldHaveLength, rails)
							So(res.Difficulty, ShouldBeBetweenOrEqual, 0, 10)
							for _, p := range res.Path {
								So(p.X, ShouldBeBetweenOrEqual, 0, tbl.Width)
								So(p.Y, ShouldBeBetweenOrEqual, 0, tbl.Height)
							}
							for _, c := range res.Cushions {
								So(c.SpinRequirement, ShouldBeBetweenOrEqual, 0, 1)
							}
						}
					}
				}
			}
		})
	})
}

func TestSimulateEdgeCases(t *testing.T) {
	Convey("Given degenerate inputs", t, func() {
		e := geometry.New()
		ctx := context.Background()

		Convey("When start and target coincide", func() {
			p := model.Point{X: 50, Y: 50}
			var res model.GeometryResult
			So(func() { res = e.Trace(ctx, p, p, 1, 2) }, ShouldNotPanic)

			Convey("Then the fallback angle is used", func() {
				So(res.Cushions[0].IncidenceAngle, ShouldAlmostEqual, geometry.FallbackAngle)
				So(res.FirstContact.X, ShouldAlmostEqual, 127, 1e-9)
				So(res.FirstContact.Y, ShouldAlmostEqual, 127, 1e-9)
			})
		})

		Convey("When the aim is the corner pocket", func() {
			res := e.Simulate(ctx, 1, model.CornerPocket(), 2, 1)
			So(res.Target.X, ShouldAlmostEqual, 0.9*geometry.DefaultWidth)
			So(res.Target.Y, ShouldAlmostEqual, 0.1*geometry.DefaultHeight)
		})

		Convey("When the cue wraps around", func() {
			res := e.Simulate(ctx, 2, model.AimAt(5), 0, 1)
			So(res.Cushions[0].ResidualSpeed, ShouldAlmostEqual, 2*0.9)

			res = e.Simulate(ctx, 2, model.AimAt(5), 0.5, 1)
			So(res.Cushions[0].ResidualSpeed, ShouldAlmostEqual, 10.5/5*0.9)
		})

		Convey("When a custom table is used", func() {
			small := geometry.New(geometry.WithTable(100, 50))
			So(small.WhiteBallPosition(8), ShouldResemble, model.Point{X: 100, Y: 0})
			So(small.AimPosition(model.AimAt(12)).X, ShouldAlmostEqual, 100)
		})
	})
}

func TestReflections(t *testing.T) {
	Convey("Given a reflection sequence", t, func() {
		e := geometry.New()
		bounces := e.Reflections(3, 0.5, model.Point{X: 10, Y: 10})

		Convey("Then angles alternate and energy loss grows", func() {
			So(bounces, ShouldHaveLength, 3)
			So(bounces[0].Number, ShouldEqual, 1)
			So(bounces[0].Angle, ShouldAlmostEqual, 0.5)
			So(bounces[1].Angle, ShouldAlmostEqual, -0.5)
			So(bounces[2].Angle, ShouldAlmostEqual, math.Pi+0.5)
			So(bounces[0].EnergyLoss, ShouldAlmostEqual, 0.1)
			So(bounces[2].EnergyLoss, ShouldAlmostEqual, 0.3)
			So(bounces[0].Position, ShouldResemble, model.Point{X: 10, Y: 10})
		})

		Convey("Then zero rails yield nothing", func() {
			So(e.Reflections(0, 1, model.Point{}), ShouldBeEmpty)
		})
	})
}

func TestAngles(t *testing.T) {
	Convey("Given aiming angles", t, func() {
		a := geometry.Angles(2, model.AimAt(6), 15)
		So(a.Base, ShouldAlmostEqual, 180)
		So(a.Cue, ShouldAlmostEqual, 180)
		So(a.Final, ShouldAlmostEqual, 198)

		a = geometry.Angles(4, model.AimAt(0), 0)
		So(a.Base, ShouldAlmostEqual, -90)
		So(a.Final, ShouldAlmostEqual, 270)

		a = geometry.Angles(4, model.AimAt(6), 0)
		So(a.Final, ShouldEqual, 0.0)
	})
}
