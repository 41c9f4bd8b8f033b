package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	model "github.com/okian/railshot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestShotValidate(t *testing.T) {
	convey.Convey("Given a well-formed shot", t, func() {
		shot := model.Shot{Rails: 2, WhiteBall: 2.5, Aim: model.AimAt(7), Cue: 2.5, Path: 3}

		convey.Convey("Then it validates", func() {
			convey.So(shot.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the rail count is out of range", func() {
			for _, rails := range []int{0, 5, -1} {
				bad := shot
				bad.Rails = rails
				err := bad.Validate()
				convey.So(errors.Is(err, model.ErrValidation), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "rails")
			}
		})

		convey.Convey("When a measurement is out of range", func() {
			bad := shot
			bad.WhiteBall = 8.5
			convey.So(errors.Is(bad.Validate(), model.ErrValidation), convey.ShouldBeTrue)

			bad = shot
			bad.Cue = 15.1
			convey.So(errors.Is(bad.Validate(), model.ErrValidation), convey.ShouldBeTrue)

			bad = shot
			bad.Aim = model.AimAt(-0.5)
			convey.So(errors.Is(bad.Validate(), model.ErrValidation), convey.ShouldBeTrue)

			bad = shot
			bad.Path = math.NaN()
			convey.So(errors.Is(bad.Validate(), model.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("When the aim is the corner pocket", func() {
			s := shot
			s.Aim = model.CornerPocket()
			convey.So(s.Validate(), convey.ShouldBeNil)
			convey.So(s.Aim.Numeric(), convey.ShouldEqual, model.CornerPocketAimEquivalent)
		})
	})
}

func TestShotEffectiveCue(t *testing.T) {
	convey.Convey("Given the cue wrap convention", t, func() {
		convey.So(model.Shot{Cue: 0}.EffectiveCue(), convey.ShouldEqual, 10.0)
		convey.So(model.Shot{Cue: 0.5}.EffectiveCue(), convey.ShouldEqual, 10.5)
		convey.So(model.Shot{Cue: 1}.EffectiveCue(), convey.ShouldEqual, 1.0)
		convey.So(model.Shot{Cue: 12}.EffectiveCue(), convey.ShouldEqual, 12.0)
	})
}

func TestValidateReflection(t *testing.T) {
	convey.Convey("Given reflection inputs", t, func() {
		at := model.Point{X: 10, Y: 20}
		convey.So(model.ValidateReflection(1, 0.5, at), convey.ShouldBeNil)
		convey.So(model.ValidateReflection(model.MaxRails, -2, model.Point{}), convey.ShouldBeNil)

		for _, rails := range []int{0, -3, model.MaxRails + 1, 5_000_000} {
			err := model.ValidateReflection(rails, 0.5, at)
			convey.So(errors.Is(err, model.ErrValidation), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "rails")
		}

		err := model.ValidateReflection(2, math.NaN(), at)
		convey.So(errors.Is(err, model.ErrValidation), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, "angle")

		err = model.ValidateReflection(2, 0.5, model.Point{X: 1, Y: math.Inf(1)})
		convey.So(err.Error(), convey.ShouldContainSubstring, "position.y")
	})
}

func TestShotContactLabel(t *testing.T) {
	convey.Convey("Given shots with and without an explicit contact", t, func() {
		convey.So(model.Shot{WhiteBall: 2.5}.ContactLabel(), convey.ShouldEqual, "long_3")
		convey.So(model.Shot{WhiteBall: 4.2}.ContactLabel(), convey.ShouldEqual, "long_4")
		convey.So(model.Shot{WhiteBall: 2.5, Contact: "short_2"}.ContactLabel(), convey.ShouldEqual, "short_2")
	})
}

func TestAimJSON(t *testing.T) {
	convey.Convey("Given aim JSON encodings", t, func() {
		var s model.Shot
		convey.So(json.Unmarshal([]byte(`{"rails":1,"aim":7.5}`), &s), convey.ShouldBeNil)
		convey.So(s.Aim, convey.ShouldResemble, model.AimAt(7.5))

		convey.So(json.Unmarshal([]byte(`{"rails":1,"aim":"corner_pocket"}`), &s), convey.ShouldBeNil)
		convey.So(s.Aim.Corner, convey.ShouldBeTrue)

		convey.So(json.Unmarshal([]byte(`{"rails":1,"aim":"جيب الزاوية"}`), &s), convey.ShouldBeNil)
		convey.So(s.Aim.Corner, convey.ShouldBeTrue)

		convey.So(json.Unmarshal([]byte(`{"rails":1,"aim":"6"}`), &s), convey.ShouldBeNil)
		convey.So(s.Aim, convey.ShouldResemble, model.AimAt(6))

		err := json.Unmarshal([]byte(`{"rails":1,"aim":"middle"}`), &s)
		convey.So(errors.Is(err, model.ErrValidation), convey.ShouldBeTrue)

		out, err := json.Marshal(model.CornerPocket())
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(out), convey.ShouldEqual, `"corner_pocket"`)
	})
}

func TestPayloadClone(t *testing.T) {
	convey.Convey("Given a payload with a shot and samples", t, func() {
		shot := model.Shot{Rails: 2, Cue: 2}
		p := model.Payload{
			Kind:    model.KindTrain,
			Shot:    &shot,
			Samples: []model.TrainingSample{{Shot: shot, Success: 1}},
		}

		clone := p.Clone()
		shot.Rails = 4
		p.Samples[0].Success = 0

		convey.Convey("Then the clone does not share mutable memory", func() {
			convey.So(clone.Shot.Rails, convey.ShouldEqual, 2)
			convey.So(clone.Samples[0].Success, convey.ShouldEqual, 1.0)
		})
	})
}
