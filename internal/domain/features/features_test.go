package features_test

import (
	"testing"

	"github.com/okian/railshot/internal/domain/features"
	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtract(t *testing.T) {
	Convey("Given a two-rail shot", t, func() {
		s := model.Shot{Rails: 2, WhiteBall: 4, Aim: model.AimAt(7), Cue: 3, Path: 5, Notes: "needs english"}
		v := features.Extract(s)

		Convey("Then every feature is in its documented position", func() {
			So(v[0], ShouldAlmostEqual, 0.5)
			So(v[1], ShouldAlmostEqual, 0.3)
			So(v[2], ShouldAlmostEqual, 0.5)
			So(v[3], ShouldAlmostEqual, 0.5)
			So(v[4], ShouldAlmostEqual, 0.3)
			So(v[5], ShouldAlmostEqual, 0.75)
			So(v[6], ShouldAlmostEqual, 0.3)
			So(v[7], ShouldAlmostEqual, 0.5)
			So(v[8], ShouldAlmostEqual, 0.3)
			So(v[9], ShouldAlmostEqual, (0.8+0.1)/3)
		})

		Convey("Then Slice copies the values", func() {
			sl := v.Slice()
			So(sl, ShouldHaveLength, features.Size)
			sl[0] = 9
			So(v[0], ShouldAlmostEqual, 0.5)
		})
	})
}

func TestExtractEdgeCases(t *testing.T) {
	Convey("Given edge measurements", t, func() {
		Convey("When the cue reads above 10", func() {
			v := features.Extract(model.Shot{Rails: 3, Cue: 12, Aim: model.AimAt(0)})
			So(v[1], ShouldAlmostEqual, 0.2)
			So(v[8], ShouldAlmostEqual, 0.7)
			So(v[9], ShouldAlmostEqual, (1.2+0.1)/3)
		})

		Convey("When the aim is the corner pocket", func() {
			v := features.Extract(model.Shot{Rails: 1, WhiteBall: 0.8, Aim: model.CornerPocket(), Cue: 2})
			So(v[4], ShouldAlmostEqual, 1.0)
			So(v[5], ShouldAlmostEqual, 2.0/11.0)
		})

		Convey("When four rails are used", func() {
			v := features.Extract(model.Shot{Rails: 4, Cue: 4})
			So(v[7], ShouldEqual, 1.0)
			So(v[9], ShouldAlmostEqual, (1.6+0.3+0.3)/3)
		})

		Convey("When the notes match several keywords", func() {
			v := features.Extract(model.Shot{Rails: 1, Notes: "صعب مع قوة و دقة"})
			So(v[6], ShouldAlmostEqual, 0.7)
		})

		Convey("When a custom keyword table is used", func() {
			kb, err := knowledge.Parse([]byte("keywords:\n  weights: {kiss: 0.5}\n"))
			So(err, ShouldBeNil)
			v := features.NewExtractor(kb).Extract(model.Shot{Rails: 1, Notes: "avoid the kiss"})
			So(v[6], ShouldAlmostEqual, 0.5)
		})
	})
}
