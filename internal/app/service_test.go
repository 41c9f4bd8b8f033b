package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/adapters/repository"
	service "github.com/okian/railshot/internal/app"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
	"github.com/okian/railshot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var direct = model.Shot{Rails: 1, WhiteBall: 2.5, Aim: model.AimAt(7), Cue: 2.5}

func TestEngine_Analyze(t *testing.T) {
	Convey("Given an engine with default components", t, func() {
		ctx := context.Background()
		at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		e := service.New(service.WithClock(func() time.Time { return at }))

		Convey("When analyzing a direct mid-power shot", func() {
			res, err := e.Analyze(ctx, direct)
			So(err, ShouldBeNil)

			Convey("Then the heuristic profile is complete", func() {
				So(res.Difficulty, ShouldAlmostEqual, 2.0)
				So(res.SuccessPrediction, ShouldEqual, 95)
				So(res.Confidence, ShouldEqual, 80)
				So(res.NeuralPrediction, ShouldBeBetweenOrEqual, 0, 100)
				So(res.DifficultyLevel, ShouldEqual, "easy")
				So(res.AnalyzedAt, ShouldEqual, at)
				So(res.PotentialMistakes, ShouldBeEmpty)
			})

			Convey("Then similar shots feed a history recommendation", func() {
				So(res.SimilarShots, ShouldHaveLength, 1)
				So(res.SimilarShots[0].Contact, ShouldEqual, "short_2")
				last := res.Recommendations[len(res.Recommendations)-1]
				So(last.Kind, ShouldEqual, model.RecommendHistory)
				So(last.Priority, ShouldEqual, model.PriorityLow)
				So(last.Text, ShouldContainSubstring, "short_2")
			})

			Convey("Then recommendations are unique", func() {
				seen := map[string]bool{}
				for _, r := range res.Recommendations {
					So(seen[r.Text], ShouldBeFalse)
					seen[r.Text] = true
				}
			})

			Convey("Then the geometry path spans every cushion", func() {
				So(res.Geometry.Cushions, ShouldHaveLength, 1)
				So(res.Geometry.Path, ShouldHaveLength, 3)
			})

			Convey("Then nothing is remembered without online learning", func() {
				So(e.Memory().Len(), ShouldEqual, 0)
			})
		})

		Convey("When the shot is malformed", func() {
			_, err := e.Analyze(ctx, model.Shot{Rails: 5})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given an engine with online learning", t, func() {
		ctx := context.Background()
		e := service.New(service.WithOnlineLearning(true))

		first, err := e.Analyze(ctx, direct)
		So(err, ShouldBeNil)
		So(e.Memory().Len(), ShouldEqual, 1)
		So(e.Memory().Entries()[0].PredictedSuccess, ShouldEqual, first.SuccessPrediction)

		Convey("Then the remembered shot raises the next confidence", func() {
			second, err := e.Analyze(ctx, direct)
			So(err, ShouldBeNil)
			So(second.SimilarShots, ShouldHaveLength, 2)
			So(second.SimilarShots[1].FromMemory, ShouldBeTrue)
			So(second.Confidence, ShouldEqual, first.Confidence+5)
			So(e.Stats().Analyses, ShouldEqual, 2)
		})
	})
}

func TestEngine_PredictAndSimulate(t *testing.T) {
	Convey("Given an engine", t, func() {
		ctx := context.Background()
		e := service.New()

		p, err := e.Predict(ctx, direct)
		So(err, ShouldBeNil)
		So(p.Probability, ShouldBeBetweenOrEqual, 0.0, 1.0)
		So(p.Percent, ShouldBeBetweenOrEqual, 0, 100)

		g, err := e.Simulate(ctx, model.Shot{Rails: 3, WhiteBall: 2, Aim: model.CornerPocket(), Cue: 3})
		So(err, ShouldBeNil)
		So(g.Cushions, ShouldHaveLength, 3)
		So(g.Difficulty, ShouldBeBetweenOrEqual, 0.0, 10.0)

		a, err := e.Angles(direct)
		So(err, ShouldBeNil)
		So(a.Final, ShouldBeBetweenOrEqual, 0.0, 360.0)

		_, err = e.Predict(ctx, model.Shot{Rails: 0})
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

		bounces, err := e.Reflections(4, 0.5, model.Point{X: 10, Y: 10})
		So(err, ShouldBeNil)
		So(bounces, ShouldHaveLength, 4)

		_, err = e.Reflections(model.MaxRails+1, 0.5, model.Point{})
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		_, err = e.Reflections(2, math.Inf(-1), model.Point{})
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
	})
}

func TestEngine_Train(t *testing.T) {
	Convey("Given an engine with online learning", t, func() {
		ctx := context.Background()
		e := service.New(service.WithOnlineLearning(true), service.WithEpochs(5))

		Convey("When memory is empty", func() {
			_, err := e.TrainFromMemory(ctx, 0)
			So(errors.Is(err, neural.ErrEmptyDataset), ShouldBeTrue)
		})

		Convey("When memory holds analyzed shots", func() {
			for _, s := range []model.Shot{direct, {Rails: 3, Cue: 4}, {Rails: 2, WhiteBall: 4, Cue: 2}} {
				_, err := e.Analyze(ctx, s)
				So(err, ShouldBeNil)
			}
			before, _ := e.SerializeModel()
			rep, err := e.TrainFromMemory(ctx, 0)

			Convey("Then the model is trained on every entry", func() {
				So(err, ShouldBeNil)
				So(rep.Samples, ShouldEqual, 3)
				So(rep.Epochs, ShouldEqual, 5)
				after, _ := e.SerializeModel()
				So(string(after), ShouldNotEqual, string(before))
				So(e.Stats().Trainings, ShouldEqual, 1)
			})
		})

		Convey("When more epochs are asked for than the engine allows", func() {
			before, _ := e.SerializeModel()
			for _, epochs := range []int{service.DefaultMaxEpochs + 1, 1 << 50} {
				_, err := e.Train(ctx, []model.TrainingSample{{Shot: direct, Success: 0.5}}, epochs)
				So(errors.Is(err, neural.ErrInvalidEpochs), ShouldBeTrue)
			}

			Convey("Then the model is untouched and analysis still runs", func() {
				after, _ := e.SerializeModel()
				So(string(after), ShouldEqual, string(before))

				done := make(chan error, 1)
				go func() {
					_, err := e.Analyze(ctx, direct)
					done <- err
				}()
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(2 * time.Second):
					t.Fatal("analysis blocked after a rejected training call")
				}
			})
		})

		Convey("When a lower cap is configured", func() {
			capped := service.New(service.WithMaxEpochs(10))
			_, err := capped.Train(ctx, []model.TrainingSample{{Shot: direct, Success: 0.5}}, 11)
			So(errors.Is(err, neural.ErrInvalidEpochs), ShouldBeTrue)
			_, err = capped.Train(ctx, []model.TrainingSample{{Shot: direct, Success: 0.5}}, 10)
			So(err, ShouldBeNil)
		})

		Convey("When analyses run while a long training is in progress", func() {
			samples := []model.TrainingSample{{Shot: direct, Success: 0.1}, {Shot: model.Shot{Rails: 3, Cue: 4}, Success: 0.9}}
			trained := make(chan error, 1)
			go func() {
				_, err := e.Train(ctx, samples, service.DefaultMaxEpochs)
				trained <- err
			}()

			Convey("Then every analysis completes with the model it started with", func() {
				for i := 0; i < 5; i++ {
					_, err := e.Analyze(ctx, direct)
					So(err, ShouldBeNil)
				}
				So(<-trained, ShouldBeNil)
				So(e.Stats().Trainings, ShouldEqual, 1)
			})
		})

		Convey("When a sample is malformed", func() {
			before, _ := e.SerializeModel()
			_, err := e.Train(ctx, []model.TrainingSample{{Shot: direct, Success: 1}, {Shot: model.Shot{Rails: 9}}}, 1)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			after, _ := e.SerializeModel()
			So(string(after), ShouldEqual, string(before))
		})
	})
}

func TestEngine_Restore(t *testing.T) {
	Convey("Given a serialized model", t, func() {
		ctx := context.Background()
		e := service.New()
		blob, err := e.SerializeModel()
		So(err, ShouldBeNil)
		want, _ := e.Predict(ctx, direct)

		_, err = e.Train(ctx, []model.TrainingSample{{Shot: direct, Success: 0}}, 200)
		So(err, ShouldBeNil)

		Convey("When it is restored", func() {
			So(e.RestoreModel(blob), ShouldBeNil)
			got, _ := e.Predict(ctx, direct)
			So(got.Probability, ShouldEqual, want.Probability)
		})

		Convey("When the blob holds a different layer stack", func() {
			row := make([]float64, neural.DefaultInputs)
			small, _ := json.Marshal(map[string]any{
				"version":       1,
				"inputs":        neural.DefaultInputs,
				"learning_rate": 0.01,
				"layers": []any{
					map[string]any{"units": 2, "activation": "relu", "weights": [][]float64{row, row}, "biases": []float64{0, 0}},
					map[string]any{"units": 1, "activation": "logistic", "weights": [][]float64{{0, 0}}, "biases": []float64{0}},
				},
			})
			trained, _ := e.Predict(ctx, direct)
			So(errors.Is(e.RestoreModel(small), neural.ErrShapeMismatch), ShouldBeTrue)
			got, _ := e.Predict(ctx, direct)
			So(got.Probability, ShouldEqual, trained.Probability)
			So(e.Stats().ModelUnits, ShouldResemble, neural.DefaultUnits)
		})

		Convey("When the blob is corrupt", func() {
			trained, _ := e.Predict(ctx, direct)
			So(errors.Is(e.RestoreModel([]byte("{")), neural.ErrCorruptModel), ShouldBeTrue)
			got, _ := e.Predict(ctx, direct)
			So(got.Probability, ShouldEqual, trained.Probability)
		})
	})
}

func TestEngine_SaveLoad(t *testing.T) {
	Convey("Given an engine with remembered shots", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		src := service.New(service.WithOnlineLearning(true))
		_, err := src.Analyze(ctx, direct)
		So(err, ShouldBeNil)
		So(src.Save(ctx, store), ShouldBeNil)

		Convey("When another engine loads the store", func() {
			dst := service.New(service.WithModel(neural.New(neural.WithSeed(7))))
			So(dst.Load(ctx, store), ShouldBeNil)

			Convey("Then it has the same model and memory", func() {
				a, _ := src.SerializeModel()
				b, _ := dst.SerializeModel()
				So(string(b), ShouldEqual, string(a))
				So(dst.Memory().Len(), ShouldEqual, 1)
			})
		})

		Convey("When the store is empty", func() {
			dst := service.New()
			So(dst.Load(ctx, repository.NewMemoryStore()), ShouldBeNil)
			So(dst.Memory().Len(), ShouldEqual, 0)
		})
	})
}

func TestTaskHandler(t *testing.T) {
	Convey("Given a task handler forked from an engine", t, func() {
		ctx := context.Background()
		e := service.New(service.WithEpochs(3))
		h, err := e.TaskHandler()
		So(err, ShouldBeNil)
		shot := direct

		Convey("When a train task runs", func() {
			before, _ := e.SerializeModel()
			out, err := h.Handle(ctx, model.Payload{
				Kind:    model.KindTrain,
				Samples: []model.TrainingSample{{Shot: direct, Success: 0.2}},
			})

			Convey("Then it returns the worker's weights and leaves the host alone", func() {
				So(err, ShouldBeNil)
				res := out.(model.TrainResult)
				So(res.Epochs, ShouldEqual, 3)
				So(res.Model, ShouldNotBeEmpty)
				So(string(res.Model), ShouldNotEqual, string(before))
				after, _ := e.SerializeModel()
				So(string(after), ShouldEqual, string(before))
			})
		})

		Convey("When each geometry kind runs", func() {
			out, err := h.Handle(ctx, model.Payload{Kind: model.KindCalculatePath, Shot: &shot})
			So(err, ShouldBeNil)
			So(out.(model.GeometryResult).Cushions, ShouldHaveLength, 1)

			out, err = h.Handle(ctx, model.Payload{Kind: model.KindCalculateReflections, Rails: 3, Angle: 0.5, Position: model.Point{X: 10, Y: 10}})
			So(err, ShouldBeNil)
			So(out.([]model.Bounce), ShouldHaveLength, 3)

			out, err = h.Handle(ctx, model.Payload{Kind: model.KindCalculateAngles, Shot: &shot})
			So(err, ShouldBeNil)
			So(out, ShouldHaveSameTypeAs, model.Angles{})
		})

		Convey("When a reflection task carries impossible input", func() {
			for _, p := range []model.Payload{
				{Kind: model.KindCalculateReflections, Rails: 5_000_000},
				{Kind: model.KindCalculateReflections, Rails: 1 << 50},
				{Kind: model.KindCalculateReflections, Rails: -3},
				{Kind: model.KindCalculateReflections, Rails: 0},
				{Kind: model.KindCalculateReflections, Rails: 2, Angle: math.NaN()},
				{Kind: model.KindCalculateReflections, Rails: 2, Position: model.Point{X: math.Inf(1)}},
			} {
				out, err := h.Handle(ctx, p)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(out, ShouldBeNil)
			}
		})

		Convey("When the prediction kinds run", func() {
			out, err := h.Handle(ctx, model.Payload{Kind: model.KindAnalyze, Shot: &shot})
			So(err, ShouldBeNil)
			So(out.(model.AnalysisResult).SuccessPrediction, ShouldEqual, 95)

			out, err = h.Handle(ctx, model.Payload{Kind: model.KindPredict, Shot: &shot})
			So(err, ShouldBeNil)
			So(out, ShouldHaveSameTypeAs, model.PredictResult{})
		})

		Convey("When the shot is missing", func() {
			_, err := h.Handle(ctx, model.Payload{Kind: model.KindPredict})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When the kind is unknown", func() {
			_, err := h.Handle(ctx, model.Payload{Kind: "optimize"})
			So(errors.Is(err, dispatch.ErrUnknownKind), ShouldBeTrue)
		})
	})
}
