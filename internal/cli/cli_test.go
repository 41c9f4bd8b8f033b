package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/railshot/internal/adapters/repository"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
	"github.com/okian/railshot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func run(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := NewRootCommand()
		So(cmd.Use, ShouldEqual, "shotctl")

		for _, name := range []string{"analyze", "predict", "simulate", "angles", "reflections", "train", "loadgen"} {
			sub, _, err := cmd.Find([]string{name})
			So(err, ShouldBeNil)
			So(sub.Name(), ShouldEqual, name)
		}

		format := cmd.PersistentFlags().Lookup("format")
		So(format, ShouldNotBeNil)
		So(format.DefValue, ShouldEqual, "text")

		Convey("When the format is unknown", func() {
			_, err := run("angles", "--format", "xml")
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})
	})
}

func TestAnalyzeCommand(t *testing.T) {
	Convey("Given a SQLite state file", t, func() {
		db := filepath.Join(t.TempDir(), "state.db")

		Convey("When a valid shot is analyzed as JSON", func() {
			out, err := run("analyze", "--storage", db, "--format", "json",
				"--rails", "2", "--white-ball", "2.5", "--aim", "7", "--cue", "2.5", "--path", "3")
			So(err, ShouldBeNil)

			var res model.AnalysisResult
			So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
			So(res.SuccessPrediction, ShouldBeBetweenOrEqual, 0, 100)
			So(res.Geometry.Path, ShouldNotBeEmpty)

			Convey("Then the pattern memory is persisted", func() {
				store, err := repository.OpenSQLite(db)
				So(err, ShouldBeNil)
				defer store.Close()
				_, err = store.Get(context.Background(), repository.KeyMemory)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the aim is the corner pocket", func() {
			out, err := run("analyze", "--storage", db, "--rails", "1", "--aim", "corner_pocket", "--cue", "3")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Success:")
		})

		Convey("When the shot is invalid", func() {
			_, err := run("analyze", "--storage", db, "--rails", "6")
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})
	})
}

func TestGeometryCommands(t *testing.T) {
	Convey("Given a state file", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "state.db")

		Convey("When a path is simulated with a plot", func() {
			plot := filepath.Join(dir, "path.svg")
			out, err := run("simulate", "--storage", db, "--rails", "3", "--white-ball", "2", "--aim", "6", "--cue", "3", "--plot", plot)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "cushion 3")

			data, err := os.ReadFile(plot)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "<svg")
		})

		Convey("When the plot format is unsupported", func() {
			_, err := run("simulate", "--storage", db, "--rails", "1", "--plot", filepath.Join(dir, "path.gif"))
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})

		Convey("When reflections are listed", func() {
			out, err := run("reflections", "--storage", db, "--rails", "2", "--format", "json")
			So(err, ShouldBeNil)
			var bounces []model.Bounce
			So(json.Unmarshal([]byte(out), &bounces), ShouldBeNil)
			So(bounces, ShouldHaveLength, 2)
			So(bounces[1].Number, ShouldEqual, 2)
		})

		Convey("When reflections are asked for an impossible rail count", func() {
			for _, rails := range []string{"0", "5", "-3", "5000000"} {
				_, err := run("reflections", "--storage", db, "--rails="+rails)
				So(ExitCode(err), ShouldEqual, ExitUsage)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			}
			_, err := run("reflections", "--storage", db, "--angle", "NaN")
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})

		Convey("When angles are computed", func() {
			out, err := run("angles", "--storage", db, "--rails", "1", "--white-ball", "3", "--aim", "5", "--cue", "2")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Base")
		})
	})
}

func TestTrainCommand(t *testing.T) {
	Convey("Given labelled samples on disk", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "state.db")
		samples := []model.TrainingSample{
			{Shot: model.Shot{Rails: 2, WhiteBall: 2.5, Aim: model.AimAt(7), Cue: 2.5, Path: 3}, Success: 1},
			{Shot: model.Shot{Rails: 4, WhiteBall: 7, Aim: model.AimAt(1), Cue: 12, Path: 11}, Success: 0},
		}
		data, err := json.Marshal(samples)
		So(err, ShouldBeNil)
		path := filepath.Join(dir, "samples.json")
		So(os.WriteFile(path, data, 0o600), ShouldBeNil)

		Convey("When the model is trained", func() {
			plot := filepath.Join(dir, "loss.svg")
			out, err := run("train", "--storage", db, "--samples", path, "--epochs", "3", "--loss-plot", plot, "--format", "json")
			So(err, ShouldBeNil)

			var rep neural.Report
			So(json.Unmarshal([]byte(out), &rep), ShouldBeNil)
			So(rep.Samples, ShouldEqual, 2)
			So(rep.Losses, ShouldHaveLength, 3)

			_, err = os.Stat(plot)
			So(err, ShouldBeNil)

			Convey("Then the weights are persisted", func() {
				store, err := repository.OpenSQLite(db)
				So(err, ShouldBeNil)
				defer store.Close()
				_, err = store.Get(context.Background(), repository.KeyModel)
				So(err, ShouldBeNil)
			})
		})

		Convey("When more epochs are asked for than the cap allows", func() {
			_, err := run("train", "--storage", db, "--samples", path, "--epochs", "1000001")
			So(errors.Is(err, neural.ErrInvalidEpochs), ShouldBeTrue)
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})

		Convey("When the sample file is malformed", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{"), 0o600), ShouldBeNil)
			_, err := run("train", "--storage", db, "--samples", bad)
			So(ExitCode(err), ShouldEqual, ExitUsage)
		})

		Convey("When there is nothing in memory to train on", func() {
			_, err := run("train", "--storage", db)
			So(errors.Is(err, neural.ErrEmptyDataset), ShouldBeTrue)
		})
	})
}

func TestLoadgenCommand(t *testing.T) {
	Convey("Given no server listening", t, func() {
		_, err := run("loadgen", "--url", "http://127.0.0.1:1", "--shots", "1", "--timeout", "200ms")
		So(err, ShouldNotBeNil)
		So(ExitCode(err), ShouldEqual, ExitFailure)
	})
}
