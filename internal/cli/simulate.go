package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/railshot/internal/adapters/render"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/spf13/cobra"
)

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		flags    shotFlags
		plotPath string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Trace the reflection path of a shot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shot, err := flags.shot()
			if err != nil {
				return err
			}
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = s.close(cmd.Context(), false) }()

			res, err := s.engine.Simulate(cmd.Context(), shot)
			if err != nil {
				return err
			}
			if plotPath != "" {
				if err := writePlot(plotPath, func(r *render.Renderer, w io.Writer) error {
					return r.Path(w, s.engine.Table(), res)
				}); err != nil {
					return err
				}
			}
			return s.out.print(res, func(w io.Writer) { writeGeometry(w, res) })
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a plot of the path (.png, .svg or .pdf)")
	return cmd
}

// writePlot renders into path, picking the format from its extension.
func writePlot(path string, draw func(*render.Renderer, io.Writer) error) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	r, err := render.New(render.WithFormat(format))
	if err != nil {
		return NewExitError(ExitUsage, err.Error())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(r, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeGeometry(w io.Writer, res model.GeometryResult) { //nolint:gocritic // hugeParam
	fmt.Fprintf(w, "Start (%.1f, %.1f) -> target (%.1f, %.1f)\n", res.Start.X, res.Start.Y, res.Target.X, res.Target.Y)
	for i, c := range res.Cushions {
		fmt.Fprintf(w, "  cushion %d at (%.1f, %.1f): in %.3f rad, out %.3f rad, speed %.2f, spin %.2f\n",
			i+1, c.Point.X, c.Point.Y, c.IncidenceAngle, c.ReflectionAngle, c.ResidualSpeed, c.SpinRequirement)
	}
	fmt.Fprintf(w, "Distance %.1f, time %.2fs, difficulty %.1f\n", res.Distance, res.EstimatedTime, res.Difficulty)
}
