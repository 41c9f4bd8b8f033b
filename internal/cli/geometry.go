package cli

import (
	"fmt"
	"io"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/spf13/cobra"
)

// NewAnglesCommand creates the angles command.
func NewAnglesCommand(rootOpts *RootOptions) *cobra.Command {
	var flags shotFlags
	cmd := &cobra.Command{
		Use:   "angles",
		Short: "Aiming angles of a shot, in degrees",
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

			a, err := s.engine.Angles(shot)
			if err != nil {
				return err
			}
			return s.out.print(a, func(w io.Writer) {
				fmt.Fprintf(w, "Base %.2f, cue %.2f, final %.2f\n", a.Base, a.Cue, a.Final)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

// NewReflectionsCommand creates the reflections command.
func NewReflectionsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		rails int
		angle float64
		x, y  float64
	)
	cmd := &cobra.Command{
		Use:   "reflections",
		Short: "Bounce sequence from an angle and a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pos := model.Point{X: x, Y: y}
			if err := model.ValidateReflection(rails, angle, pos); err != nil {
				return &ExitError{Code: ExitUsage, Message: "invalid reflection", Err: err}
			}
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = s.close(cmd.Context(), false) }()

			bounces, err := s.engine.Reflections(rails, angle, pos)
			if err != nil {
				return err
			}
			return s.out.print(bounces, func(w io.Writer) {
				for _, b := range bounces {
					fmt.Fprintf(w, "bounce %d: angle %.3f rad at (%.1f, %.1f), energy loss %.0f%%\n",
						b.Number, b.Angle, b.Position.X, b.Position.Y, b.EnergyLoss*100)
				}
			})
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&rails, "rails", "r", 3, "number of bounces")
	fs.Float64Var(&angle, "angle", 0.7854, "initial heading in radians")
	fs.Float64Var(&x, "x", 0, "start x")
	fs.Float64Var(&y, "y", 0, "start y")
	return cmd
}
