package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/railshot/internal/adapters/render"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
	"github.com/spf13/cobra"
)

// NewTrainCommand creates the train command.
func NewTrainCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		samplesPath string
		epochs      int
		lossPlot    string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the neural predictor",
		Long: `Train fits the neural predictor on labelled samples read from a JSON file
(an array of {"shot": {...}, "success": 0..1}), or on the pattern memory
when no file is given. The trained weights are written back to the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var samples []model.TrainingSample
			if samplesPath != "" {
				var err error
				if samples, err = readSamples(cmd, samplesPath); err != nil {
					return err
				}
			}
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}

			var rep neural.Report
			if len(samples) == 0 {
				rep, err = s.engine.TrainFromMemory(cmd.Context(), epochs)
			} else {
				rep, err = s.engine.Train(cmd.Context(), samples, epochs)
			}
			if err != nil {
				_ = s.close(cmd.Context(), false)
				return err
			}
			if lossPlot != "" {
				if err := writePlot(lossPlot, func(r *render.Renderer, w io.Writer) error {
					return r.Loss(w, rep)
				}); err != nil {
					_ = s.close(cmd.Context(), false)
					return err
				}
			}
			if err := s.out.print(rep, func(w io.Writer) {
				fmt.Fprintf(w, "Trained on %d samples for %d epochs: loss %.6f -> %.6f\n",
					rep.Samples, rep.Epochs, rep.InitialLoss, rep.FinalLoss)
			}); err != nil {
				_ = s.close(cmd.Context(), false)
				return err
			}
			return s.close(cmd.Context(), true)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&samplesPath, "samples", "s", "", "JSON file of training samples, - for stdin")
	fs.IntVarP(&epochs, "epochs", "e", 0, "epochs (0 uses training_epochs)")
	fs.StringVar(&lossPlot, "loss-plot", "", "write the loss curve (.png, .svg or .pdf)")
	return cmd
}

func readSamples(cmd *cobra.Command, path string) ([]model.TrainingSample, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var samples []model.TrainingSample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, NewExitError(ExitUsage, fmt.Sprintf("decode samples %s: %v", path, err))
	}
	return samples, nil
}
