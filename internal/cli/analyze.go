package cli

import (
	"fmt"
	"io"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/spf13/cobra"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var flags shotFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a full analysis of a shot",
		Long: `Analyze scores a shot with the heuristic rules and the neural predictor,
simulates its path and lists recommendations, likely mistakes and similar
successful shots. With online learning on, the shot is added to the
pattern memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shot, err := flags.shot()
			if err != nil {
				return err
			}
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			res, err := s.engine.Analyze(cmd.Context(), shot)
			if err != nil {
				_ = s.close(cmd.Context(), false)
				return err
			}
			if err := s.out.print(res, func(w io.Writer) { writeAnalysis(w, res) }); err != nil {
				_ = s.close(cmd.Context(), false)
				return err
			}
			return s.close(cmd.Context(), s.cfg.OnlineLearning)
		},
	}
	flags.bind(cmd)
	return cmd
}

// NewPredictCommand creates the predict command.
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	var flags shotFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Neural success probability of a shot",
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

			res, err := s.engine.Predict(cmd.Context(), shot)
			if err != nil {
				return err
			}
			return s.out.print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Predicted success: %d%% (p=%.4f)\n", res.Percent, res.Probability)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func writeAnalysis(w io.Writer, res model.AnalysisResult) { //nolint:gocritic // hugeParam
	fmt.Fprintf(w, "Success:     %d%% (confidence %d%%, neural %d%%)\n", res.SuccessPrediction, res.Confidence, res.NeuralPrediction)
	fmt.Fprintf(w, "Difficulty:  %.1f (%s)\n", res.Difficulty, res.DifficultyLevel)
	fmt.Fprintf(w, "Complexity:  %.1f %s\n", res.Complexity, res.ComplexityDescription)
	fmt.Fprintf(w, "Risk:        %.1f %s\n", res.Risk, res.RiskWarning)
	for _, f := range res.DifficultyFactors {
		fmt.Fprintf(w, "  factor: %s\n", f)
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, r := range res.Recommendations {
			fmt.Fprintf(w, "  [%s] %s\n", r.Priority, r.Text)
		}
	}
	if len(res.PotentialMistakes) > 0 {
		fmt.Fprintln(w, "Potential mistakes:")
		for _, m := range res.PotentialMistakes {
			fmt.Fprintf(w, "  %s (%s): %s\n", m.Kind, m.Severity, m.Suggestion)
		}
	}
	if len(res.SimilarShots) > 0 {
		fmt.Fprintln(w, "Similar shots:")
		for _, s := range res.SimilarShots {
			fmt.Fprintf(w, "  %s, %d rails, cue %.1f: %g%% success, similarity %d\n", s.Contact, s.Rails, s.Cue, s.SuccessRate, s.Similarity)
		}
	}
	for _, tip := range res.ExecutionTips {
		fmt.Fprintf(w, "Tip: %s\n", tip)
	}
}
