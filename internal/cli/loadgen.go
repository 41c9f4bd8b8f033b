package cli

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/okian/railshot/internal/loadgen"
	"github.com/spf13/cobra"
)

// NewLoadgenCommand creates the loadgen command.
func NewLoadgenCommand(rootOpts *RootOptions) *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Drive a running server with generated shots",
		Long: `Loadgen generates random valid shots, submits them concurrently to a
running server and checks every analysis against the documented score
ranges. It exits non-zero when any result breaks them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadgen.Run(cmd.Context(), cfg)
			if stats != nil {
				out := printer{format: rootOpts.Format, w: cmd.OutOrStdout()}
				if perr := out.print(stats, func(w io.Writer) { writeLoadStats(w, stats) }); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	fs.IntVarP(&cfg.Shots, "shots", "n", 1000, "number of shots to submit")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent submitters")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	fs.StringVar(&cfg.Mode, "mode", loadgen.ModeAnalyze, "submission path (analyze|dispatch)")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "shot generator seed")
	fs.StringVarP(&cfg.OutputFile, "output", "o", "", "write the generated shots as JSON")
	return cmd
}

func writeLoadStats(w io.Writer, s *loadgen.Stats) {
	fmt.Fprintf(w, "Submitted %d of %d shots in %s: %d ok, %d rejected, %d failed\n",
		s.Submitted, s.Generated, s.Duration.Round(time.Millisecond), s.Successful, s.Rejected, s.Failed)
	for _, v := range s.Violations {
		fmt.Fprintf(w, "  violation: %s\n", v)
	}
}
