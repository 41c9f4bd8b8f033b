package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
)

const filePermission = 0o600

type dispatchReply struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Result  json.RawMessage `json:"result"`
}

type outcome struct {
	index      int
	status     int
	err        error
	violations []string
}

// Run checks health, generates shots, submits them concurrently and
// verifies every analysis. It returns ErrViolations when any result breaks
// an invariant.
func Run(ctx context.Context, cfg Config) (*Stats, error) { //nolint:gocritic // hugeParam
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("shots", cfg.Shots),
		logger.Int("workers", cfg.Workers),
		logger.String("mode", cfg.Mode))

	status, err := c.get(ctx, "/healthz")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: healthz returned %d", ErrUnhealthy, status)
	}

	shots := GenerateShots(cfg.Shots, cfg.Seed)
	stats.Generated = len(shots)
	if cfg.OutputFile != "" {
		if err := saveShots(cfg.OutputFile, shots); err != nil {
			log.Warn(ctx, "failed to save shots", logger.Error(err))
		}
	}

	jobs := make(chan int)
	results := make(chan outcome, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- submit(ctx, c, cfg.Mode, i, shots[i])
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range shots {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		stats.Submitted++
		switch {
		case o.err != nil:
			stats.Failed++
			log.Debug(ctx, "submission failed", logger.Int("shot", o.index), logger.Error(o.err))
		case o.status != http.StatusOK:
			stats.Rejected++
		default:
			stats.Successful++
			for _, v := range o.violations {
				stats.Violations = append(stats.Violations, fmt.Sprintf("shot %d: %s", o.index, v))
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d found", ErrViolations, len(stats.Violations))
	}
	return stats, nil
}

func submit(ctx context.Context, c *client, mode string, index int, shot model.Shot) outcome { //nolint:gocritic // hugeParam
	o := outcome{index: index}
	var res model.AnalysisResult
	if mode == ModeAnalyze {
		o.status, o.err = c.post(ctx, "/analyze", shot, &res)
	} else {
		var reply dispatchReply
		o.status, o.err = c.post(ctx, "/dispatch", model.Payload{Kind: model.KindAnalyze, Shot: &shot}, &reply)
		if o.err == nil && o.status == http.StatusOK {
			o.err = json.Unmarshal(reply.Result, &res)
		}
	}
	if o.err == nil && o.status == http.StatusOK {
		o.violations = Verify(res)
	}
	return o
}

func saveShots(path string, shots []model.Shot) error {
	data, err := json.MarshalIndent(shots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePermission)
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("shotsPerSecond", perSecond))
}
