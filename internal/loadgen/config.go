// Package loadgen drives a running engine over HTTP with generated shots
// and checks every analysis it gets back.
package loadgen

import (
	"errors"
	"time"
)

// Submission modes.
const (
	ModeAnalyze  = "analyze"
	ModeDispatch = "dispatch"
)

// Sentinel kinds for load generation errors.
var (
	ErrUnhealthy  = errors.New("service unhealthy")
	ErrViolations = errors.New("invariant violations")
	ErrConfig     = errors.New("invalid load config")
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Shots      int           // Number of shots to generate
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Mode       string        // ModeAnalyze or ModeDispatch
	Seed       uint64        // Generator seed
	OutputFile string        // Optional JSON dump of the generated shots
}

// Stats holds run statistics.
type Stats struct {
	Generated  int           `json:"generated"`
	Submitted  int           `json:"submitted"`
	Successful int           `json:"successful"`
	Rejected   int           `json:"rejected"`
	Failed     int           `json:"failed"`
	Violations []string      `json:"violations,omitempty"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrConfig, errors.New("base url is required"))
	case c.Shots <= 0:
		return errors.Join(ErrConfig, errors.New("shots must be positive"))
	case c.Mode != ModeAnalyze && c.Mode != ModeDispatch:
		return errors.Join(ErrConfig, errors.New("mode must be analyze or dispatch"))
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
