// Package scoring computes the closed-form heuristic profile of a shot:
// difficulty, complexity, risk and success prediction, plus the advice
// derived from the knowledge base.
package scoring

import (
	"context"
	"math"

	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/rules"
)

// Scoring constants. They are empirical and kept for parity with recorded
// predictions.
const (
	DefaultLearningRate = 0.1

	maxScore = 10.0

	baseSuccess         = 75.0
	perRuleBonus        = 5.0
	contactBaseline     = 80.0
	perExtraRailPenalty = 8.0
	extremeCuePenalty   = 10.0
	midCueBonus         = 8.0
	minSuccess          = 20.0
	maxSuccess          = 95.0

	baseConfidence    = 70.0
	perSimilarBonus   = 5.0
	maxSimilarBonus   = 20.0
	knownContactBonus = 5.0
	minConfidence     = 30.0
	maxConfidence     = 95.0
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithKnowledge sets the knowledge base.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(s *Scorer) {
		if kb != nil {
			s.kb = kb
		}
	}
}

// WithRules sets the rule engine.
func WithRules(e *rules.Engine) Option {
	return func(s *Scorer) {
		if e != nil {
			s.rules = e
		}
	}
}

// WithLearningRate sets the scorer's own learning rate. It is independent of
// the neural predictor's rate.
func WithLearningRate(rate float64) Option {
	return func(s *Scorer) {
		if rate > 0 {
			s.learningRate = rate
		}
	}
}

// Scores is the numeric heuristic profile of a shot.
type Scores struct {
	Difficulty        float64
	Complexity        float64
	Risk              float64
	SuccessPrediction int
	MatchedRules      int
}

// Description is the human-readable summary of a shot's scores.
type Description struct {
	DifficultyLevel       string
	DifficultyFactors     []string
	ComplexityDescription string
	RiskWarning           string
	ExecutionTips         []string
}

// Scorer evaluates shots against a knowledge base.
type Scorer struct {
	kb           *knowledge.Base
	rules        *rules.Engine
	learningRate float64
}

// New creates a scorer over the built-in knowledge base and predicates.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		learningRate: DefaultLearningRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kb == nil {
		s.kb = knowledge.Default()
	}
	if s.rules == nil {
		s.rules = rules.New()
	}
	return s
}

// LearningRate returns the scorer's learning rate.
func (s *Scorer) LearningRate() float64 { return s.learningRate }

// Knowledge returns the knowledge base the scorer reads.
func (s *Scorer) Knowledge() *knowledge.Base { return s.kb }

// Score computes the heuristic profile of shot. Cue terms use the raw
// measurement.
func (s *Scorer) Score(ctx context.Context, shot model.Shot) Scores {
	rails := float64(shot.Rails)
	cue := shot.Cue
	contact, hasContact := s.kb.Contact(shot.ContactLabel())

	difficulty := 2*(rails-1) + 0.5*math.Abs(cue-2.5)
	if hasContact {
		difficulty += contact.Difficulty / 2
	}

	complexity := 1.5 * rails
	if cue < 1 || cue > 4 {
		complexity++
	}
	if s.kb.MentionsHard(shot.Notes) {
		complexity += 1.5
	}

	risk := 1.2 * rails
	if cue > 3.5 {
		risk += 1.5
	}
	if cue < 1 {
		risk++
	}
	if shot.Rails == 1 {
		risk *= 0.7
	}

	matched := len(s.rules.Matching(ctx, s.kb.Rules(), shot))
	success := baseSuccess + perRuleBonus*float64(matched)
	if hasContact {
		success += (contact.SuccessRate - contactBaseline) / 2
	}
	success -= perExtraRailPenalty * (rails - 1)
	switch {
	case cue < 1 || cue > 4:
		success -= extremeCuePenalty
	case cue >= 2 && cue <= 3:
		success += midCueBonus
	}

	return Scores{
		Difficulty:        round1(clamp(difficulty, 0, maxScore)),
		Complexity:        clamp(complexity, 0, maxScore),
		Risk:              round1(clamp(risk, 0, maxScore)),
		SuccessPrediction: int(clamp(math.Round(success), minSuccess, maxSuccess)),
		MatchedRules:      matched,
	}
}

// Confidence estimates how much the prediction can be trusted given the
// number of similar successful shots found.
func (s *Scorer) Confidence(shot model.Shot, similar int) int {
	c := baseConfidence
	if similar > 0 {
		c += math.Min(maxSimilarBonus, perSimilarBonus*float64(similar))
	}
	if _, ok := s.kb.Contact(shot.ContactLabel()); ok {
		c += knownContactBonus
	}
	if shot.Cue < 1 || shot.Cue > 4 {
		c -= extremeCuePenalty
	}
	return int(clamp(c, minConfidence, maxConfidence))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
