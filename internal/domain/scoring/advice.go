package scoring

import (
	"context"
	"fmt"

	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
)

// Recommend builds the ordered recommendation list for shot: matched rules,
// contact profile, note keywords and at most one correction. Entries with
// the same text are kept once.
func (s *Scorer) Recommend(ctx context.Context, shot model.Shot) []model.Recommendation {
	var out []model.Recommendation

	for _, r := range s.rules.Matching(ctx, s.kb.Rules(), shot) {
		out = append(out, model.Recommendation{
			Kind:     model.RecommendRule,
			Priority: model.PriorityHigh,
			Text:     r.Advice,
			Tips:     r.Tips,
		})
	}

	if c, ok := s.kb.Contact(shot.ContactLabel()); ok {
		out = append(out, model.Recommendation{
			Kind:     model.RecommendContact,
			Priority: model.PriorityMedium,
			Text:     c.Description,
			Tips:     []string{fmt.Sprintf("Historical success rate: %g%%", c.SuccessRate)},
		})
	}

	if s.kb.MentionsSpin(shot.Notes) {
		out = append(out, model.Recommendation{
			Kind:     model.RecommendSpin,
			Priority: model.PriorityMedium,
			Text:     "For good english: a long, smooth follow-through",
			Tips:     []string{"Do not stop the cue abruptly", "Follow the object ball's motion"},
		})
	}
	if s.kb.MentionsPower(shot.Notes) {
		out = append(out, model.Recommendation{
			Kind:     model.RecommendPower,
			Priority: model.PriorityHigh,
			Text:     "Control power according to distance",
			Tips:     []string{"Short distances: 60-70%", "Long distances: 80-90%"},
		})
	}

	if m, ok := s.correction(shot); ok {
		out = append(out, model.Recommendation{
			Kind:     model.RecommendCorrection,
			Priority: model.PriorityHigh,
			Text:     "Avoid: " + m.Trigger,
			Tips:     []string{"Correction: " + m.Correction, "Result: " + m.ExpectedImprovement},
		})
	}

	return Dedupe(out)
}

// correction picks the single applicable mistake pattern. Overpower wins
// over excessive spin.
func (s *Scorer) correction(shot model.Shot) (knowledge.MistakePattern, bool) {
	if shot.Cue > 3.5 {
		if m, ok := s.kb.Mistake(knowledge.MistakeOverpower); ok {
			return m, true
		}
	}
	if s.kb.MentionsSpin(shot.Notes) {
		if m, ok := s.kb.Mistake(knowledge.MistakeExcessiveSpin); ok {
			return m, true
		}
	}
	return knowledge.MistakePattern{}, false
}

// Mistakes flags execution mistakes. The checks are independent.
func (s *Scorer) Mistakes(shot model.Shot) []model.Mistake {
	var out []model.Mistake
	if shot.Cue > 3.5 && shot.Rails == 1 {
		out = append(out, model.Mistake{
			Kind:        "overpower",
			Description: "Excessive power for a one-rail shot",
			Severity:    "medium",
			Suggestion:  "Reduce power to 2.5-3.0",
		})
	}
	if shot.Cue < 1.5 && shot.Rails >= 3 {
		out = append(out, model.Mistake{
			Kind:        "underpower",
			Description: "Power too weak for a multi-rail shot",
			Severity:    "high",
			Suggestion:  "Raise power to at least 2.5",
		})
	}
	return out
}

// Describe turns scores into labels and execution tips.
func (s *Scorer) Describe(shot model.Shot, sc Scores) Description {
	return Description{
		DifficultyLevel:       difficultyLevel(sc.Difficulty),
		DifficultyFactors:     difficultyFactors(shot),
		ComplexityDescription: complexityDescription(sc.Complexity),
		RiskWarning:           riskWarning(sc.Risk),
		ExecutionTips:         executionTips(shot),
	}
}

// Dedupe drops recommendations whose text already appeared, keeping order.
func Dedupe(in []model.Recommendation) []model.Recommendation {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Recommendation, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r.Text]; ok {
			continue
		}
		seen[r.Text] = struct{}{}
		out = append(out, r)
	}
	return out
}

func difficultyLevel(score float64) string {
	switch {
	case score <= 3:
		return "easy"
	case score <= 6:
		return "medium"
	case score <= 8:
		return "hard"
	default:
		return "very hard"
	}
}

func difficultyFactors(shot model.Shot) []string {
	var factors []string
	if shot.Rails >= 3 {
		factors = append(factors, "multiple rails")
	}
	if shot.Cue > 3.5 {
		factors = append(factors, "high power")
	}
	if shot.Cue < 1.5 {
		factors = append(factors, "fine control")
	}
	if len(factors) == 0 {
		return []string{"standard"}
	}
	return factors
}

func complexityDescription(score float64) string {
	switch {
	case score <= 4:
		return "simple"
	case score <= 7:
		return "moderate"
	default:
		return "complex"
	}
}

func riskWarning(score float64) string {
	switch {
	case score > 7:
		return "high"
	case score > 4:
		return "medium"
	default:
		return "low"
	}
}

func executionTips(shot model.Shot) []string {
	tips := []string{
		"Before the shot: take a deep breath and pick your target clearly",
		"During the shot: a smooth stroke with follow-through",
		"After the shot: watch the ball's path and learn from the result",
	}
	switch {
	case shot.Rails == 1:
		tips = append(tips, "Focus on the contact point on the rail", "Medium power gives the best results")
	case shot.Rails == 2:
		tips = append(tips, "Work out the second reflection angle first", "Use light english to adjust the path")
	case shot.Rails >= 3:
		tips = append(tips, "Precise timing matters more than power", "Treat the second rail as the turning point")
	}
	return tips
}
