package loadgen

import (
	"fmt"

	"github.com/okian/railshot/internal/domain/model"
)

// Verify lists the range and shape invariants res breaks. An empty result
// means the analysis is well-formed.
func Verify(res model.AnalysisResult) []string { //nolint:gocritic // hugeParam
	var out []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			out = append(out, fmt.Sprintf(format, args...))
		}
	}

	check(res.SuccessPrediction >= 20 && res.SuccessPrediction <= 95, "success %d outside [20,95]", res.SuccessPrediction)
	check(res.Confidence >= 30 && res.Confidence <= 95, "confidence %d outside [30,95]", res.Confidence)
	check(res.NeuralPrediction >= 0 && res.NeuralPrediction <= 100, "neural %d outside [0,100]", res.NeuralPrediction)
	for name, v := range map[string]float64{"difficulty": res.Difficulty, "complexity": res.Complexity, "risk": res.Risk} {
		check(v >= 0 && v <= 10, "%s %.2f outside [0,10]", name, v)
	}
	check(len(res.SimilarShots) <= 3, "%d similar shots", len(res.SimilarShots))
	for _, s := range res.SimilarShots {
		check(s.Similarity >= 0 && s.Similarity <= 100, "similarity %d outside [0,100]", s.Similarity)
	}
	seen := make(map[string]bool, len(res.Recommendations))
	for _, r := range res.Recommendations {
		check(!seen[r.Text], "duplicate recommendation %q", r.Text)
		seen[r.Text] = true
	}
	check(res.PotentialMistakes != nil, "potential mistakes is null")
	check(len(res.Geometry.Path) >= 2, "geometry path has %d points", len(res.Geometry.Path))
	return out
}
