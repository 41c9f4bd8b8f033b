package model

import "time"

// Priority orders recommendations.
type Priority string

// Recommendation priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecommendationKind tags where a recommendation came from.
type RecommendationKind string

// Recommendation kinds.
const (
	RecommendRule       RecommendationKind = "rule"
	RecommendContact    RecommendationKind = "contact"
	RecommendSpin       RecommendationKind = "spin"
	RecommendPower      RecommendationKind = "power"
	RecommendCorrection RecommendationKind = "correction"
	RecommendHistory    RecommendationKind = "history"
)

// Recommendation is one piece of advice attached to an analysis.
type Recommendation struct {
	Kind     RecommendationKind `json:"kind"`
	Priority Priority           `json:"priority"`
	Text     string             `json:"text"`
	Tips     []string           `json:"tips,omitempty"`
}

// Mistake is a potential execution error detected for a shot.
type Mistake struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Suggestion  string `json:"suggestion"`
}

// SimilarShot is a stored successful pattern resembling the analyzed shot.
type SimilarShot struct {
	Contact     string  `json:"contact"`
	Target      string  `json:"target,omitempty"`
	Cue         float64 `json:"cue"`
	Rails       int     `json:"rails"`
	SuccessRate float64 `json:"success_rate"`
	Similarity  int     `json:"similarity"`
	FromMemory  bool    `json:"from_memory"`
}

// AnalysisResult aggregates every output of a single analysis call.
type AnalysisResult struct {
	Difficulty        float64 `json:"difficulty"`
	Complexity        float64 `json:"complexity"`
	Risk              float64 `json:"risk"`
	SuccessPrediction int     `json:"success_prediction"`
	Confidence        int     `json:"confidence"`
	NeuralPrediction  int     `json:"neural_prediction"`

	DifficultyLevel       string   `json:"difficulty_level"`
	DifficultyFactors     []string `json:"difficulty_factors"`
	ComplexityDescription string   `json:"complexity_description"`
	RiskWarning           string   `json:"risk_warning"`
	ExecutionTips         []string `json:"execution_tips"`

	Recommendations   []Recommendation `json:"recommendations"`
	PotentialMistakes []Mistake        `json:"potential_mistakes"`
	SimilarShots      []SimilarShot    `json:"similar_shots"`

	Geometry   GeometryResult `json:"geometry"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}
