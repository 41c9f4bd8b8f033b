// Package service composes the analysis components into the Engine used by
// the HTTP host, the CLI and the task dispatcher.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/railshot/internal/domain/features"
	"github.com/okian/railshot/internal/domain/geometry"
	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/memory"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
	"github.com/okian/railshot/internal/domain/rules"
	"github.com/okian/railshot/internal/domain/scoring"
	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

// Engine runs analyses. The knowledge base is read-only; the neural model
// and the pattern memory only change through Train, TrainFromMemory, the
// Restore methods and the online-learning append, all serialized by mu.
// Training runs on a copy of the model and only holds mu to swap it in.
type Engine struct {
	mu sync.RWMutex
	// trainMu serializes model replacement so concurrent trainings never
	// drop each other's updates.
	trainMu sync.Mutex

	kb            *knowledge.Base
	rules         *rules.Engine
	heuristicRate float64
	scorer        *scoring.Scorer
	extractor     features.Extractor
	model         *neural.Model
	geometry      *geometry.Engine
	memory        *memory.Memory

	online    bool
	epochs    int
	maxEpochs int
	now       func() time.Time
	logger    logger.Logger

	analyses  atomic.Int64
	trainings atomic.Int64
}

// DefaultMaxEpochs bounds the epochs of a single training call.
const DefaultMaxEpochs = 1000

// Stats is a snapshot of the engine state.
type Stats struct {
	Analyses              int64   `json:"analyses"`
	Trainings             int64   `json:"trainings"`
	MemorySize            int     `json:"memory_size"`
	MemoryCapacity        int     `json:"memory_capacity"`
	OnlineLearning        bool    `json:"online_learning"`
	ModelUnits            []int   `json:"model_units"`
	NeuralLearningRate    float64 `json:"neural_learning_rate"`
	HeuristicLearningRate float64 `json:"heuristic_learning_rate"`
	Rules                 int     `json:"rules"`
	Patterns              int     `json:"patterns"`
}

// New builds an engine. Components not supplied through options use their
// defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		heuristicRate: scoring.DefaultLearningRate,
		epochs:        neural.DefaultEpochs,
		maxEpochs:     DefaultMaxEpochs,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	if e.kb == nil {
		e.kb = knowledge.Default()
	}
	if e.rules == nil {
		e.rules = rules.New()
	}
	if e.model == nil {
		e.model = neural.New(neural.WithEpochs(e.epochs))
	}
	if e.geometry == nil {
		e.geometry = geometry.New()
	}
	if e.memory == nil {
		e.memory = memory.New()
	}
	e.scorer = defaultScorer(e)
	e.extractor = features.NewExtractor(e.kb)
	return e
}

// Knowledge returns the knowledge base.
func (e *Engine) Knowledge() *knowledge.Base { return e.kb }

// Memory returns the pattern memory.
func (e *Engine) Memory() *memory.Memory { return e.memory }

// Table returns the table the geometry engine traces on.
func (e *Engine) Table() geometry.Table { return e.geometry.Table() }

// Analyze validates shot and runs the heuristic, neural and geometric
// paths over it. When online learning is on, the shot is remembered after
// scoring.
func (e *Engine) Analyze(ctx context.Context, shot model.Shot) (model.AnalysisResult, error) {
	start := time.Now()
	if err := shot.Validate(); err != nil {
		metrics.RecordValidationError()
		return model.AnalysisResult{}, err
	}

	e.mu.RLock()
	sc := e.scorer.Score(ctx, shot)
	desc := e.scorer.Describe(shot, sc)
	recs := e.scorer.Recommend(ctx, shot)
	mistakes := e.scorer.Mistakes(shot)
	prob, err := e.model.Forward(e.extractor.Extract(shot).Slice())
	geo := e.geometry.SimulateShot(ctx, shot)
	similar := e.memory.Similar(shot, e.kb.Patterns(), memory.DefaultLimit)
	e.mu.RUnlock()
	if err != nil {
		metrics.RecordErrorByComponent("engine", "forward")
		return model.AnalysisResult{}, fmt.Errorf("neural forward: %w", err)
	}

	res := model.AnalysisResult{
		Difficulty:            sc.Difficulty,
		Complexity:            sc.Complexity,
		Risk:                  sc.Risk,
		SuccessPrediction:     sc.SuccessPrediction,
		Confidence:            e.scorer.Confidence(shot, len(similar)),
		NeuralPrediction:      percent(prob),
		DifficultyLevel:       desc.DifficultyLevel,
		DifficultyFactors:     desc.DifficultyFactors,
		ComplexityDescription: desc.ComplexityDescription,
		RiskWarning:           desc.RiskWarning,
		ExecutionTips:         desc.ExecutionTips,
		Recommendations:       scoring.Dedupe(append(recs, history(similar)...)),
		PotentialMistakes:     mistakes,
		SimilarShots:          similar,
		Geometry:              geo,
		AnalyzedAt:            e.now().UTC(),
	}
	if res.PotentialMistakes == nil {
		res.PotentialMistakes = []model.Mistake{}
	}

	if e.online {
		e.mu.Lock()
		e.memory.Record(shot, sc.SuccessPrediction)
		e.mu.Unlock()
	}

	e.analyses.Add(1)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordAnalysis(elapsed, res.SuccessPrediction)
	e.logger.Debug(ctx, "shot analyzed",
		logger.Int("rails", shot.Rails),
		logger.Int("success", res.SuccessPrediction),
		logger.Int("neural", res.NeuralPrediction),
		logger.Float64("latency_ms", elapsed),
	)
	return res, nil
}

// Predict runs only the neural path.
func (e *Engine) Predict(ctx context.Context, shot model.Shot) (model.PredictResult, error) {
	if err := shot.Validate(); err != nil {
		metrics.RecordValidationError()
		return model.PredictResult{}, err
	}
	e.mu.RLock()
	prob, err := e.model.Forward(e.extractor.Extract(shot).Slice())
	e.mu.RUnlock()
	if err != nil {
		return model.PredictResult{}, fmt.Errorf("neural forward: %w", err)
	}
	return model.PredictResult{Probability: prob, Percent: percent(prob)}, nil
}

// Simulate runs only the geometric path.
func (e *Engine) Simulate(ctx context.Context, shot model.Shot) (model.GeometryResult, error) {
	if err := shot.Validate(); err != nil {
		metrics.RecordValidationError()
		return model.GeometryResult{}, err
	}
	return e.geometry.SimulateShot(ctx, shot), nil
}

// Reflections lists the bounces of a ray starting at position.
func (e *Engine) Reflections(rails int, angle float64, position model.Point) ([]model.Bounce, error) {
	if err := model.ValidateReflection(rails, angle, position); err != nil {
		metrics.RecordValidationError()
		return nil, err
	}
	return e.geometry.Reflections(rails, angle, position), nil
}

// Angles returns the aiming angles of shot.
func (e *Engine) Angles(shot model.Shot) (model.Angles, error) {
	if err := shot.Validate(); err != nil {
		metrics.RecordValidationError()
		return model.Angles{}, err
	}
	return geometry.Angles(shot.WhiteBall, shot.Aim, shot.Cue), nil
}

// Train runs the backward pass over samples. Zero epochs uses the engine
// default; more than the engine maximum is rejected with
// neural.ErrInvalidEpochs. Every shot is validated before the model is
// touched. Analyses keep using the current model until training finishes.
func (e *Engine) Train(ctx context.Context, samples []model.TrainingSample, epochs int) (neural.Report, error) {
	if len(samples) == 0 {
		return neural.Report{}, neural.ErrEmptyDataset
	}
	set := make([]neural.Sample, len(samples))
	for i, s := range samples {
		if err := s.Shot.Validate(); err != nil {
			metrics.RecordValidationError()
			return neural.Report{}, fmt.Errorf("sample %d: %w", i, err)
		}
		set[i] = neural.Sample{Input: e.extractor.Extract(s.Shot).Slice(), Target: s.Success}
	}
	if epochs <= 0 {
		epochs = e.epochs
	}
	if epochs > e.maxEpochs {
		return neural.Report{}, fmt.Errorf("%w: %d exceeds %d", neural.ErrInvalidEpochs, epochs, e.maxEpochs)
	}

	start := time.Now()
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	e.mu.RLock()
	next := e.model.Clone()
	e.mu.RUnlock()

	rep, err := next.Train(set, epochs)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "train")
		return rep, err
	}
	e.mu.Lock()
	e.model = next
	e.mu.Unlock()

	e.trainings.Add(1)
	metrics.RecordTraining(rep.Samples, rep.FinalLoss)
	e.logger.Info(ctx, "model trained",
		logger.Int("samples", rep.Samples),
		logger.Int("epochs", rep.Epochs),
		logger.Float64("initial_loss", rep.InitialLoss),
		logger.Float64("final_loss", rep.FinalLoss),
		logger.Duration("took", time.Since(start)),
	)
	return rep, nil
}

// TrainFromMemory trains on the remembered shots, labelled with their
// predicted success.
func (e *Engine) TrainFromMemory(ctx context.Context, epochs int) (neural.Report, error) {
	entries := e.memory.Entries()
	samples := make([]model.TrainingSample, len(entries))
	for i, en := range entries {
		samples[i] = model.TrainingSample{Shot: en.Shot, Success: float64(en.PredictedSuccess) / 100}
	}
	return e.Train(ctx, samples, epochs)
}

// SerializeModel encodes the neural model.
func (e *Engine) SerializeModel() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model.MarshalBinary()
}

// RestoreModel replaces the neural model with an encoded one. The current
// model is kept when data is invalid.
func (e *Engine) RestoreModel(data []byte) error {
	m := neural.New()
	if err := m.UnmarshalBinary(data); err != nil {
		return err
	}
	if m.Inputs() != features.Size {
		return fmt.Errorf("%w: model takes %d inputs, features have %d", neural.ErrShapeMismatch, m.Inputs(), features.Size)
	}
	if err := m.CheckArchitecture(); err != nil {
		return err
	}
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.mu.Lock()
	e.model = m
	e.mu.Unlock()
	return nil
}

// SerializeMemory encodes the pattern memory.
func (e *Engine) SerializeMemory() ([]byte, error) {
	return e.memory.MarshalBinary()
}

// RestoreMemory replaces the pattern memory contents.
func (e *Engine) RestoreMemory(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memory.UnmarshalBinary(data)
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	units := e.model.Units()
	rate := e.model.LearningRate()
	e.mu.RUnlock()
	return Stats{
		Analyses:              e.analyses.Load(),
		Trainings:             e.trainings.Load(),
		MemorySize:            e.memory.Len(),
		MemoryCapacity:        e.memory.Capacity(),
		OnlineLearning:        e.online,
		ModelUnits:            units,
		NeuralLearningRate:    rate,
		HeuristicLearningRate: e.scorer.LearningRate(),
		Rules:                 len(e.kb.Rules()),
		Patterns:              len(e.kb.Patterns()),
	}
}

// fork returns an engine sharing the read-only components with e but
// owning a copy of the model and the memory.
func (e *Engine) fork() (*Engine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	mem := memory.New(memory.WithCapacity(e.memory.Capacity()))
	blob, err := e.memory.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := mem.UnmarshalBinary(blob); err != nil {
		return nil, err
	}
	return &Engine{
		kb:            e.kb,
		rules:         e.rules,
		heuristicRate: e.heuristicRate,
		scorer:        e.scorer,
		extractor:     e.extractor,
		model:         e.model.Clone(),
		geometry:      e.geometry,
		memory:        mem,
		epochs:        e.epochs,
		maxEpochs:     e.maxEpochs,
		now:           e.now,
		logger:        e.logger.Named("worker"),
	}, nil
}

func percent(p float64) int {
	return int(math.Round(p * 100))
}

// history turns the closest similar shot into a recommendation.
func history(similar []model.SimilarShot) []model.Recommendation {
	if len(similar) == 0 {
		return nil
	}
	best := similar[0]
	for _, s := range similar[1:] {
		if s.Similarity > best.Similarity {
			best = s
		}
	}
	source := "pattern"
	if best.FromMemory {
		source = "analysis"
	}
	return []model.Recommendation{{
		Kind:     model.RecommendHistory,
		Priority: model.PriorityLow,
		Text:     fmt.Sprintf("A similar %d-rail shot from %s succeeded at %g%%", best.Rails, best.Contact, best.SuccessRate),
		Tips: []string{
			fmt.Sprintf("Cue used: %g", best.Cue),
			fmt.Sprintf("Similarity: %d%% (past %s)", best.Similarity, source),
		},
	}}
}
