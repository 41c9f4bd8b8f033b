package service

import (
	"context"
	"fmt"

	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/domain/model"
)

// TaskHandler executes dispatched tasks on a private fork of an engine, so
// training on the worker side never touches the host's model.
type TaskHandler struct {
	engine *Engine
}

// TaskHandler forks e for use by dispatch workers.
func (e *Engine) TaskHandler() (*TaskHandler, error) {
	fork, err := e.fork()
	if err != nil {
		return nil, fmt.Errorf("fork engine: %w", err)
	}
	return &TaskHandler{engine: fork}, nil
}

// Handle runs p according to its kind.
func (h *TaskHandler) Handle(ctx context.Context, p model.Payload) (any, error) { //nolint:gocritic // hugeParam
	switch p.Kind {
	case model.KindAnalyze:
		shot, err := requireShot(p)
		if err != nil {
			return nil, err
		}
		return h.engine.Analyze(ctx, shot)
	case model.KindPredict:
		shot, err := requireShot(p)
		if err != nil {
			return nil, err
		}
		return h.engine.Predict(ctx, shot)
	case model.KindTrain:
		return h.train(ctx, p)
	case model.KindCalculatePath:
		shot, err := requireShot(p)
		if err != nil {
			return nil, err
		}
		return h.engine.Simulate(ctx, shot)
	case model.KindCalculateReflections:
		return h.engine.Reflections(p.Rails, p.Angle, p.Position)
	case model.KindCalculateAngles:
		shot, err := requireShot(p)
		if err != nil {
			return nil, err
		}
		return h.engine.Angles(shot)
	default:
		return nil, fmt.Errorf("%w: %q", dispatch.ErrUnknownKind, p.Kind)
	}
}

func (h *TaskHandler) train(ctx context.Context, p model.Payload) (model.TrainResult, error) { //nolint:gocritic // hugeParam
	rep, err := h.engine.Train(ctx, p.Samples, p.Epochs)
	if err != nil {
		return model.TrainResult{}, err
	}
	blob, err := h.engine.SerializeModel()
	if err != nil {
		return model.TrainResult{}, err
	}
	return model.TrainResult{
		Samples:     rep.Samples,
		Epochs:      rep.Epochs,
		InitialLoss: rep.InitialLoss,
		FinalLoss:   rep.FinalLoss,
		Model:       blob,
	}, nil
}

func requireShot(p model.Payload) (model.Shot, error) { //nolint:gocritic // hugeParam
	if p.Shot == nil {
		return model.Shot{}, fmt.Errorf("%w: %s task needs a shot", model.ErrValidation, p.Kind)
	}
	return *p.Shot, nil
}
