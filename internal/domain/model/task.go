package model

import "time"

// Kind names a unit of work accepted by the dispatcher.
type Kind string

// Recognized work kinds. The first three run the prediction path, the rest
// run the geometry path.
const (
	KindAnalyze              Kind = "analyze"
	KindTrain                Kind = "train"
	KindPredict              Kind = "predict"
	KindCalculatePath        Kind = "calculatePath"
	KindCalculateReflections Kind = "calculateReflections"
	KindCalculateAngles      Kind = "calculateAngles"
)

// TrainingSample pairs a shot with an observed success in [0, 1].
type TrainingSample struct {
	Shot    Shot    `json:"shot"`
	Success float64 `json:"success"`
}

// Payload is the value record carried by a task. Only the fields used by
// Kind are read.
type Payload struct {
	Kind    Kind             `json:"kind"`
	Shot    *Shot            `json:"shot,omitempty"`
	Samples []TrainingSample `json:"samples,omitempty"`
	Epochs  int              `json:"epochs,omitempty"`

	// calculateReflections inputs.
	Rails    int     `json:"rails,omitempty"`
	Angle    float64 `json:"angle,omitempty"`
	Position Point   `json:"position"`
}

// Clone returns a deep copy so nothing mutable is shared across the
// dispatch boundary.
func (p Payload) Clone() Payload {
	out := p
	if p.Shot != nil {
		s := *p.Shot
		out.Shot = &s
	}
	if p.Samples != nil {
		out.Samples = make([]TrainingSample, len(p.Samples))
		copy(out.Samples, p.Samples)
	}
	return out
}

// Request is a task submitted for asynchronous execution.
type Request struct {
	ID          string    `json:"id"`
	Payload     Payload   `json:"payload"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Response is the completion of a Request, correlated by ID.
type Response struct {
	ID               string    `json:"id"`
	Result           any       `json:"result,omitempty"`
	Err              error     `json:"-"`
	Error            string    `json:"error,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`
	CompletedAt      time.Time `json:"completed_at"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`
	Success          bool      `json:"success"`
}

// PredictResult is the result of a predict task.
type PredictResult struct {
	Probability float64 `json:"probability"`
	Percent     int     `json:"percent"`
}

// TrainResult is the result of a train task. Model holds the serialized
// weights produced by the worker-side model.
type TrainResult struct {
	Samples     int     `json:"samples"`
	Epochs      int     `json:"epochs"`
	InitialLoss float64 `json:"initial_loss"`
	FinalLoss   float64 `json:"final_loss"`
	Model       []byte  `json:"model,omitempty"`
}
