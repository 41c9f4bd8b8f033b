// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
)

const (
	maxBodyBytes           = 1 << 20
	defaultDispatchTimeout = 5 * time.Second
)

// Engine is the analysis surface the handlers call.
type Engine interface {
	Analyze(ctx context.Context, shot model.Shot) (model.AnalysisResult, error)
	Predict(ctx context.Context, shot model.Shot) (model.PredictResult, error)
	Simulate(ctx context.Context, shot model.Shot) (model.GeometryResult, error)
	Train(ctx context.Context, samples []model.TrainingSample, epochs int) (neural.Report, error)
	TrainFromMemory(ctx context.Context, epochs int) (neural.Report, error)
}

// Dispatcher submits tasks for asynchronous execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind model.Kind, payload model.Payload) (*dispatch.Pending, error)
	Submit(ctx context.Context, req model.Request) (*dispatch.Pending, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDispatchTimeout bounds how long POST /dispatch waits for a result.
func WithDispatchTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.dispatchTimeout = d
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	analysisHandler *AnalysisHandler
	trainHandler    *TrainHandler
	dispatchHandler *DispatchHandler
	statsHandler    *StatsHandler
	healthHandler   *HealthHandler

	dispatchTimeout time.Duration
}

// NewServer creates a new API server with all handlers.
func NewServer(engine Engine, dispatcher Dispatcher, stats StatsProvider, opts ...Option) *Server {
	s := &Server{dispatchTimeout: defaultDispatchTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.analysisHandler = NewAnalysisHandler(engine)
	s.trainHandler = NewTrainHandler(engine)
	s.dispatchHandler = NewDispatchHandler(dispatcher, s.dispatchTimeout)
	s.statsHandler = NewStatsHandler(stats)
	s.healthHandler = NewHealthHandler()
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analysisHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.analysisHandler.HandlePredict, "predict"))
	mux.HandleFunc("/simulate", MetricsMiddleware(s.analysisHandler.HandleSimulate, "simulate"))
	mux.HandleFunc("/train", MetricsMiddleware(s.trainHandler.HandleTrain, "train"))
	mux.HandleFunc("/dispatch", MetricsMiddleware(s.dispatchHandler.HandleDispatch, "dispatch"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	if r.Method != http.MethodPost {
		return wrapKind(op, ErrMethodNotAllowed, nil)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// Aim decoding reports its own validation error.
		if status, _ := classify(err); status == http.StatusBadRequest {
			return fmt.Errorf("%s: %w", op, err)
		}
		return wrapKind(op, ErrBadRequest, err)
	}
	return nil
}
