package api

import (
	"net/http"

	"github.com/okian/railshot/internal/domain/model"
)

// AnalysisHandler serves the synchronous analysis endpoints.
type AnalysisHandler struct {
	engine Engine
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(engine Engine) *AnalysisHandler {
	return &AnalysisHandler{engine: engine}
}

// HandleAnalyze handles POST /analyze.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var shot model.Shot
	if err := decode(w, r, "api.analyze", &shot); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.engine.Analyze(r.Context(), shot)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePredict handles POST /predict.
func (h *AnalysisHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var shot model.Shot
	if err := decode(w, r, "api.predict", &shot); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.engine.Predict(r.Context(), shot)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSimulate handles POST /simulate.
func (h *AnalysisHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var shot model.Shot
	if err := decode(w, r, "api.simulate", &shot); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.engine.Simulate(r.Context(), shot)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
