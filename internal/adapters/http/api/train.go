package api

import (
	"net/http"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
)

type trainRequest struct {
	Samples []model.TrainingSample `json:"samples"`
	Epochs  int                    `json:"epochs"`
}

// TrainHandler serves explicit training requests.
type TrainHandler struct {
	engine Engine
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(engine Engine) *TrainHandler {
	return &TrainHandler{engine: engine}
}

// HandleTrain handles POST /train. Without samples the model is trained on
// the pattern memory.
func (h *TrainHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := decode(w, r, "api.train", &req); err != nil {
		writeFailure(w, err)
		return
	}
	var (
		rep neural.Report
		err error
	)
	if len(req.Samples) == 0 {
		rep, err = h.engine.TrainFromMemory(r.Context(), req.Epochs)
	} else {
		rep, err = h.engine.Train(r.Context(), req.Samples, req.Epochs)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
