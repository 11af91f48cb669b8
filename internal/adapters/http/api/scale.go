package api

import (
	"net/http"

	"github.com/okian/gradebook/internal/adapters/repository"
	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
)

type scaleResponse struct {
	Grades          []scale.Grade     `json:"grades"`
	Subjects        []subject.Subject `json:"subjects"`
	HistoryCapacity int               `json:"historyCapacity"`
}

// ScaleHandler serves the grading scale so clients can build input forms.
type ScaleHandler struct {
	body scaleResponse
}

// NewScaleHandler creates a new scale handler.
func NewScaleHandler() *ScaleHandler {
	return &ScaleHandler{body: scaleResponse{
		Grades:          scale.Grades(),
		Subjects:        subject.All(),
		HistoryCapacity: repository.Capacity,
	}}
}

// HandleScale handles GET /api/scale requests.
func (h *ScaleHandler) HandleScale(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}
