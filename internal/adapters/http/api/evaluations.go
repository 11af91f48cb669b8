package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/gradebook/internal/app"
	"github.com/okian/gradebook/internal/adapters/repository"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/validation"
)

const maxBodyBytes = 64 << 10

const persistWarning = "Evaluation computed but could not be saved to history"

// formValue accepts a JSON string or number and keeps its text form so the
// validator sees exactly what was sent.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("value must be a string or number: %s", b)
	}
	*v = formValue(n.String())
	return nil
}

// evaluationRequest mirrors the OpenAPI schema for POST /api/evaluations.
type evaluationRequest struct {
	Subjects             map[string]formValue `json:"subjects"`
	AttendanceGradePoint formValue            `json:"attendanceGradePoint"`
	AttendancePercent    formValue            `json:"attendancePercent"`
}

func (req evaluationRequest) submission() validation.Submission {
	sub := validation.Submission{
		Subjects:             make(map[string]string, len(req.Subjects)),
		AttendanceGradePoint: string(req.AttendanceGradePoint),
		AttendancePercent:    string(req.AttendancePercent),
	}
	for k, v := range req.Subjects {
		sub.Subjects[k] = string(v)
	}
	return sub
}

type evaluationResponse struct {
	Evaluation        model.Evaluation `json:"evaluation"`
	FinalGradeDisplay string           `json:"finalGradeDisplay"`
	FinalPercent      float64          `json:"finalPercent"`
	Persisted         bool             `json:"persisted"`
	Warning           string           `json:"warning,omitempty"`
}

type historyResponse struct {
	Evaluations []model.Evaluation `json:"evaluations"`
	Count       int                `json:"count"`
	Capacity    int                `json:"capacity"`
}

// EvaluationDependencies defines what the evaluation handlers need.
type EvaluationDependencies interface {
	Evaluate(ctx context.Context, sub validation.Submission) (service.Outcome, error)
	History(ctx context.Context) []model.Evaluation
	Get(ctx context.Context, id string) (model.Evaluation, error)
	ClearHistory(ctx context.Context) service.ClearResult
}

// EvaluationsHandler handles evaluation requests.
type EvaluationsHandler struct {
	deps EvaluationDependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationDependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// HandleCreate handles POST /api/evaluations requests.
func (h *EvaluationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_evaluation"
	var req evaluationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.Evaluate(r.Context(), req.submission())
	if err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Code:    "validation_failed",
				Message: "Please correct the highlighted fields",
				Errors:  fe,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	resp := evaluationResponse{
		Evaluation:        out.Evaluation,
		FinalGradeDisplay: out.Evaluation.FinalGradeDisplay(),
		FinalPercent:      scale.InterpolatePercent(out.Evaluation.FinalGrade),
		Persisted:         out.Persisted,
	}
	if !out.Persisted {
		resp.Warning = persistWarning
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/evaluations requests. The optional limit
// query parameter must be between 1 and the history capacity.
func (h *EvaluationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_evaluations"
	limit := repository.Capacity
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > repository.Capacity {
			writeError(w, http.StatusBadRequest, "bad_request",
				wrapKind(op, ErrBadRequest, fmt.Errorf("limit must be between 1 and %d", repository.Capacity)))
			return
		}
		limit = n
	}

	history := h.deps.History(r.Context())
	if len(history) > limit {
		history = history[:limit]
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Evaluations: history,
		Count:       len(history),
		Capacity:    repository.Capacity,
	})
}

// HandleGet handles GET /api/evaluations/{id} requests.
func (h *EvaluationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	e, err := h.deps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleClear handles DELETE /api/evaluations requests.
func (h *EvaluationsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	res := h.deps.ClearHistory(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
