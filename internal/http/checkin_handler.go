package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/mindease/internal/application"
)

// CheckInHandler exposes the check-in history and the capture wizard.
type CheckInHandler struct {
	responder responder
	logger    *slog.Logger
}

func NewCheckInHandler(logger *slog.Logger) *CheckInHandler {
	base := defaultLogger(logger)
	return &CheckInHandler{responder: newResponder(base), logger: base}
}

func (h *CheckInHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CheckInHandler", operation, attrs...)
}

// List returns every check-in, newest first.
func (h *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkInListResponse{CheckIns: toCheckInDTOs(ws.Store.List())})
}

// Draft returns the wizard's current step and accumulated values.
func (h *CheckInHandler) Draft(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDraftDTO(ws.Flow.Draft()))
}

// UpdateDraft sets the field(s) belonging to the wizard's current step.
// Fields of other steps in the body are ignored.
func (h *CheckInHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	draft, err := applyDraft(ws.Flow, req)
	if err != nil {
		h.log(r.Context(), "UpdateDraft", "step", draft.Step.String()).WarnContext(r.Context(), "draft update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDraftDTO(draft))
}

func applyDraft(flow *application.CheckInFlow, req draftRequest) (application.CheckInDraft, error) {
	current := flow.Draft()
	switch current.Step {
	case application.StepMood:
		mood, ok := application.ParseMood(req.Mood)
		if !ok {
			return current, fieldValidation("mood", "mood is invalid")
		}
		return flow.SelectMood(mood)
	case application.StepSleep:
		quality := current.SleepQuality
		if req.SleepQuality != "" {
			parsed, ok := application.ParseSleepQuality(req.SleepQuality)
			if !ok {
				return current, fieldValidation("sleep_quality", "sleep quality is invalid")
			}
			quality = parsed
		}
		hours := current.SleepHours
		if req.SleepHours != nil {
			hours = *req.SleepHours
		}
		return flow.SelectSleep(quality, hours)
	case application.StepEnergy:
		level, ok := application.ParseEnergyLevel(req.EnergyLevel)
		if !ok {
			return current, fieldValidation("energy_level", "energy level is invalid")
		}
		return flow.SelectEnergy(level)
	case application.StepReflection:
		description := current.Description
		if req.Description != nil {
			description = *req.Description
		}
		return flow.SetReflection(description, req.Media.toMedia())
	}
	return current, fmt.Errorf("%w: factors are toggled one at a time", application.ErrInvalidTransition)
}

func fieldValidation(field, message string) error {
	return &application.ValidationError{FieldErrors: map[string]string{field: message}}
}

// ToggleFactor adds or removes one factor label on the factors step.
func (h *CheckInHandler) ToggleFactor(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}

	var req factorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	draft, err := ws.Flow.ToggleFactor(req.Factor)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDraftDTO(draft))
}

func (h *CheckInHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Next", (*application.CheckInFlow).Next)
}

func (h *CheckInHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Back", (*application.CheckInFlow).Back)
}

func (h *CheckInHandler) transition(w http.ResponseWriter, r *http.Request, operation string, move func(*application.CheckInFlow) (application.CheckInDraft, error)) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	draft, err := move(ws.Flow)
	if err != nil {
		h.log(r.Context(), operation).WarnContext(r.Context(), "wizard transition rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDraftDTO(draft))
}

// Finish records the check-in and resets the wizard.
func (h *CheckInHandler) Finish(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	checkIn, err := ws.Flow.Finish(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, checkInResponse{CheckIn: toCheckInDTO(checkIn)})
}

type draftRequest struct {
	Mood         string    `json:"mood"`
	SleepQuality string    `json:"sleep_quality"`
	SleepHours   *float64  `json:"sleep_hours"`
	EnergyLevel  string    `json:"energy_level"`
	Description  *string   `json:"description"`
	Media        *mediaDTO `json:"media"`
}

type factorRequest struct {
	Factor string `json:"factor"`
}

type checkInListResponse struct {
	CheckIns []checkInDTO `json:"check_ins"`
}

type checkInResponse struct {
	CheckIn checkInDTO `json:"check_in"`
}
