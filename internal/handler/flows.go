package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowdeck/flowdeck/internal/flows"
)

// FlowsHandler serves the flow catalog and argument form conversions.
type FlowsHandler struct {
	catalog *flows.Catalog
}

// NewFlowsHandler creates a flows handler.
func NewFlowsHandler(catalog *flows.Catalog) *FlowsHandler {
	return &FlowsHandler{catalog: catalog}
}

// ListFlows handles GET /v1/flows.
func (h *FlowsHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flows": h.catalog.Flows()})
}

// GetFlow handles GET /v1/flows/{name}.
func (h *FlowsHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, err := h.catalog.Flow(name)
	if errors.Is(err, flows.ErrUnknownFlow) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown flow: "+name)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

type validateArgsRequest struct {
	Args flows.Args `json:"args"`
}

type validateArgsResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// ValidateArgs handles POST /v1/flows/{name}/args/validate.
func (h *FlowsHandler) ValidateArgs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req validateArgsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	violations, err := h.catalog.ValidateArgs(name, req.Args)
	if errors.Is(err, flows.ErrUnknownFlow) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown flow: "+name)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validateArgsResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

type convertArgsRequest struct {
	// Exactly one of Args and State is set; the populated side picks the
	// conversion direction.
	Args  flows.Args  `json:"args,omitempty"`
	State flows.State `json:"state,omitempty"`
}

type convertArgsResponse struct {
	Args  flows.Args  `json:"args,omitempty"`
	State flows.State `json:"state,omitempty"`
}

// ConvertArgs handles POST /v1/flows/{name}/args/convert. It maps wire
// arguments to form state or back, applying the form's normalization.
func (h *FlowsHandler) ConvertArgs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req convertArgsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	form, err := h.catalog.Form(name)
	if errors.Is(err, flows.ErrUnknownFlow) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown flow: "+name)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if form == nil {
		writeError(w, http.StatusBadRequest, "NO_FORM", "flow takes no arguments: "+name)
		return
	}

	switch {
	case req.Args != nil && req.State != nil:
		writeError(w, http.StatusBadRequest, "AMBIGUOUS_BODY", "provide args or state, not both")
	case req.Args != nil:
		state, err := form.ArgsToState(req.Args)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "CONVERSION_FAILED", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, convertArgsResponse{State: state})
	case req.State != nil:
		args, err := form.StateToArgs(req.State)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "CONVERSION_FAILED", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, convertArgsResponse{Args: args})
	default:
		writeError(w, http.StatusBadRequest, "EMPTY_BODY", "provide args or state")
	}
}
