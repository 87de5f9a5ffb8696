package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowdeck/flowdeck/internal/descriptor"
)

// TypesHandler serves the reflection descriptors the console renders
// struct values with.
type TypesHandler struct {
	store *descriptor.Store
}

// NewTypesHandler creates a types handler.
func NewTypesHandler(store *descriptor.Store) *TypesHandler {
	return &TypesHandler{store: store}
}

// ListTypes handles GET /v1/types.
func (h *TypesHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.TypeNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": names})
}

// GetType handles GET /v1/types/{name}.
func (h *TypesHandler) GetType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, err := h.store.Descriptor(r.Context(), name)
	if errors.Is(err, descriptor.ErrUnknownType) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown type: "+name)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, desc)
}
