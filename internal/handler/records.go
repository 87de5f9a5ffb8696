package handler

import (
	"errors"
	"net/http"

	"github.com/flowdeck/flowdeck/internal/history"
	"github.com/flowdeck/flowdeck/internal/semantic"
)

// RecordsHandler serves versioned record snapshots and their diffs.
type RecordsHandler struct {
	store *history.Store
}

// NewRecordsHandler creates a records handler.
func NewRecordsHandler(store *history.Store) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// SaveSnapshot handles POST /v1/records/snapshots/{path...}. The body is
// the tagged payload; the response is the stored snapshot metadata.
func (h *RecordsHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	path, ok := recordPath(w, r)
	if !ok {
		return
	}
	var payload semantic.TaggedValue
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	snap, err := h.store.Save(r.Context(), path, &payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	snap.Payload = nil
	writeJSON(w, http.StatusCreated, snap)
}

// ListVersions handles GET /v1/records/versions/{path...}.
func (h *RecordsHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	path, ok := recordPath(w, r)
	if !ok {
		return
	}
	p := parsePagination(r)
	versions, err := h.store.Versions(r.Context(), path, p.Limit, p.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// DiffVersions handles GET /v1/records/diff/{path...}?from=&to=.
func (h *RecordsHandler) DiffVersions(w http.ResponseWriter, r *http.Request) {
	path, ok := recordPath(w, r)
	if !ok {
		return
	}
	from, ok := parseVersion(r, "from")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_VERSION", "from must be a positive integer")
		return
	}
	to, ok := parseVersion(r, "to")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_VERSION", "to must be a positive integer")
		return
	}

	original, updated, err := h.store.Diff(r.Context(), path, from, to)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, diffResponse{Original: original, Updated: updated})
}
