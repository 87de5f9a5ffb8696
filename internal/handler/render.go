package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/semantic"
)

// RenderHandler serves value rendering and diff annotation.
type RenderHandler struct {
	renderer *semantic.Renderer
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewRenderHandler creates a render handler.
func NewRenderHandler(renderer *semantic.Renderer, m *metrics.Metrics, log *zap.Logger) *RenderHandler {
	return &RenderHandler{renderer: renderer, metrics: m, log: log}
}

// wireOverride is the request form of a renderer override.
type wireOverride struct {
	Directive string `json:"directive"`
	Template  string `json:"template"`
}

type renderRequest struct {
	Value     *semantic.TaggedValue   `json:"value"`
	Overrides map[string]wireOverride `json:"overrides,omitempty"`
}

type renderResponse struct {
	Node *semantic.Node `json:"node"`
}

// Render handles POST /v1/render.
func (h *RenderHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	node, err := h.renderer.RenderWith(r.Context(), req.Value, toOverrides(req.Overrides))
	if err != nil {
		h.log.Error("render failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "RENDER_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Node: node})
}

type diffRequest struct {
	Original *semantic.TaggedValue `json:"original"`
	Updated  *semantic.TaggedValue `json:"updated"`
}

type diffResponse struct {
	Original *semantic.TaggedValue `json:"original"`
	Updated  *semantic.TaggedValue `json:"updated"`
}

// Diff handles POST /v1/diff. Both sides come back annotated; the inputs
// are never mutated.
func (h *RenderHandler) Diff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	original, updated := semantic.Annotate(req.Original, req.Updated)
	countMarks(h.metrics, original)
	countMarks(h.metrics, updated)
	writeJSON(w, http.StatusOK, diffResponse{Original: original, Updated: updated})
}

func toOverrides(wire map[string]wireOverride) semantic.Overrides {
	if len(wire) == 0 {
		return nil
	}
	overrides := make(semantic.Overrides, len(wire))
	for typeName, o := range wire {
		overrides[typeName] = semantic.Entry{Directive: o.Directive, Template: o.Template}
	}
	return overrides
}

func countMarks(m *metrics.Metrics, v *semantic.TaggedValue) {
	if v == nil {
		return
	}
	if v.Diff != "" {
		m.IncDiffMark(string(v.Diff))
	}
	for _, field := range v.StructFields() {
		countMarks(m, field)
	}
	for _, item := range v.ListItems() {
		countMarks(m, item)
	}
}
