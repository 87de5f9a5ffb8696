package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowdeck/flowdeck/internal/flows"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/semantic"
)

// Handler manages WebSocket connections for the live console channel.
type Handler struct {
	renderer *semantic.Renderer
	catalog  *flows.Catalog
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewHandler creates a console channel handler.
func NewHandler(renderer *semantic.Renderer, catalog *flows.Catalog, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{renderer: renderer, catalog: catalog, metrics: m, log: log}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sessionID := uuid.NewString()
	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sessionID},
	})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				h.log.Debug("connection closed",
					zap.String("session_id", sessionID),
					zap.Int("status", int(status)))
			}
			return
		}
		h.metrics.IncWSMessage(msg.Type)

		switch msg.Type {
		case "render":
			h.handleRender(ctx, conn, msg)
		case "diff":
			h.handleDiff(ctx, conn, msg)
		case "fetch_more":
			h.handleFetchMore(ctx, conn, msg)
		case "validate_args":
			h.handleValidateArgs(ctx, conn, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleRender(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data RenderData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid render data")
		return
	}

	node, err := h.renderer.RenderWith(ctx, data.Value, toOverrides(data.Overrides))
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "render_error", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{Type: "node", RequestID: msg.ID, Data: NodeData{Node: node}})
}

func (h *Handler) handleDiff(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data DiffData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid diff data")
		return
	}

	original, updated := semantic.Annotate(data.Original, data.Updated)
	h.send(ctx, conn, ServerMessage{
		Type:      "diff",
		RequestID: msg.ID,
		Data:      DiffResultData{Original: original, Updated: updated},
	})
}

// handleFetchMore renders the remainder items of a paginated list as a new
// list value, which itself paginates when still longer than a page.
func (h *Handler) handleFetchMore(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data FetchMoreData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid fetch_more data")
		return
	}

	node, err := h.renderer.Render(ctx, &semantic.TaggedValue{Value: data.Items})
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "render_error", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{Type: "node", RequestID: msg.ID, Data: NodeData{Node: node}})
}

func (h *Handler) handleValidateArgs(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data ValidateArgsData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid validate_args data")
		return
	}

	violations, err := h.catalog.ValidateArgs(data.Flow, flows.Args(data.Args))
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "validate_error", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "validation",
		RequestID: msg.ID,
		Data:      ValidationData{Valid: len(violations) == 0, Violations: violations},
	})
}

func toOverrides(wire map[string]Override) semantic.Overrides {
	if len(wire) == 0 {
		return nil
	}
	overrides := make(semantic.Overrides, len(wire))
	for typeName, o := range wire {
		overrides[typeName] = semantic.Entry{Directive: o.Directive, Template: o.Template}
	}
	return overrides
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.log.Warn("websocket write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}
