// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flowdeck/flowdeck/internal/descriptor"
	"github.com/flowdeck/flowdeck/internal/flows"
	"github.com/flowdeck/flowdeck/internal/handler"
	"github.com/flowdeck/flowdeck/internal/history"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/semantic"
	"github.com/flowdeck/flowdeck/internal/wire"
)

// Config holds the server's dependencies.
type Config struct {
	Port        int
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Registry    prometheus.Gatherer
	Renderer    *semantic.Renderer
	Descriptors *descriptor.Store
	Catalog     *flows.Catalog
	History     *history.Store
}

// Router builds the full route tree.
func Router(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(handler.Recovery(cfg.Log))
	r.Use(handler.Logging(cfg.Log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	rh := handler.NewRenderHandler(cfg.Renderer, cfg.Metrics, cfg.Log)
	r.Post("/v1/render", rh.Render)
	r.Post("/v1/diff", rh.Diff)

	th := handler.NewTypesHandler(cfg.Descriptors)
	r.Get("/v1/types", th.ListTypes)
	r.Get("/v1/types/{name}", th.GetType)

	fh := handler.NewFlowsHandler(cfg.Catalog)
	r.Get("/v1/flows", fh.ListFlows)
	r.Get("/v1/flows/{name}", fh.GetFlow)
	r.Post("/v1/flows/{name}/args/validate", fh.ValidateArgs)
	r.Post("/v1/flows/{name}/args/convert", fh.ConvertArgs)

	// Record paths contain slashes, so the path segment trails the verb.
	rec := handler.NewRecordsHandler(cfg.History)
	r.Post("/v1/records/snapshots/*", rec.SaveSnapshot)
	r.Get("/v1/records/versions/*", rec.ListVersions)
	r.Get("/v1/records/diff/*", rec.DiffVersions)

	ws := wire.NewHandler(cfg.Renderer, cfg.Catalog, cfg.Metrics, cfg.Log)
	r.Get("/v1/console", ws.ServeHTTP)

	return r
}

// Run starts the HTTP server and shuts it down when ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	cfg.Log.Info("starting server", zap.String("addr", addr))

	server := &http.Server{
		Addr:    addr,
		Handler: Router(cfg),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
