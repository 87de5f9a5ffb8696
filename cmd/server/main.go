// Command server runs the flowdeck console API.
package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/flowdeck/flowdeck/internal/config"
	"github.com/flowdeck/flowdeck/internal/descriptor"
	"github.com/flowdeck/flowdeck/internal/flows"
	"github.com/flowdeck/flowdeck/internal/history"
	"github.com/flowdeck/flowdeck/internal/logging"
	"github.com/flowdeck/flowdeck/internal/metrics"
	"github.com/flowdeck/flowdeck/internal/semantic"
	"github.com/flowdeck/flowdeck/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	store := history.NewStore(db)
	if err := store.CreateTable(ctx); err != nil {
		logger.Fatal("migrating database", zap.Error(err))
	}

	catalog, err := flows.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("loading flow catalog", zap.Error(err))
	}
	for _, form := range flows.DefaultForms() {
		if err := catalog.RegisterForm(form); err != nil {
			logger.Warn("skipping form without catalog entry",
				zap.String("form", form.Name()), zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)
	descriptors := descriptor.NewStore(cfg.Descriptors.Dir)
	renderer := semantic.NewRenderer(semantic.NewDefaultRegistry(), descriptors, m)

	err = server.Run(ctx, server.Config{
		Port:        cfg.Server.Port,
		Log:         logger,
		Metrics:     m,
		Registry:    reg,
		Renderer:    renderer,
		Descriptors: descriptors,
		Catalog:     catalog,
		History:     store,
	})
	if err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
