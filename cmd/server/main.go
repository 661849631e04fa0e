package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadapter "avalia/internal/adapters/http"
	pg "avalia/internal/adapters/postgres"
	"avalia/internal/cascade"
	"avalia/internal/catalog"
	"avalia/internal/config"
	"avalia/internal/metrics"
	"avalia/internal/ports"
	assesssvc "avalia/internal/services/assessments"
	orgsvc "avalia/internal/services/organizations"
	resultsvc "avalia/internal/services/results"
	reportworker "avalia/internal/workers/reportrunner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("warning: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog load error: %v", err)
	}
	rules, err := cascade.LoadRules(cfg.CascadeRulesPath)
	if err != nil {
		log.Fatalf("cascade rules load error: %v", err)
	}
	resolver := cascade.NewResolver(rules)
	m := metrics.New()

	// Wire repositories to services (ports)
	var _ ports.OrganizationRepository = db
	var _ ports.AssessmentRepository = db
	var _ ports.AnswerRepository = db
	var _ ports.ResultRepository = db
	var _ ports.JobRepository = db

	assessments := assesssvc.New(db, db, cat, resolver, m, logger)
	results := resultsvc.New(cat, db, db, db, m, logger)
	organizations := orgsvc.New(db, db, cat, logger)

	processor := reportworker.DashboardProcessor{Orgs: organizations, Jobs: db}
	srv := httpadapter.New(assessments, results, organizations, db, processor, m, logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())
	r.Handle("/metrics", promhttp.Handler())

	// Optional background report workers
	if cfg.ReportWorkers > 0 {
		go reportworker.Run(ctx, db, processor, m, logger, cfg.ReportWorkers, 500*time.Millisecond)
		log.Printf("report workers started: %d", cfg.ReportWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Printf("listening on %s", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal(fmt.Errorf("server error: %w", err))
	}
}
