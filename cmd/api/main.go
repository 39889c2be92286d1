package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cloudscope/cloudscope/internal/application"
	appanalysis "github.com/cloudscope/cloudscope/internal/application/analysis"
	"github.com/cloudscope/cloudscope/internal/config"
	domanalysis "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/failures"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
	"github.com/cloudscope/cloudscope/internal/infra/ai/openai"
	"github.com/cloudscope/cloudscope/internal/infra/ai/pattern"
	mysqlp "github.com/cloudscope/cloudscope/internal/infra/db/mysql"
	postgresp "github.com/cloudscope/cloudscope/internal/infra/db/postgres"
	"github.com/cloudscope/cloudscope/internal/infra/directory"
	"github.com/cloudscope/cloudscope/internal/infra/httpserver"
	"github.com/cloudscope/cloudscope/internal/infra/rules"
	minioStore "github.com/cloudscope/cloudscope/internal/infra/storage"
	promtelemetry "github.com/cloudscope/cloudscope/internal/infra/telemetry"
	"github.com/cloudscope/cloudscope/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// database: mysql by default, postgres when selected
	var (
		db       *sql.DB
		repo     domanalysis.Repository
		bulkRepo domanalysis.BulkRepository
		failRepo failures.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewAnalysisRepository(db)
		bulkRepo = postgresp.NewBulkRunRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewAnalysisRepository(db)
		bulkRepo = mysqlp.NewBulkRunRepository(db)
		failRepo = mysqlp.NewFailureRepository(db)
	}
	defer db.Close()

	// audit store
	audit, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// telemetry gatherer
	gatherer, err := promtelemetry.New(cfg.Telemetry.Endpoint, cfg.TelemetryTimeout())
	if err != nil {
		log.Fatalf("telemetry init error: %v", err)
	}

	// workflow catalog: built-ins plus config-defined entries
	defs := workflows.Defaults()
	for _, d := range cfg.Workflows {
		defs = append(defs, toWorkflow(d))
	}
	catalog, err := workflows.NewCatalog(defs)
	if err != nil {
		log.Fatalf("workflow catalog error: %v", err)
	}

	// resource directory: inventory service if configured, static otherwise
	var dir resources.Directory
	if cfg.Directory.BaseURL != "" {
		dir = directory.NewClient(cfg.Directory.BaseURL, cfg.DirectoryTimeout())
	} else {
		dir = directory.NewStatic(toRefs(cfg.Resources))
	}

	// analyzers + fallback policy
	var patternAnalyzer appanalysis.PatternAnalyzer
	patternConfigured := cfg.AI.Enabled && cfg.AI.APIKey != ""
	if patternConfigured {
		patternAnalyzer = pattern.NewAnalyzer(openai.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	} else {
		patternAnalyzer = pattern.NewAnalyzer(nil)
	}
	selector := appanalysis.NewSelector(rules.NewAnalyzer(), patternAnalyzer, patternConfigured)

	clock := application.SystemClock{}
	svc := &appanalysis.Service{
		Directory: dir,
		Catalog:   catalog,
		Gatherer:  gatherer,
		Selector:  selector,
		Assembler: appanalysis.Assembler{Clock: clock},
		Repo:      repo,
		Audit:     audit,
		Failures:  failRepo,
		Clock:     clock,
	}
	bulk := appanalysis.NewBulkService(svc, bulkRepo, cfg.Bulk.Workers, cfg.BulkPacing())

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
	mux.Use(middleware.RateLimitMiddleware(20, 10))
	mux.Mount("/", httpserver.NewRouter(svc, bulk, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func toWorkflow(d config.WorkflowDef) workflows.Workflow {
	types := make([]resources.ResourceType, 0, len(d.ResourceTypes))
	for _, t := range d.ResourceTypes {
		types = append(types, resources.ResourceType(t))
	}
	return workflows.Workflow{
		ID:               d.ID,
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		ResourceTypes:    types,
		RequiredMetrics:  d.RequiredMetrics,
		PromptTemplateID: d.PromptTemplate,
		RequiresPattern:  d.RequiresPattern,
	}
}

func toRefs(defs []config.ResourceDef) []resources.ResourceRef {
	refs := make([]resources.ResourceRef, 0, len(defs))
	for _, d := range defs {
		refs = append(refs, resources.ResourceRef{
			ID:      d.ID,
			Name:    d.Name,
			Type:    resources.ResourceType(d.Type),
			Region:  d.Region,
			Account: d.Account,
			ARN:     d.ARN,
		})
	}
	return refs
}
