package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"

	"github.com/jfbetancur/consorcio-manager/internal/api/handlers"
	"github.com/jfbetancur/consorcio-manager/internal/api/middleware"
	"github.com/jfbetancur/consorcio-manager/internal/auth"
	"github.com/jfbetancur/consorcio-manager/internal/export"
	infraFS "github.com/jfbetancur/consorcio-manager/internal/infra/firestore"
	"github.com/jfbetancur/consorcio-manager/internal/jobs"
	"github.com/jfbetancur/consorcio-manager/internal/jobs/inmemory"
	"github.com/jfbetancur/consorcio-manager/internal/logger"
	"github.com/jfbetancur/consorcio-manager/internal/scan"
	"github.com/jfbetancur/consorcio-manager/internal/session"
	"github.com/jfbetancur/consorcio-manager/internal/summarize"
)

func main() {
	// Parse command-line flags
	var (
		port     = flag.String("port", "8080", "HTTP server port")
		project  = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project id (or set GCP_PROJECT env)")
		database = flag.String("database", envOr("FIRESTORE_DATABASE", "(default)"), "Firestore database id (or set FIRESTORE_DATABASE env)")
		bucket   = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for export workbooks (or set GCS_BUCKET env)")
		model    = flag.String("model", os.Getenv("GENAI_MODEL"), "Gemini model for document summaries (or set GENAI_MODEL env)")
		cacheTTL = flag.Duration("cache-ttl", 10*time.Minute, "Working-set cache TTL")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is required")
	}

	ctx := context.Background()

	// Initialize repositories
	fsClient, err := infraFS.NewClient(ctx, *project, *database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer fsClient.Close()

	pensionados := infraFS.NewPensionadoRepository(fsClient)
	pagos := infraFS.NewPagoRepository(fsClient)
	sentencias := infraFS.NewSentenciaRepository(fsClient)
	users := infraFS.NewUserRepository(fsClient)
	scanRuns := infraFS.NewScanRunRepository(fsClient)

	// Export storage
	var uploader handlers.WorkbookUploader
	if *bucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer storageClient.Close()
		uploader = export.NewUploader(storageClient, *bucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - the export endpoint is disabled")
	}

	// Auth
	authService := auth.NewService(users, []byte(jwtSecret), 24*time.Hour)

	// Job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(10, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	scanner := scan.New(scan.Config{
		Pensioners: pensionados,
		Payments:   pagos,
		Sentences:  sentencias,
		Runs:       scanRuns,
		Log:        log,
		Progress: func(processed, total int) {
			log.Info().Int("processed", processed).Int("total", total).Msg("Scan progress")
		},
	})

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		scanJob, ok := job.(*jobs.FullScanJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("requested_by", scanJob.RequestedBy).
			Msg("Processing re-scan job")

		summary, err := scanner.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("job_id", scanJob.JobID).Msg("Re-scan failed")
			return err
		}

		scanJob.ScanRunID = summary.RunID
		scanJob.Pensionados = summary.Pensionados
		scanJob.Coincidencias = summary.Coincidencias
		scanJob.Rollups = summary.Rollups

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("scan_run_id", summary.RunID).
			Int("matches", summary.Coincidencias).
			Msg("Re-scan completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting scan worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Scan worker stopped with error")
		}
	}()

	// Initialize handlers
	cache := session.NewCache(*cacheTTL)
	authHandler := handlers.NewAuthHandler(authService, log)
	sentenciasHandler := handlers.NewSentenciasHandler(
		sentencias, pensionados, pagos, cache, jobQueue, jobStore, uploader, log)
	resumenHandler := handlers.NewResumenHandler(summarize.New(*model), log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Login(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Protected routes
	authenticate := middleware.Authenticate(authService)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	mux.Handle("/api/v1/sentencias", authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			sentenciasHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	mux.Handle("/api/v1/sentencias/", authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sentencias/")

		switch {
		case rest == "sugerencias" && r.Method == http.MethodGet:
			sentenciasHandler.Suggest(w, r)

		case rest == "export" && r.Method == http.MethodGet:
			sentenciasHandler.Export(w, r)

		case rest == "rescan" && r.Method == http.MethodPost:
			adminOnly(http.HandlerFunc(sentenciasHandler.EnqueueRescan)).ServeHTTP(w, r)

		case strings.HasPrefix(rest, "rescan/") && r.Method == http.MethodGet:
			jobID := strings.TrimPrefix(rest, "rescan/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			sentenciasHandler.GetRescan(w, r, jobID)

		case strings.HasSuffix(rest, "/analizado") && r.Method == http.MethodPost:
			pensionadoID := strings.TrimSuffix(rest, "/analizado")
			if pensionadoID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Pensioner ID is required")
				return
			}
			adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sentenciasHandler.MarkAnalyzed(w, r, pensionadoID)
			})).ServeHTTP(w, r)

		case strings.HasSuffix(rest, "/pagos") && r.Method == http.MethodGet:
			pensionadoID := strings.TrimSuffix(rest, "/pagos")
			if pensionadoID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Pensioner ID is required")
				return
			}
			sentenciasHandler.ListPagos(w, r, pensionadoID)

		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})))

	mux.Handle("/api/v1/documentos/resumen", authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			resumenHandler.Summarize(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
