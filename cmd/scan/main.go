// Command scan runs one full sentence scan from the terminal, outside the
// API server. Useful for the initial backfill and for re-runs after bulk
// payment loads.
package main

import (
	"context"
	"flag"
	"os"

	infraFS "github.com/jfbetancur/consorcio-manager/internal/infra/firestore"
	"github.com/jfbetancur/consorcio-manager/internal/logger"
	"github.com/jfbetancur/consorcio-manager/internal/scan"
)

func main() {
	var (
		project  = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project id (or set GCP_PROJECT env)")
		database = flag.String("database", envOr("FIRESTORE_DATABASE", "(default)"), "Firestore database id (or set FIRESTORE_DATABASE env)")
		every    = flag.Int("progress-every", 100, "Log progress every N pensioners")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}

	ctx := context.Background()

	client, err := infraFS.NewClient(ctx, *project, *database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer client.Close()

	scanner := scan.New(scan.Config{
		Pensioners: infraFS.NewPensionadoRepository(client),
		Payments:   infraFS.NewPagoRepository(client),
		Sentences:  infraFS.NewSentenciaRepository(client),
		Runs:       infraFS.NewScanRunRepository(client),
		Log:        log,
		Progress: func(processed, total int) {
			log.Info().Int("processed", processed).Int("total", total).Msg("Scan progress")
		},
		ProgressEvery: *every,
	})

	summary, err := scanner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	log.Info().
		Str("scan_run_id", summary.RunID).
		Int("pensioners", summary.Pensionados).
		Int("matches", summary.Coincidencias).
		Int("rollups", summary.Rollups).
		Dur("duration", summary.Duration).
		Msg("Scan finished")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
