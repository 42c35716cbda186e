// Package scan implements the full sentence analysis: walk every pensioner,
// every payment, every line item, classify, and materialize the derived
// index and rollup collections.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
	"github.com/jfbetancur/consorcio-manager/internal/sentencia"
)

// PensionerSource lists the pensioners to scan.
type PensionerSource interface {
	List(ctx context.Context) ([]*domain.Pensionado, error)
}

// PaymentSource lists one pensioner's payments.
type PaymentSource interface {
	ListByPensionado(ctx context.Context, documento string) ([]*domain.Pago, error)
}

// SentenceStore writes the derived collections. GetRollup is only consulted
// to detect that a manually analyzed rollup is about to be overwritten.
type SentenceStore interface {
	UpsertIndex(ctx context.Context, entry *domain.SentenciaIndex) error
	SaveRollup(ctx context.Context, rollup *domain.UsuarioSentencia) error
	GetRollup(ctx context.Context, pensionadoID string) (*domain.UsuarioSentencia, error)
}

// RunRecorder persists the scan-run lifecycle.
type RunRecorder interface {
	Start(ctx context.Context) (string, error)
	MarkSucceeded(ctx context.Context, runID string, pensionados, coincidencias, rollups int) error
	MarkFailed(ctx context.Context, runID string, scanErr error) error
}

// ProgressFunc is notified with (processed, total) pensioner counts as the
// scan advances.
type ProgressFunc func(processed, total int)

// Summary is what one completed scan produced.
type Summary struct {
	RunID         string        `json:"runId"`
	Pensionados   int           `json:"pensionados"`
	Coincidencias int           `json:"coincidencias"`
	Rollups       int           `json:"rollups"`
	Duration      time.Duration `json:"duration"`
}

// Config wires a Scanner. Runs and Progress are optional.
type Config struct {
	Pensioners PensionerSource
	Payments   PaymentSource
	Sentences  SentenceStore
	Runs       RunRecorder
	Log        zerolog.Logger

	// Progress is called every ProgressEvery pensioners and once at the
	// end. ProgressEvery defaults to 100.
	Progress      ProgressFunc
	ProgressEvery int
}

// Scanner runs the full analysis. Writes are sequential; per-match
// idempotency comes from the composite index ids and rollups are full
// overwrites, so a rerun converges to the same document set. Two scanners
// racing on the same database are last-write-wins and are not coordinated;
// that is an accepted risk.
type Scanner struct {
	cfg Config
}

func New(cfg Config) *Scanner {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	return &Scanner{cfg: cfg}
}

// Run executes one full scan. The scan is not transactional: on failure,
// everything written so far stays persisted and the run record is marked
// FAILED with the cause.
func (s *Scanner) Run(ctx context.Context) (*Summary, error) {
	log := s.cfg.Log
	started := time.Now()

	var runID string
	if s.cfg.Runs != nil {
		var err error
		runID, err = s.cfg.Runs.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("Run: starting scan run: %w", err)
		}
	}

	summary := &Summary{RunID: runID}

	pensioners, err := s.cfg.Pensioners.List(ctx)
	if err != nil {
		s.fail(ctx, runID, err)
		return nil, fmt.Errorf("Run: listing pensioners: %w", err)
	}
	total := len(pensioners)

	log.Info().Str("scan_run_id", runID).Int("pensioners", total).Msg("Starting full sentence scan")

	for i, p := range pensioners {
		if err := ctx.Err(); err != nil {
			s.fail(ctx, runID, err)
			return nil, fmt.Errorf("Run: scan cancelled: %w", err)
		}

		matches, err := s.scanPensioner(ctx, p)
		if err != nil {
			s.fail(ctx, runID, err)
			return nil, err
		}
		summary.Coincidencias += len(matches)
		summary.Pensionados++

		if len(matches) > 0 {
			if err := s.flushRollup(ctx, p, matches); err != nil {
				s.fail(ctx, runID, err)
				return nil, err
			}
			summary.Rollups++
		}

		if s.cfg.Progress != nil && ((i+1)%s.cfg.ProgressEvery == 0 || i+1 == total) {
			s.cfg.Progress(i+1, total)
		}
	}

	summary.Duration = time.Since(started)

	if s.cfg.Runs != nil {
		if err := s.cfg.Runs.MarkSucceeded(ctx, runID, summary.Pensionados, summary.Coincidencias, summary.Rollups); err != nil {
			log.Error().Err(err).Str("scan_run_id", runID).Msg("Failed to close scan run record")
		}
	}

	log.Info().
		Str("scan_run_id", runID).
		Int("pensioners", summary.Pensionados).
		Int("matches", summary.Coincidencias).
		Int("rollups", summary.Rollups).
		Dur("duration", summary.Duration).
		Msg("Full sentence scan finished")

	return summary, nil
}

// scanPensioner classifies every payment of one pensioner and upserts the
// per-match index entries.
func (s *Scanner) scanPensioner(ctx context.Context, p *domain.Pensionado) ([]domain.SentenciaDetalle, error) {
	pagos, err := s.cfg.Payments.ListByPensionado(ctx, p.Documento)
	if err != nil {
		return nil, fmt.Errorf("scanPensioner: payments of %s: %w", p.Documento, err)
	}

	var detalles []domain.SentenciaDetalle
	for _, pago := range pagos {
		for _, d := range sentencia.Classify(pago) {
			entry := &domain.SentenciaIndex{
				ID:           sentencia.IndexID(p.Documento, d.PagoID, d.Concepto),
				PensionadoID: p.Documento,
				PagoID:       d.PagoID,
				Concepto:     d.Concepto,
				Valor:        d.Valor,
				FechaPago:    d.FechaPago,
				PeriodoPago:  d.PeriodoPago,
			}
			if err := s.cfg.Sentences.UpsertIndex(ctx, entry); err != nil {
				return nil, fmt.Errorf("scanPensioner: index entry %s: %w", entry.ID, err)
			}
			detalles = append(detalles, d)
		}
	}
	return detalles, nil
}

// flushRollup overwrites the pensioner's rollup. A previously analyzed
// rollup loses its triage marker here; that replicates the source behavior
// and is logged so the reset is visible.
func (s *Scanner) flushRollup(ctx context.Context, p *domain.Pensionado, detalles []domain.SentenciaDetalle) error {
	if prior, err := s.cfg.Sentences.GetRollup(ctx, p.Documento); err == nil && prior != nil && prior.Analizado {
		s.cfg.Log.Warn().
			Str("pensioner_id", p.Documento).
			Msg("Re-scan is overwriting a rollup that was marked analyzed; triage state resets")
	}

	rollup := sentencia.BuildRollup(p, detalles)
	if rollup == nil {
		return nil
	}
	if err := s.cfg.Sentences.SaveRollup(ctx, rollup); err != nil {
		return fmt.Errorf("flushRollup: rollup of %s: %w", p.Documento, err)
	}
	return nil
}

// fail closes the run record best-effort; the scan error itself is what
// callers see.
func (s *Scanner) fail(ctx context.Context, runID string, scanErr error) {
	if s.cfg.Runs == nil || runID == "" {
		return
	}
	if err := s.cfg.Runs.MarkFailed(ctx, runID, scanErr); err != nil {
		s.cfg.Log.Error().Err(err).Str("scan_run_id", runID).Msg("Failed to mark scan run as failed")
	}
}
