package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// ScanRun records one execution of the full sentence scan: when it started,
// how it ended and what it produced. The scan itself is not transactional;
// a FAILED run means earlier index/rollup writes are still persisted.
type ScanRun struct {
	ID            string     `firestore:"-" json:"id"`
	StartedAt     time.Time  `firestore:"startedAt" json:"startedAt"`
	FinishedAt    *time.Time `firestore:"finishedAt" json:"finishedAt,omitempty"`
	Status        string     `firestore:"status" json:"status"`
	ErrorMessage  string     `firestore:"errorMessage" json:"errorMessage,omitempty"`
	Pensionados   int        `firestore:"pensionados" json:"pensionados"`
	Coincidencias int        `firestore:"coincidencias" json:"coincidencias"`
	Rollups       int        `firestore:"rollups" json:"rollups"`
}

const (
	ScanRunRunning = "RUNNING"
	ScanRunSuccess = "SUCCESS"
	ScanRunFailed  = "FAILED"
)

// ScanRunRepository persists scan-run records.
type ScanRunRepository struct {
	client *firestore.Client
}

func NewScanRunRepository(client *firestore.Client) *ScanRunRepository {
	return &ScanRunRepository{client: client}
}

// Start creates a RUNNING scan-run record and returns its id.
func (r *ScanRunRepository) Start(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	run := &ScanRun{
		StartedAt: time.Now(),
		Status:    ScanRunRunning,
	}
	if _, err := r.client.Collection(colScanRuns).Doc(runID).Set(ctx, run); err != nil {
		return "", fmt.Errorf("Start: writing scan run: %w", err)
	}
	return runID, nil
}

// MarkSucceeded closes a scan run with SUCCESS and the final counters.
func (r *ScanRunRepository) MarkSucceeded(ctx context.Context, runID string, pensionados, coincidencias, rollups int) error {
	now := time.Now()
	_, err := r.client.Collection(colScanRuns).Doc(runID).Update(ctx, []firestore.Update{
		{Path: "status", Value: ScanRunSuccess},
		{Path: "finishedAt", Value: &now},
		{Path: "errorMessage", Value: ""},
		{Path: "pensionados", Value: pensionados},
		{Path: "coincidencias", Value: coincidencias},
		{Path: "rollups", Value: rollups},
	})
	if err != nil {
		return fmt.Errorf("MarkSucceeded: updating scan run %s: %w", runID, err)
	}
	return nil
}

// MarkFailed closes a scan run with FAILED and the error message, truncated
// to keep the record small.
func (r *ScanRunRepository) MarkFailed(ctx context.Context, runID string, scanErr error) error {
	errMsg := ""
	if scanErr != nil {
		errMsg = scanErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	now := time.Now()
	_, err := r.client.Collection(colScanRuns).Doc(runID).Update(ctx, []firestore.Update{
		{Path: "status", Value: ScanRunFailed},
		{Path: "finishedAt", Value: &now},
		{Path: "errorMessage", Value: errMsg},
	})
	if err != nil {
		return fmt.Errorf("MarkFailed: updating scan run %s: %w", runID, err)
	}
	return nil
}

// Get returns one scan run, or ErrNotFound.
func (r *ScanRunRepository) Get(ctx context.Context, runID string) (*ScanRun, error) {
	snap, err := r.client.Collection(colScanRuns).Doc(runID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: scan run %s: %w", runID, err)
	}

	var run ScanRun
	if err := snap.DataTo(&run); err != nil {
		return nil, fmt.Errorf("Get: reading scan run %s: %w", runID, err)
	}
	run.ID = snap.Ref.ID
	return &run, nil
}
