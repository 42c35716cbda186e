// Package firestore holds the repositories backing the portal: pensioner
// and payment reads, the derived sentence index and rollup writes, portal
// users and scan-run records. All collections are schema-on-read; there are
// no migrations.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

// Collection names as provisioned in the managed database.
const (
	colPensionados        = "pensionados"
	colPariss1            = "pariss1"
	colPagos              = "pagos"
	colSentenciasIndex    = "sentencias-index"
	colUsuariosSentencias = "usuarios-sentencias"
	colUsers              = "users"
	colScanRuns           = "scan-runs"
)

// ErrNotFound reports that a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// NewClient connects to the named Firestore database using Application
// Default Credentials.
func NewClient(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("NewClient: firestore client: %w", err)
	}
	return client, nil
}
