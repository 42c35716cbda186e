package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// SentenciaRepository owns the two derived collections: the flat per-match
// index and the per-pensioner rollups the browsing surface reads.
type SentenciaRepository struct {
	client *firestore.Client
}

func NewSentenciaRepository(client *firestore.Client) *SentenciaRepository {
	return &SentenciaRepository{client: client}
}

// UpsertIndex writes one per-match index entry under its composite id.
// Writing the same entry again is a plain overwrite, which is what makes
// the full scan idempotent at the match level.
func (r *SentenciaRepository) UpsertIndex(ctx context.Context, entry *domain.SentenciaIndex) error {
	_, err := r.client.Collection(colSentenciasIndex).Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("UpsertIndex: writing %s: %w", entry.ID, err)
	}
	return nil
}

// SaveRollup overwrites one pensioner's rollup wholesale, analyzed fields
// included. The scan relies on this full-overwrite contract.
func (r *SentenciaRepository) SaveRollup(ctx context.Context, rollup *domain.UsuarioSentencia) error {
	_, err := r.client.Collection(colUsuariosSentencias).Doc(rollup.PensionadoID).Set(ctx, rollup)
	if err != nil {
		return fmt.Errorf("SaveRollup: writing %s: %w", rollup.PensionadoID, err)
	}
	return nil
}

// GetRollup returns one pensioner's rollup, or ErrNotFound.
func (r *SentenciaRepository) GetRollup(ctx context.Context, pensionadoID string) (*domain.UsuarioSentencia, error) {
	snap, err := r.client.Collection(colUsuariosSentencias).Doc(pensionadoID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetRollup: %s: %w", pensionadoID, err)
	}

	var rollup domain.UsuarioSentencia
	if err := snap.DataTo(&rollup); err != nil {
		return nil, fmt.Errorf("GetRollup: reading %s: %w", pensionadoID, err)
	}
	rollup.PensionadoID = snap.Ref.ID
	return &rollup, nil
}

// ListRollups returns the whole rollup collection ordered by grand total
// descending; the query layer filters and re-sorts this working set in
// memory.
func (r *SentenciaRepository) ListRollups(ctx context.Context) ([]*domain.UsuarioSentencia, error) {
	it := r.client.Collection(colUsuariosSentencias).
		OrderBy("totalGeneral", firestore.Desc).
		Documents(ctx)
	defer it.Stop()

	var result []*domain.UsuarioSentencia
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRollups: iterating rollups: %w", err)
		}

		var rollup domain.UsuarioSentencia
		if err := doc.DataTo(&rollup); err != nil {
			return nil, fmt.Errorf("ListRollups: reading rollup %s: %w", doc.Ref.ID, err)
		}
		rollup.PensionadoID = doc.Ref.ID
		result = append(result, &rollup)
	}
	return result, nil
}

// SetAnalyzed mutates ONLY the two triage fields of a rollup, leaving the
// aggregates untouched. This is the one write that happens outside the
// scan; a later full re-scan will overwrite it (see DESIGN.md).
func (r *SentenciaRepository) SetAnalyzed(ctx context.Context, pensionadoID string, analizado bool, fecha *time.Time) error {
	_, err := r.client.Collection(colUsuariosSentencias).Doc(pensionadoID).Update(ctx, []firestore.Update{
		{Path: "isAnalyzed", Value: analizado},
		{Path: "fechaAnalisis", Value: fecha},
	})
	if err != nil {
		return fmt.Errorf("SetAnalyzed: updating %s: %w", pensionadoID, err)
	}
	return nil
}
