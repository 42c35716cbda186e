package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// PagoRepository reads the per-pensioner payments sub-collection. Payments
// are produced by the liquidation system; this portal never writes them.
type PagoRepository struct {
	client *firestore.Client
}

func NewPagoRepository(client *firestore.Client) *PagoRepository {
	return &PagoRepository{client: client}
}

func (r *PagoRepository) pagos(documento string) *firestore.CollectionRef {
	return r.client.Collection(colPensionados).Doc(documento).Collection(colPagos)
}

// ListByPensionado returns every payment of one pensioner.
func (r *PagoRepository) ListByPensionado(ctx context.Context, documento string) ([]*domain.Pago, error) {
	it := r.pagos(documento).Documents(ctx)
	defer it.Stop()

	var result []*domain.Pago
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListByPensionado: iterating payments of %s: %w", documento, err)
		}

		var p domain.Pago
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("ListByPensionado: reading payment %s/%s: %w", documento, doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		result = append(result, &p)
	}
	return result, nil
}

// GetMany returns the named payments of one pensioner, skipping ids that no
// longer exist. The detail view uses it to re-read exactly the source
// payments referenced by a rollup's matches.
func (r *PagoRepository) GetMany(ctx context.Context, documento string, pagoIDs []string) ([]*domain.Pago, error) {
	var result []*domain.Pago
	for _, id := range pagoIDs {
		snap, err := r.pagos(documento).Doc(id).Get(ctx)
		if snap != nil && !snap.Exists() {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("GetMany: payment %s/%s: %w", documento, id, err)
		}

		var p domain.Pago
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("GetMany: reading payment %s/%s: %w", documento, id, err)
		}
		p.ID = snap.Ref.ID
		result = append(result, &p)
	}
	return result, nil
}
