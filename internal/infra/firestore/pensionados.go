package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// PensionadoRepository reads the pensioner collection and its optional
// PARISS-1 secondary records. Pensioners are read-only from this system.
type PensionadoRepository struct {
	client *firestore.Client
}

func NewPensionadoRepository(client *firestore.Client) *PensionadoRepository {
	return &PensionadoRepository{client: client}
}

// List returns every pensioner, without the PARISS-1 merge. The full scan
// iterates this set; the result order is whatever the store yields.
func (r *PensionadoRepository) List(ctx context.Context) ([]*domain.Pensionado, error) {
	it := r.client.Collection(colPensionados).Documents(ctx)
	defer it.Stop()

	var result []*domain.Pensionado
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iterating pensioners: %w", err)
		}

		var p domain.Pensionado
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("List: reading pensioner %s: %w", doc.Ref.ID, err)
		}
		p.Documento = doc.Ref.ID
		result = append(result, &p)
	}
	return result, nil
}

// Get returns one pensioner with the PARISS-1 secondary record merged in
// when one exists under the same document number.
func (r *PensionadoRepository) Get(ctx context.Context, documento string) (*domain.Pensionado, error) {
	snap, err := r.client.Collection(colPensionados).Doc(documento).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: pensioner %s: %w", documento, err)
	}

	var p domain.Pensionado
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("Get: reading pensioner %s: %w", documento, err)
	}
	p.Documento = snap.Ref.ID

	// A missing secondary record is the normal case; any read problem on
	// it degrades to "no PARISS-1 data" rather than failing the lookup.
	if sec, err := r.client.Collection(colPariss1).Doc(documento).Get(ctx); err == nil && sec.Exists() {
		var datos domain.Pariss1Data
		if err := sec.DataTo(&datos); err == nil {
			p.Pariss1 = &datos
		}
	}

	return &p, nil
}
