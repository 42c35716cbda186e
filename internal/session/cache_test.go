package session

import (
	"testing"
	"time"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(time.Minute)

	ws := WorkingSet{
		Pensionado: &domain.Pensionado{Documento: "P1", Nombre: "Uno"},
		Pagos:      []*domain.Pago{{ID: "pago-1"}},
	}
	c.Put("P1", ws)

	got, ok := c.Get("P1")
	if !ok {
		t.Fatal("expected cached working set")
	}
	if got.Pensionado.Nombre != "Uno" || len(got.Pagos) != 1 {
		t.Errorf("unexpected working set: %+v", got)
	}
	if got.LoadedAt.IsZero() {
		t.Error("LoadedAt should be stamped on Put")
	}

	if _, ok := c.Get("P2"); ok {
		t.Error("unexpected hit for unknown pensioner")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Minute)
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Put("P1", WorkingSet{Pensionado: &domain.Pensionado{Documento: "P1"}})

	if _, ok := c.Get("P1"); !ok {
		t.Fatal("entry should be fresh")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get("P1"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be evicted on access")
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("P1", WorkingSet{})
	c.Put("P2", WorkingSet{})

	c.Clear("P1")
	if _, ok := c.Get("P1"); ok {
		t.Error("cleared entry still present")
	}
	if _, ok := c.Get("P2"); !ok {
		t.Error("unrelated entry was dropped")
	}

	c.ClearAll()
	if c.Len() != 0 {
		t.Error("ClearAll left entries behind")
	}
}
