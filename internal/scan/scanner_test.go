package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

type mockStore struct {
	pensioners []*domain.Pensionado
	payments   map[string][]*domain.Pago

	index   map[string]*domain.SentenciaIndex
	rollups map[string]*domain.UsuarioSentencia

	indexErrAfter int // fail UpsertIndex after this many writes, 0 = never
	indexWrites   int
}

func newMockStore() *mockStore {
	return &mockStore{
		payments: make(map[string][]*domain.Pago),
		index:    make(map[string]*domain.SentenciaIndex),
		rollups:  make(map[string]*domain.UsuarioSentencia),
	}
}

func (m *mockStore) List(ctx context.Context) ([]*domain.Pensionado, error) {
	return m.pensioners, nil
}

func (m *mockStore) ListByPensionado(ctx context.Context, documento string) ([]*domain.Pago, error) {
	return m.payments[documento], nil
}

func (m *mockStore) UpsertIndex(ctx context.Context, entry *domain.SentenciaIndex) error {
	m.indexWrites++
	if m.indexErrAfter > 0 && m.indexWrites > m.indexErrAfter {
		return errors.New("store unavailable")
	}
	m.index[entry.ID] = entry
	return nil
}

func (m *mockStore) SaveRollup(ctx context.Context, rollup *domain.UsuarioSentencia) error {
	m.rollups[rollup.PensionadoID] = rollup
	return nil
}

func (m *mockStore) GetRollup(ctx context.Context, pensionadoID string) (*domain.UsuarioSentencia, error) {
	r, ok := m.rollups[pensionadoID]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

type mockRuns struct {
	started   int
	succeeded int
	failed    int
	lastErr   error
}

func (m *mockRuns) Start(ctx context.Context) (string, error) {
	m.started++
	return "run-1", nil
}

func (m *mockRuns) MarkSucceeded(ctx context.Context, runID string, pensionados, coincidencias, rollups int) error {
	m.succeeded++
	return nil
}

func (m *mockRuns) MarkFailed(ctx context.Context, runID string, scanErr error) error {
	m.failed++
	m.lastErr = scanErr
	return nil
}

func fixtureStore() *mockStore {
	store := newMockStore()
	store.pensioners = []*domain.Pensionado{
		{Documento: "P1", Nombre: "Pensionado Uno", Dependencia: "Dep A"},
		{Documento: "P2", Nombre: "Pensionado Dos", Dependencia: "Dep B"},
		{Documento: "P3", Nombre: "Pensionado Tres", Dependencia: "Dep A"},
	}
	fecha := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	store.payments["P1"] = []*domain.Pago{
		{
			ID:             "pago-1",
			PeriodoPago:    "1 abr. 2025 a 15 abr. 2025",
			FechaProcesado: fecha,
			Detalles: []domain.PagoDetalle{
				{Concepto: "470-Costas Procesales", Ingresos: 50000},
				{Concepto: "999-OtroConcepto", Ingresos: 10000},
			},
		},
	}
	store.payments["P2"] = []*domain.Pago{
		{
			ID:             "pago-2",
			PeriodoPago:    "1 abr. 2025 a 15 abr. 2025",
			FechaProcesado: fecha,
			Detalles: []domain.PagoDetalle{
				{Concepto: "001-Mesada Pensional", Ingresos: 2000000},
			},
		},
	}
	// P3 has no payments at all.
	return store
}

func newScanner(store *mockStore, runs RunRecorder, progress ProgressFunc, every int) *Scanner {
	return New(Config{
		Pensioners:    store,
		Payments:      store,
		Sentences:     store,
		Runs:          runs,
		Log:           zerolog.Nop(),
		Progress:      progress,
		ProgressEvery: every,
	})
}

func TestScannerRun(t *testing.T) {
	store := fixtureStore()
	runs := &mockRuns{}

	summary, err := newScanner(store, runs, nil, 0).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Pensionados != 3 {
		t.Errorf("Pensionados = %d, want 3", summary.Pensionados)
	}
	if summary.Coincidencias != 1 {
		t.Errorf("Coincidencias = %d, want 1", summary.Coincidencias)
	}
	if summary.Rollups != 1 {
		t.Errorf("Rollups = %d, want 1", summary.Rollups)
	}

	if len(store.index) != 1 {
		t.Fatalf("index entries = %d, want 1", len(store.index))
	}
	if len(store.rollups) != 1 {
		t.Fatalf("rollups = %d, want 1 (only matching pensioners get one)", len(store.rollups))
	}

	r := store.rollups["P1"]
	if r == nil {
		t.Fatal("expected rollup for P1")
	}
	if r.TotalCostasProc != 50000 || r.TotalGeneral != 50000 {
		t.Errorf("rollup totals = %v/%v, want 50000/50000", r.TotalCostasProc, r.TotalGeneral)
	}

	if runs.started != 1 || runs.succeeded != 1 || runs.failed != 0 {
		t.Errorf("run lifecycle = %+v, want one started and succeeded", runs)
	}
}

func TestScannerRun_Idempotent(t *testing.T) {
	store := fixtureStore()

	scanner := newScanner(store, nil, nil, 0)
	if _, err := scanner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstIndex := len(store.index)
	firstRollups := len(store.rollups)

	if _, err := scanner.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(store.index) != firstIndex {
		t.Errorf("index entries after rerun = %d, want %d (composite ids overwrite)", len(store.index), firstIndex)
	}
	if len(store.rollups) != firstRollups {
		t.Errorf("rollups after rerun = %d, want %d", len(store.rollups), firstRollups)
	}
}

func TestScannerRun_ResetsAnalyzedFlag(t *testing.T) {
	store := fixtureStore()
	fecha := time.Now()
	store.rollups["P1"] = &domain.UsuarioSentencia{
		PensionadoID:  "P1",
		Analizado:     true,
		FechaAnalisis: &fecha,
	}

	if _, err := newScanner(store, nil, nil, 0).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	r := store.rollups["P1"]
	if r.Analizado || r.FechaAnalisis != nil {
		t.Errorf("re-scan must overwrite triage state wholesale, got analizado=%v fecha=%v", r.Analizado, r.FechaAnalisis)
	}
}

func TestScannerRun_Progress(t *testing.T) {
	store := fixtureStore()

	var calls [][2]int
	progress := func(done, total int) { calls = append(calls, [2]int{done, total}) }

	if _, err := newScanner(store, nil, progress, 2).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 3 pensioners, notify every 2 and at the end: (2,3) then (3,3).
	want := [][2]int{{2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestScannerRun_WriteFailureKeepsEarlierWrites(t *testing.T) {
	store := fixtureStore()
	// Second qualifying match will fail; give P2 a qualifying payment too.
	store.payments["P2"][0].Detalles = append(store.payments["P2"][0].Detalles,
		domain.PagoDetalle{Concepto: "785-Retro Mesada Adicional M1", Ingresos: 70000})
	store.indexErrAfter = 1
	runs := &mockRuns{}

	_, err := newScanner(store, runs, nil, 0).Run(context.Background())
	if err == nil {
		t.Fatal("expected scan to fail")
	}

	if len(store.index) != 1 {
		t.Errorf("index entries = %d, want the 1 written before the failure to persist", len(store.index))
	}
	if runs.failed != 1 {
		t.Errorf("run not marked failed: %+v", runs)
	}
	if runs.lastErr == nil {
		t.Error("expected the failure cause on the run record")
	}
}
