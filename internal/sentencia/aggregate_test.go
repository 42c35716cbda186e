package sentencia

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

var pensionado = &domain.Pensionado{
	Documento:   "12345678",
	Nombre:      "María Pérez",
	Dependencia: "Gerencia Financiera",
	CentroCosto: "CC-010",
}

func detalle(concepto string, valor float64, fecha time.Time, periodo string) domain.SentenciaDetalle {
	return domain.SentenciaDetalle{
		Concepto:    concepto,
		Valor:       valor,
		FechaPago:   fecha,
		PagoID:      "pago-x",
		PeriodoPago: periodo,
	}
}

func TestBuildRollup(t *testing.T) {
	t1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)

	detalles := []domain.SentenciaDetalle{
		detalle("470-Costas Procesales", 100, t1, "1 mar. 2024 a 15 mar. 2024"),
		detalle("785-Retro Mesada Adicional M1", -50, t2, "1 ene. 2025 a 15 ene. 2025"),
		detalle("779-Procesos Y Sentencia Judiciales", 200, t3, "16 nov. 2024 a 30 nov. 2024"),
	}

	r := BuildRollup(pensionado, detalles)
	if r == nil {
		t.Fatal("expected a rollup, got nil")
	}

	if r.PensionadoID != "12345678" || r.Nombre != "María Pérez" || r.Dependencia != "Gerencia Financiera" {
		t.Errorf("denormalized pensioner fields wrong: %+v", r)
	}
	if r.TotalCostasProc != 100 {
		t.Errorf("TotalCostasProc = %v, want 100", r.TotalCostasProc)
	}
	if r.TotalRetroMesada != -50 {
		t.Errorf("TotalRetroMesada = %v, want -50", r.TotalRetroMesada)
	}
	if r.TotalProcesos != 200 {
		t.Errorf("TotalProcesos = %v, want 200", r.TotalProcesos)
	}
	if r.TotalGeneral != 250 {
		t.Errorf("TotalGeneral = %v, want 250", r.TotalGeneral)
	}
	if !r.UltimoPago.Equal(t2) {
		t.Errorf("UltimoPago = %v, want %v", r.UltimoPago, t2)
	}
	if r.Analizado || r.FechaAnalisis != nil {
		t.Error("fresh rollup must not be marked analyzed")
	}
}

func TestBuildRollup_NoDetails(t *testing.T) {
	if r := BuildRollup(pensionado, nil); r != nil {
		t.Errorf("expected nil rollup for pensioner without matches, got %+v", r)
	}
}

func TestLatestYear(t *testing.T) {
	older := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("newest timestamp wins over numeric year order", func(t *testing.T) {
		// The older payment carries the LARGER period year; the newest
		// timestamp still decides which period string is consulted.
		detalles := []domain.SentenciaDetalle{
			detalle("470-Costas Procesales", 10, older, "1 ene. 2025 a 15 ene. 2025"),
			detalle("470-Costas Procesales", 10, newer, "16 dic. 2024 a 31 dic. 2024"),
		}
		if got := LatestYear(detalles); got != 2024 {
			t.Errorf("LatestYear = %d, want 2024", got)
		}
	})

	t.Run("fallback to payment timestamp year on parse failure", func(t *testing.T) {
		detalles := []domain.SentenciaDetalle{
			detalle("470-Costas Procesales", 10, newer, "periodo ilegible"),
		}
		if got := LatestYear(detalles); got != 2025 {
			t.Errorf("LatestYear = %d, want fallback 2025", got)
		}
	})

	t.Run("empty details", func(t *testing.T) {
		if got := LatestYear(nil); got != 0 {
			t.Errorf("LatestYear(nil) = %d, want 0", got)
		}
	})
}

func TestLatestDate(t *testing.T) {
	fecha := time.Date(2025, 4, 28, 13, 0, 0, 0, time.UTC)

	t.Run("parsed period start", func(t *testing.T) {
		detalles := []domain.SentenciaDetalle{
			detalle("470-Costas Procesales", 10, fecha, "1 abr. 2025 a 15 abr. 2025"),
		}
		want := civil.Date{Year: 2025, Month: 4, Day: 1}
		if got := LatestDate(detalles); got != want {
			t.Errorf("LatestDate = %v, want %v", got, want)
		}
	})

	t.Run("fallback to timestamp date", func(t *testing.T) {
		detalles := []domain.SentenciaDetalle{
			detalle("470-Costas Procesales", 10, fecha, "???"),
		}
		want := civil.Date{Year: 2025, Month: 4, Day: 28}
		if got := LatestDate(detalles); got != want {
			t.Errorf("LatestDate = %v, want %v", got, want)
		}
	})
}

// End-to-end: classify one payment and roll it up, matching the documented
// scenario of a pensioner with one qualifying and one ignored line item.
func TestClassifyAndRollup(t *testing.T) {
	pago := &domain.Pago{
		ID:             "pago-1",
		PeriodoPago:    "1 abr. 2025 a 15 abr. 2025",
		FechaProcesado: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		Detalles: []domain.PagoDetalle{
			{Concepto: "470-Costas Procesales", Ingresos: 50000},
			{Concepto: "999-OtroConcepto", Ingresos: 10000},
		},
	}

	detalles := Classify(pago)
	if len(detalles) != 1 {
		t.Fatalf("expected exactly 1 detail, got %d", len(detalles))
	}
	if detalles[0].Valor != 50000 {
		t.Errorf("Valor = %v, want 50000", detalles[0].Valor)
	}

	r := BuildRollup(&domain.Pensionado{Documento: "P1", Nombre: "P Uno"}, detalles)
	if r == nil {
		t.Fatal("expected rollup")
	}
	if r.TotalCostasProc != 50000 || r.TotalGeneral != 50000 {
		t.Errorf("totals = costas %v general %v, want 50000/50000", r.TotalCostasProc, r.TotalGeneral)
	}
	if r.TotalRetroMesada != 0 || r.TotalProcesos != 0 {
		t.Errorf("unrelated categories must stay zero: %+v", r)
	}
}
