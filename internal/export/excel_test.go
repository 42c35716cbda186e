package export

import (
	"testing"
	"time"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

func TestBuildWorkbook(t *testing.T) {
	rollups := []*domain.UsuarioSentencia{
		{
			PensionadoID:     "1017230000",
			Nombre:           "María Pérez",
			Dependencia:      "Gerencia",
			CentroCosto:      "CC-01",
			TotalCostasProc:  50000,
			TotalRetroMesada: 0,
			TotalProcesos:    120000,
			TotalGeneral:     170000,
			UltimoPago:       time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
			Analizado:        true,
		},
		{
			PensionadoID: "900200300",
			Nombre:       "Pedro Gómez",
			TotalGeneral: 70000,
		},
	}

	f, err := BuildWorkbook(rollups)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("workbook has %d rows, want header + 2", len(rows))
	}

	if rows[0][0] != "Documento" || rows[0][7] != "Total General" {
		t.Errorf("unexpected header row: %v", rows[0])
	}

	if rows[1][0] != "1017230000" || rows[1][1] != "María Pérez" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[1][8] != "2025-04-20" {
		t.Errorf("latest payment cell = %q, want 2025-04-20", rows[1][8])
	}

	// No payment date: the cell stays empty.
	if got := rows[2][8]; got != "" {
		t.Errorf("empty payment date rendered as %q", got)
	}
}
