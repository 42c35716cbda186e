// Package export renders the sentence rollups as an Excel workbook and
// stores the result in Cloud Storage for download.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

const sheetName = "Sentencias"

var headers = []string{
	"Documento",
	"Nombre",
	"Dependencia",
	"Centro de Costo",
	"Costas Procesales",
	"Retro Mesada",
	"Procesos Y Sentencia",
	"Total General",
	"Último Pago",
	"Analizado",
}

// BuildWorkbook renders one rollup per row, in the order given. The caller
// owns the returned file and must Close it.
func BuildWorkbook(rollups []*domain.UsuarioSentencia) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("BuildWorkbook: renaming sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("BuildWorkbook: header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("BuildWorkbook: header %q: %w", h, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", lastCol, headerStyle)
	}

	for i, r := range rollups {
		row := i + 2
		values := []interface{}{
			r.PensionadoID,
			r.Nombre,
			r.Dependencia,
			r.CentroCosto,
			r.TotalCostasProc,
			r.TotalRetroMesada,
			r.TotalProcesos,
			r.TotalGeneral,
			"",
			r.Analizado,
		}
		if !r.UltimoPago.IsZero() {
			values[8] = r.UltimoPago.Format("2006-01-02")
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("BuildWorkbook: cell for row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("BuildWorkbook: writing row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "D", 24)
	_ = f.SetColWidth(sheetName, "E", "J", 18)

	return f, nil
}
