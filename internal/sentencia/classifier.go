// Package sentencia detects judicial-sentence payments inside payment line
// items and aggregates them into per-pensioner rollups.
package sentencia

import (
	"strings"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// Reference concept labels as they appear in the liquidation catalog. Each
// carries its numeric concept code; source line items are matched against
// the label text AFTER the code prefix, because exports do not always
// reproduce the code.
var conceptLabels = []string{
	"470-Costas Procesales",
	"785-Retro Mesada Adicional M1",
	"779-Procesos Y Sentencia Judiciales",
}

// labelSuffix strips the leading "NNN-" code from a reference label.
func labelSuffix(label string) string {
	if i := strings.Index(label, "-"); i >= 0 {
		return label[i+1:]
	}
	return label
}

// Classify scans a payment's line items and returns one SentenciaDetalle per
// (line item, reference label) match. A line item matches a label when its
// concept text contains the label's suffix. The detail value is the signed
// net contribution (ingresos - egresos); zero-net candidates are discarded.
// Several labels may match the same line item independently; no
// deduplication happens here.
func Classify(pago *domain.Pago) []domain.SentenciaDetalle {
	var detalles []domain.SentenciaDetalle

	for _, item := range pago.Detalles {
		for _, label := range conceptLabels {
			if !strings.Contains(item.Concepto, labelSuffix(label)) {
				continue
			}

			valor := item.Ingresos - item.Egresos
			if valor == 0 {
				continue
			}

			detalles = append(detalles, domain.SentenciaDetalle{
				Concepto:    item.Concepto,
				Valor:       valor,
				FechaPago:   pago.FechaProcesado,
				PagoID:      pago.ID,
				PeriodoPago: pago.PeriodoPago,
			})
		}
	}

	return detalles
}
