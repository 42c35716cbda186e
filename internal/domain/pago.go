package domain

import "time"

// Pago is one disbursement for a pensioner, stored in the per-pensioner
// payments sub-collection. ValorNeto keeps the locale-formatted string the
// liquidation system produced ("1.234,56"); parsing happens on read via the
// parse package. PeriodoPago is a free-text date range ("1 abr. 2025 a
// 15 abr. 2025") and is the authoritative source for which period the
// payment covers — the processing timestamps can lag the pay period.
type Pago struct {
	ID               string        `firestore:"-" json:"id"`
	Ano              string        `firestore:"ano" json:"ano"`
	PeriodoPago      string        `firestore:"periodoPago" json:"periodoPago"`
	FechaProcesado   time.Time     `firestore:"fechaProcesado" json:"fechaProcesado"`
	FechaLiquidacion time.Time     `firestore:"fechaLiquidacion" json:"fechaLiquidacion"`
	ValorNeto        string        `firestore:"valorNeto" json:"valorNeto"`
	Detalles         []PagoDetalle `firestore:"detalles" json:"detalles"`
}

// PagoDetalle is one labeled line item inside a payment. Ingresos and
// Egresos are both non-negative; the net contribution of the item is
// Ingresos - Egresos. The payment's ValorNeto should approximate the sum of
// the net contributions, but that is display-level only and not enforced.
type PagoDetalle struct {
	Concepto string  `firestore:"concepto" json:"concepto"`
	Ingresos float64 `firestore:"ingresos" json:"ingresos"`
	Egresos  float64 `firestore:"egresos" json:"egresos"`
}
