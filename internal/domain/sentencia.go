package domain

import "time"

// SentenciaDetalle is one judicial-sentence line-item match, derived from a
// payment by the classifier. Valor is signed (ingresos - egresos) and never
// zero: zero-net matches are discarded before a detail is produced.
type SentenciaDetalle struct {
	Concepto    string    `firestore:"concepto" json:"concepto"`
	Valor       float64   `firestore:"valor" json:"valor"`
	FechaPago   time.Time `firestore:"fechaPago" json:"fechaPago"`
	PagoID      string    `firestore:"pagoId" json:"pagoId"`
	PeriodoPago string    `firestore:"periodoPago" json:"periodoPago"`
}

// SentenciaIndex is the persisted form of one match in the flat index
// collection. Its document id is the deterministic composite of pensioner,
// payment and sanitized concept, so re-running the scan overwrites instead
// of duplicating.
type SentenciaIndex struct {
	ID           string    `firestore:"-" json:"id"`
	PensionadoID string    `firestore:"pensionadoId" json:"pensionadoId"`
	PagoID       string    `firestore:"pagoId" json:"pagoId"`
	Concepto     string    `firestore:"concepto" json:"concepto"`
	Valor        float64   `firestore:"valor" json:"valor"`
	FechaPago    time.Time `firestore:"fechaPago" json:"fechaPago"`
	PeriodoPago  string    `firestore:"periodoPago" json:"periodoPago"`
}

// UsuarioSentencia is the per-pensioner rollup of all sentence matches, the
// materialized view the browsing surface reads. It exists only for
// pensioners with at least one match and is overwritten wholesale by each
// full re-scan.
//
// Analizado and FechaAnalisis are a manual triage marker mutated outside the
// scan through a partial merge-update. The scan does NOT merge the prior
// marker back in, so a full re-scan resets manual triage state; the scanner
// logs a warning when that happens. See DESIGN.md.
type UsuarioSentencia struct {
	PensionadoID string             `firestore:"pensionadoId" json:"pensionadoId"`
	Nombre       string             `firestore:"nombre" json:"nombre"`
	Dependencia  string             `firestore:"dependencia" json:"dependencia"`
	CentroCosto  string             `firestore:"centroCosto" json:"centroCosto"`
	Detalles     []SentenciaDetalle `firestore:"detalles" json:"detalles"`

	TotalCostasProc  float64 `firestore:"totalCostasProc" json:"totalCostasProc"`
	TotalRetroMesada float64 `firestore:"totalRetroMesada" json:"totalRetroMesada"`
	TotalProcesos    float64 `firestore:"totalProcesos" json:"totalProcesos"`
	TotalGeneral     float64 `firestore:"totalGeneral" json:"totalGeneral"`

	UltimoPago time.Time `firestore:"ultimoPago" json:"ultimoPago"`

	Analizado     bool       `firestore:"isAnalyzed" json:"isAnalyzed"`
	FechaAnalisis *time.Time `firestore:"fechaAnalisis" json:"fechaAnalisis,omitempty"`
}
