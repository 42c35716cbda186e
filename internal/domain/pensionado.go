package domain

import "time"

// Pensionado is one pension record administered by the portal. The document
// number is the identity everywhere: it is the Firestore document id of the
// pensioner, of the optional PARISS-1 secondary record, and the owner of the
// payments sub-collection. Pensioner records are created by data migration
// outside this system and are read-only here.
type Pensionado struct {
	Documento   string `firestore:"documento" json:"documento"`
	Nombre      string `firestore:"nombre" json:"nombre"`
	CentroCosto string `firestore:"centroCosto" json:"centroCosto"`
	Dependencia string `firestore:"dependencia" json:"dependencia"`
	Regimen     string `firestore:"regimen" json:"regimen"`
	Grado       string `firestore:"grado" json:"grado"`
	Empresa     string `firestore:"empresa" json:"empresa"`

	// Pariss1 carries the merged secondary record when one exists for the
	// same document number. Nil when the pensioner has no PARISS-1 entry.
	Pariss1 *Pariss1Data `firestore:"-" json:"pariss1,omitempty"`
}

// Pariss1Data holds the demographic and legal pension attributes from the
// secondary PARISS-1 collection, keyed by the same document number.
type Pariss1Data struct {
	FechaNacimiento  *time.Time `firestore:"fechaNacimiento" json:"fechaNacimiento,omitempty"`
	ClaseRiesgo      string     `firestore:"claseRiesgo" json:"claseRiesgo"`
	Transicion       bool       `firestore:"transicion" json:"transicion"`
	SemanasCotizadas float64    `firestore:"semanasCotizadas" json:"semanasCotizadas"`
	MesadaInicial    float64    `firestore:"mesadaInicial" json:"mesadaInicial"`
}
