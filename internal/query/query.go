// Package query filters and sorts an already-loaded rollup working set in
// memory. It never touches persisted data; handlers re-run it whenever the
// working set or a parameter changes.
package query

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
	"github.com/jfbetancur/consorcio-manager/internal/sentencia"
)

// Category filter values accepted from the API.
const (
	CategoriaCostas      = "costas"
	CategoriaRetroMesada = "retromesada"
	CategoriaProcesos    = "procesos"
)

// SortKey selects the working-set order.
type SortKey string

const (
	SortNombre        SortKey = "nombre"
	SortTotal         SortKey = "total"
	SortUltimoPago    SortKey = "ultimoPago"
	SortUltimoPeriodo SortKey = "ultimoPeriodo"
)

// ParseSortKey maps a request parameter to a SortKey, defaulting to the
// grand-total order the store also uses.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortNombre, SortUltimoPago, SortUltimoPeriodo:
		return SortKey(s)
	default:
		return SortTotal
	}
}

// Filters are AND-combined; zero values mean "no constraint".
type Filters struct {
	// Texto matches name or pensioner id by accent- and case-insensitive
	// substring containment.
	Texto string
	// Dependencia is an exact match.
	Dependencia string
	// Categoria keeps rollups whose matching category subtotal is > 0.
	Categoria string
	// Analizado filters on the triage flag when non-nil.
	Analizado *bool
	// Ano filters on the resolved latest year when non-zero.
	Ano int
}

// Fold lowers a string and strips diacritics, so "Pérez" matches "perez".
func Fold(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func matches(r *domain.UsuarioSentencia, f Filters) bool {
	if f.Texto != "" {
		term := Fold(f.Texto)
		if !strings.Contains(Fold(r.Nombre), term) && !strings.Contains(Fold(r.PensionadoID), term) {
			return false
		}
	}
	if f.Dependencia != "" && r.Dependencia != f.Dependencia {
		return false
	}
	if f.Categoria != "" {
		switch f.Categoria {
		case CategoriaCostas:
			if r.TotalCostasProc <= 0 {
				return false
			}
		case CategoriaRetroMesada:
			if r.TotalRetroMesada <= 0 {
				return false
			}
		case CategoriaProcesos:
			if r.TotalProcesos <= 0 {
				return false
			}
		default:
			return false
		}
	}
	if f.Analizado != nil && r.Analizado != *f.Analizado {
		return false
	}
	if f.Ano != 0 && sentencia.LatestYear(r.Detalles) != f.Ano {
		return false
	}
	return true
}

// Apply returns a new slice with the filters applied and the sort order
// imposed. The input slice is never mutated.
func Apply(rollups []*domain.UsuarioSentencia, f Filters, key SortKey) []*domain.UsuarioSentencia {
	result := make([]*domain.UsuarioSentencia, 0, len(rollups))
	for _, r := range rollups {
		if matches(r, f) {
			result = append(result, r)
		}
	}

	switch key {
	case SortNombre:
		sort.SliceStable(result, func(i, j int) bool {
			return Fold(result[i].Nombre) < Fold(result[j].Nombre)
		})
	case SortUltimoPago:
		sort.SliceStable(result, func(i, j int) bool {
			// Zero timestamps sort last.
			if result[j].UltimoPago.IsZero() {
				return !result[i].UltimoPago.IsZero()
			}
			if result[i].UltimoPago.IsZero() {
				return false
			}
			return result[i].UltimoPago.After(result[j].UltimoPago)
		})
	case SortUltimoPeriodo:
		sort.SliceStable(result, func(i, j int) bool {
			di := sentencia.LatestDate(result[i].Detalles)
			dj := sentencia.LatestDate(result[j].Detalles)
			if di != dj {
				return di.After(dj)
			}
			return result[i].TotalGeneral > result[j].TotalGeneral
		})
	default: // SortTotal
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].TotalGeneral > result[j].TotalGeneral
		})
	}

	return result
}
