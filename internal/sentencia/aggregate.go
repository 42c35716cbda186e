package sentencia

import (
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
	"github.com/jfbetancur/consorcio-manager/internal/parse"
)

// Category substrings used for the rollup subtotals. They are disjoint by
// construction: no concept text contains more than one of them.
const (
	CategoriaCostas   = "Costas Procesales"
	CategoriaRetroMes = "Retro Mesada"
	CategoriaProcesos = "Procesos Y Sentencia"
)

// BuildRollup aggregates a pensioner's sentence details into the
// per-pensioner rollup. It returns nil when there are no details: pensioners
// without matches never get a rollup document.
//
// The rollup's analyzed fields are left at their zero values. Callers that
// overwrite an existing rollup are overwriting any manual triage marker;
// the scanner logs this case.
func BuildRollup(p *domain.Pensionado, detalles []domain.SentenciaDetalle) *domain.UsuarioSentencia {
	if len(detalles) == 0 {
		return nil
	}

	r := &domain.UsuarioSentencia{
		PensionadoID: p.Documento,
		Nombre:       p.Nombre,
		Dependencia:  p.Dependencia,
		CentroCosto:  p.CentroCosto,
		Detalles:     detalles,
	}

	for _, d := range detalles {
		switch {
		case strings.Contains(d.Concepto, CategoriaCostas):
			r.TotalCostasProc += d.Valor
		case strings.Contains(d.Concepto, CategoriaRetroMes):
			r.TotalRetroMesada += d.Valor
		case strings.Contains(d.Concepto, CategoriaProcesos):
			r.TotalProcesos += d.Valor
		}
		if d.FechaPago.After(r.UltimoPago) {
			r.UltimoPago = d.FechaPago
		}
	}
	r.TotalGeneral = r.TotalCostasProc + r.TotalRetroMesada + r.TotalProcesos

	return r
}

// newestDetail returns the detail with the most recent payment timestamp,
// or nil for an empty slice.
func newestDetail(detalles []domain.SentenciaDetalle) *domain.SentenciaDetalle {
	if len(detalles) == 0 {
		return nil
	}
	ordered := make([]domain.SentenciaDetalle, len(detalles))
	copy(ordered, detalles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FechaPago.After(ordered[j].FechaPago)
	})
	return &ordered[0]
}

// LatestYear resolves the year a pensioner's most recent sentence payment
// belongs to. The newest detail's period string decides; when the period
// does not parse, the calendar year of the payment timestamp is the
// fallback. Zero when there are no details.
func LatestYear(detalles []domain.SentenciaDetalle) int {
	d := newestDetail(detalles)
	if d == nil {
		return 0
	}
	if p, err := parse.PeriodOf(d.PeriodoPago); err == nil {
		return p.Year
	}
	return d.FechaPago.Year()
}

// LatestDate resolves the best-effort calendar date of the most recent
// sentence payment, for the "latest period" sort: the parsed period start
// when the period string parses, otherwise the payment timestamp's date.
func LatestDate(detalles []domain.SentenciaDetalle) civil.Date {
	d := newestDetail(detalles)
	if d == nil {
		return civil.Date{}
	}
	if p, err := parse.PeriodOf(d.PeriodoPago); err == nil {
		return p.Start()
	}
	return civil.DateOf(d.FechaPago.In(time.UTC))
}
