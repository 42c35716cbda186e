package query

import (
	"sort"
	"strings"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// Suggestion is one name-search hit for the search box.
type Suggestion struct {
	PensionadoID string `json:"pensionadoId"`
	Nombre       string `json:"nombre"`
}

// Suggest returns up to max name suggestions for a partial term. Matching
// is accent- and case-insensitive containment on name or id; hits whose
// name STARTS with the term rank before plain containment hits, names
// alphabetical within each rank.
func Suggest(rollups []*domain.UsuarioSentencia, term string, max int) []Suggestion {
	term = Fold(strings.TrimSpace(term))
	if term == "" || max <= 0 {
		return nil
	}

	type ranked struct {
		Suggestion
		rank int
	}
	var hits []ranked
	for _, r := range rollups {
		nombre := Fold(r.Nombre)
		id := Fold(r.PensionadoID)
		switch {
		case strings.HasPrefix(nombre, term) || strings.HasPrefix(id, term):
			hits = append(hits, ranked{Suggestion{r.PensionadoID, r.Nombre}, 0})
		case strings.Contains(nombre, term) || strings.Contains(id, term):
			hits = append(hits, ranked{Suggestion{r.PensionadoID, r.Nombre}, 1})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return Fold(hits[i].Nombre) < Fold(hits[j].Nombre)
	})

	if len(hits) > max {
		hits = hits[:max]
	}
	result := make([]Suggestion, len(hits))
	for i, h := range hits {
		result[i] = h.Suggestion
	}
	return result
}
