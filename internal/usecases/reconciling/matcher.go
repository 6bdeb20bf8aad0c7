package reconciling

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// CostMatch agrupa um registro de custo com as visitas atribuídas a ele
// pelo matching exato. Visits vazio significa gasto sem visita rastreada
// (origem de uma entrada artificial na alocação).
type CostMatch struct {
	Record *domain.CostRecord
	Key    MatchKey
	Visits []*domain.Visit
}

// MatchResult é a partição produzida pelo matching de um (plataforma, dia):
// registros com suas visitas, e visitas que não casaram com nenhum registro
// (candidatas ao enriquecimento histórico).
type MatchResult struct {
	Matches         []*CostMatch
	UnmatchedVisits []*domain.Visit
	Warnings        []string
}

// Match constrói o índice chave → registro de custo e particiona as visitas
// da plataforma em atribuídas e não atribuídas.
//
// Chaves duplicadas entre registros do mesmo dia são um problema de
// qualidade de dados: o conflito é registrado como aviso e o último
// registro vence, com os registros ordenados por id para manter execuções
// reproduzíveis. Visitas de outras plataformas são ignoradas; cada
// plataforma é processada de forma independente.
func Match(builder KeyBuilder, costRecords []*domain.CostRecord, visits []*domain.Visit) *MatchResult {
	result := &MatchResult{}

	sorted := make([]*domain.CostRecord, len(costRecords))
	copy(sorted, costRecords)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]*CostMatch, len(sorted))
	for _, record := range sorted {
		key, ok := builder.KeyFromCostRecord(record)
		if !ok {
			// Registro sem chave derivável: continua elegível para virar
			// entrada artificial na alocação, mas nunca casa com visitas.
			result.Matches = append(result.Matches, &CostMatch{Record: record})
			result.addWarning("registro de custo %d (%s, site %s) sem chave derivável",
				record.ID, builder.Platform(), record.SiteID)
			continue
		}

		match := &CostMatch{Record: record, Key: key}
		if previous, exists := index[key.String()]; exists {
			result.addWarning("chave duplicada %q entre os registros %d e %d (%s); o último vence",
				key.String(), previous.Record.ID, record.ID, builder.Platform())
			for i, existing := range result.Matches {
				if existing == previous {
					result.Matches[i] = match
					break
				}
			}
			index[key.String()] = match
			continue
		}

		index[key.String()] = match
		result.Matches = append(result.Matches, match)
	}

	for _, visit := range visits {
		if visit.Platform != builder.Platform() {
			continue
		}

		key, ok := builder.KeyFromAdParams(visit.SiteID, visit.FirstActionTime, visit.AdParams)
		if !ok {
			result.UnmatchedVisits = append(result.UnmatchedVisits, visit)
			continue
		}

		match, found := index[key.String()]
		if !found {
			result.UnmatchedVisits = append(result.UnmatchedVisits, visit)
			continue
		}

		match.Visits = append(match.Visits, visit)
	}

	logrus.WithFields(logrus.Fields{
		"platform":         builder.Platform(),
		"cost_records":     len(costRecords),
		"visits":           len(visits),
		"unmatched_visits": len(result.UnmatchedVisits),
	}).Debug("Matching de registros de custo e visitas concluído")

	return result
}

func (r *MatchResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
