package reconciling

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// AllocationResult é a saída da alocação de custo de um (plataforma, dia):
// as entradas reais a gravar, as entradas artificiais a fazer upsert, os
// hashes artificiais cujo custo deve ser zerado (visitas reais têm
// precedência) e as estatísticas de validação.
type AllocationResult struct {
	RealEntries            []*domain.LedgerEntry
	ArtificialEntries      []*domain.LedgerEntry
	ZeroedArtificialHashes []string
	Stats                  *domain.PlatformReconciliation
	Warnings               []string
}

// Allocate distribui o custo de cada registro entre as visitas atribuídas a
// ele, na ordem de prioridade:
//
//  1. custo zero: nada é gravado, com ou sem visitas;
//  2. visitas atribuídas: divisão igual do custo entre elas (média estilo
//     CPC, nunca proporcional a outra métrica); um eventual registro
//     artificial pré-existente da mesma chave tem o custo zerado, não
//     apagado;
//  3. sem visitas: uma entrada artificial carrega o custo inteiro, com
//     unique_hash determinístico para que reexecuções não dupliquem.
func Allocate(platform domain.Platform, date time.Time, matches []*CostMatch) (*AllocationResult, error) {
	dateStr := date.Format(time.DateOnly)
	result := &AllocationResult{
		Stats: &domain.PlatformReconciliation{
			Platform: platform,
			Date:     dateStr,
		},
	}

	for _, match := range matches {
		record := match.Record
		result.Stats.ReportedCost += record.Cost
		result.Stats.ReportedClicks += record.Clicks

		if record.Cost == 0 {
			// Ruído de impressões/cliques sem gasto: nenhuma entrada.
			continue
		}

		platformData, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar registro de custo %d: %w", record.ID, err)
		}

		if len(match.Visits) == 0 {
			entry := buildArtificialEntry(record, match.Key, dateStr, platformData)
			result.ArtificialEntries = append(result.ArtificialEntries, entry)
			result.Stats.ArtificialVisits++
			result.Stats.AllocatedCost += record.Cost
			continue
		}

		share := record.Cost / float64(len(match.Visits))
		for _, visit := range match.Visits {
			entry := buildRealEntry(record, match.Key, visit, dateStr, platformData, share)
			result.RealEntries = append(result.RealEntries, entry)
			result.Stats.AllocatedCost += share
		}
		result.Stats.MatchedVisits += len(match.Visits)

		// Visitas reais absorvem todo o custo: um registro artificial
		// deixado por uma execução anterior da mesma chave é zerado.
		result.ZeroedArtificialHashes = append(result.ZeroedArtificialHashes,
			ArtificialUniqueHash(record.SiteID, dateStr, platform.Channel(), platformData))
	}

	return result, nil
}

func buildRealEntry(
	record *domain.CostRecord,
	key MatchKey,
	visit *domain.Visit,
	dateStr string,
	platformData []byte,
	share float64,
) *domain.LedgerEntry {
	cost := share
	return &domain.LedgerEntry{
		SiteID:              visit.SiteID,
		Origin:              domain.RealVisit(visit.VisitID),
		VisitorID:           visit.VisitorID,
		UniqueHash:          VisitUniqueHash(visit.SiteID, dateStr, visit.VisitID),
		FirstActionTime:     visit.FirstActionTime,
		DateWebsiteTimezone: dateStr,
		Channel:             record.Platform.Channel(),
		CampaignData:        campaignDataFromVisit(visit),
		PlatformData:        platformData,
		PlatformKey:         key.String(),
		Cost:                &cost,
	}
}

func buildArtificialEntry(
	record *domain.CostRecord,
	key MatchKey,
	dateStr string,
	platformData []byte,
) *domain.LedgerEntry {
	cost := record.Cost
	return &domain.LedgerEntry{
		SiteID:              record.SiteID,
		Origin:              domain.ArtificialVisit(),
		UniqueHash:          ArtificialUniqueHash(record.SiteID, dateStr, record.Platform.Channel(), platformData),
		FirstActionTime:     record.Date,
		DateWebsiteTimezone: dateStr,
		Channel:             record.Platform.Channel(),
		PlatformData:        platformData,
		PlatformKey:         key.String(),
		Cost:                &cost,
		Conversions:         record.Conversions,
	}
}

func campaignDataFromVisit(visit *domain.Visit) *domain.CampaignData {
	if visit.CampaignName == "" && visit.CampaignKeyword == "" && visit.RefererType == "" {
		return nil
	}
	return &domain.CampaignData{
		CampaignName:    visit.CampaignName,
		CampaignKeyword: visit.CampaignKeyword,
		RefererType:     visit.RefererType,
	}
}

// ArtificialUniqueHash deriva o hash de idempotência de uma entrada
// artificial de (site, dia, canal, sha256 do snapshot da plataforma).
// Reexecuções do mesmo dia produzem o mesmo hash e caem no upsert.
func ArtificialUniqueHash(siteID, date, channel string, platformData []byte) string {
	payload := sha256.Sum256(platformData)
	sum := sha256.Sum256([]byte(strings.Join([]string{
		siteID,
		date,
		channel,
		hex.EncodeToString(payload[:]),
	}, "|")))
	return hex.EncodeToString(sum[:])
}

// VisitUniqueHash deriva o hash de idempotência de uma entrada ligada a uma
// visita real. Uma visita aparece no máximo uma vez no ledger por dia.
func VisitUniqueHash(siteID, date string, visitID int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", siteID, date, visitID)))
	return hex.EncodeToString(sum[:])
}
