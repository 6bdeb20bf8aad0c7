package reconciling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// EnrichmentData é o snapshot descritivo anexado a visitas enriquecidas
// pelo fallback histórico. Nunca carrega custo: o gasto do registro
// histórico já foi alocado (ou não) na reconciliação do dia dele.
type EnrichmentData struct {
	CampaignID      string `json:"campaignId,omitempty"`
	CampaignName    string `json:"campaignName,omitempty"`
	AdGroupID       string `json:"adGroupId,omitempty"`
	AdGroupName     string `json:"adGroupName,omitempty"`
	KeywordID       string `json:"keywordId,omitempty"`
	KeywordName     string `json:"keywordName,omitempty"`
	Placement       string `json:"placement,omitempty"`
	PublisherSiteID string `json:"publisherSiteId,omitempty"`
	AdsetID         string `json:"adsetId,omitempty"`
	AdID            string `json:"adId,omitempty"`
	SourceDate      string `json:"sourceDate,omitempty"`
}

// HistoricalEnricher resolve visitas que falharam no matching exato: busca
// o registro de custo mais recente que compartilha a chave grosseira (sem
// data) e copia apenas os metadados descritivos. Quando nada é encontrado,
// o platform_data da visita é explicitamente limpo em vez de ficar velho.
type HistoricalEnricher struct {
	costRepo repository.CostRecordRepository
}

func NewHistoricalEnricher(costRepo repository.CostRecordRepository) *HistoricalEnricher {
	return &HistoricalEnricher{
		costRepo: costRepo,
	}
}

// Enrich monta a entrada do ledger de uma visita não atribuída. A entrada
// resultante nunca tem custo; o platform_data é o snapshot descritivo do
// registro histórico ou nulo quando não há registro.
func (e *HistoricalEnricher) Enrich(builder KeyBuilder, visit *domain.Visit) (*domain.LedgerEntry, error) {
	dateStr := visit.FirstActionTime.Format(time.DateOnly)
	entry := &domain.LedgerEntry{
		SiteID:              visit.SiteID,
		Origin:              domain.RealVisit(visit.VisitID),
		VisitorID:           visit.VisitorID,
		UniqueHash:          VisitUniqueHash(visit.SiteID, dateStr, visit.VisitID),
		FirstActionTime:     visit.FirstActionTime,
		DateWebsiteTimezone: dateStr,
		Channel:             builder.Platform().Channel(),
		CampaignData:        campaignDataFromVisit(visit),
	}

	filter, ok := builder.HistoricalFilter(visit.SiteID, visit.AdParams)
	if !ok {
		return entry, nil
	}

	record, err := e.costRepo.FindLatestByDimensions(builder.Platform(), filter)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar registro histórico para a visita %d: %w", visit.VisitID, err)
	}

	if record == nil {
		logrus.WithFields(logrus.Fields{
			"visit_id": visit.VisitID,
			"platform": builder.Platform(),
		}).Debug("Nenhum registro histórico encontrado para a visita; platform_data limpo")
		return entry, nil
	}

	data, err := json.Marshal(descriptiveSnapshot(record))
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar enriquecimento da visita %d: %w", visit.VisitID, err)
	}
	entry.PlatformData = data

	return entry, nil
}

func descriptiveSnapshot(record *domain.CostRecord) *EnrichmentData {
	return &EnrichmentData{
		CampaignID:      record.CampaignID,
		CampaignName:    record.CampaignName,
		AdGroupID:       record.AdGroupID,
		AdGroupName:     record.AdGroupName,
		KeywordID:       record.KeywordID,
		KeywordName:     record.KeywordName,
		Placement:       record.Placement,
		PublisherSiteID: record.PublisherSiteID,
		AdsetID:         record.AdsetID,
		AdID:            record.AdID,
		SourceDate:      record.Date.Format(time.DateOnly),
	}
}
