package reconciling

import (
	"strings"
	"time"

	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// keywordPrefix é o prefixo dos identificadores de keyword no targetId
// bruto reportado pelo AdWords e pelo Bing ("kwd-<id>").
const keywordPrefix = "kwd-"

// Rede de display do AdWords no parâmetro network.
const adwordsNetworkDisplay = "d"

// KeyBuilder deriva a chave canônica de matching de uma plataforma, tanto
// do lado do registro de custo quanto do lado dos parâmetros de anúncio da
// visita. O segundo retorno falso significa "não atribuível": a visita cai
// para o enriquecimento histórico em vez do matching exato.
//
// Cada plataforma define o próprio formato de tupla; o despacho é feito por
// tabela de lookup (BuilderFor), nunca por herança.
type KeyBuilder interface {
	Platform() domain.Platform
	KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool)
	KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool)

	// HistoricalFilter projeta os parâmetros na chave grosseira (sem data)
	// usada pelo enriquecimento histórico.
	HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool)
}

var keyBuilders = map[domain.Platform]KeyBuilder{
	domain.PlatformAdWords:             adwordsKeyBuilder{},
	domain.PlatformBing:                bingKeyBuilder{},
	domain.PlatformCriteo:              criteoKeyBuilder{},
	domain.PlatformFacebookAds:         facebookAdsKeyBuilder{},
	domain.PlatformTaboola:             taboolaKeyBuilder{},
	domain.PlatformIndividualCampaigns: individualCampaignsKeyBuilder{},
}

// BuilderFor retorna o KeyBuilder da plataforma.
func BuilderFor(platform domain.Platform) (KeyBuilder, bool) {
	builder, ok := keyBuilders[platform]
	return builder, ok
}

// extractKeywordID remove o prefixo "kwd-" do identificador bruto do alvo.
// A ausência do prefixo torna o alvo não atribuível (não é uma keyword).
func extractKeywordID(targetID string) (string, bool) {
	if !strings.HasPrefix(targetID, keywordPrefix) {
		return "", false
	}
	keywordID := strings.TrimPrefix(targetID, keywordPrefix)
	if keywordID == "" {
		return "", false
	}
	return keywordID, true
}

func formatKeyDate(date time.Time) string {
	return date.Format(time.DateOnly)
}

// adwordsKeyBuilder deriva chaves do AdWords. O formato da tupla depende do
// caso: anúncios de display usam o placement, anúncios de search usam a
// keyword extraída do targetId.
type adwordsKeyBuilder struct{}

func (adwordsKeyBuilder) Platform() domain.Platform {
	return domain.PlatformAdWords
}

func (adwordsKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" || record.AdGroupID == "" {
		return MatchKey{}, false
	}

	if record.Network == adwordsNetworkDisplay {
		if record.Placement == "" {
			return MatchKey{}, false
		}
		return NewMatchKey(
			record.Network,
			record.SiteID,
			formatKeyDate(record.Date),
			record.CampaignID,
			record.AdGroupID,
			record.Placement,
		), true
	}

	keywordID := record.KeywordID
	if strings.HasPrefix(keywordID, keywordPrefix) {
		keywordID = strings.TrimPrefix(keywordID, keywordPrefix)
	}
	if keywordID == "" {
		return MatchKey{}, false
	}

	return NewMatchKey(
		record.SiteID,
		formatKeyDate(record.Date),
		record.CampaignID,
		record.AdGroupID,
		keywordID,
	), true
}

func (adwordsKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" || params.AdGroupID == "" {
		return MatchKey{}, false
	}

	if params.Network == adwordsNetworkDisplay {
		if params.Placement == "" {
			return MatchKey{}, false
		}
		return NewMatchKey(
			params.Network,
			siteID,
			formatKeyDate(date),
			params.CampaignID,
			params.AdGroupID,
			params.Placement,
		), true
	}

	keywordID, ok := extractKeywordID(params.TargetID)
	if !ok {
		return MatchKey{}, false
	}

	return NewMatchKey(
		siteID,
		formatKeyDate(date),
		params.CampaignID,
		params.AdGroupID,
		keywordID,
	), true
}

func (adwordsKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	// A projeção grosseira ignora rede e placement de propósito: anúncios de
	// display e de search do mesmo ad group enriquecem com os mesmos nomes.
	if params == nil || params.CampaignID == "" || params.AdGroupID == "" {
		return repository.CostDimensionFilter{}, false
	}
	return repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
		AdGroupID:  params.AdGroupID,
	}, true
}

type bingKeyBuilder struct{}

func (bingKeyBuilder) Platform() domain.Platform {
	return domain.PlatformBing
}

func (bingKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" || record.AdGroupID == "" {
		return MatchKey{}, false
	}

	keywordID := record.KeywordID
	if strings.HasPrefix(keywordID, keywordPrefix) {
		keywordID = strings.TrimPrefix(keywordID, keywordPrefix)
	}
	if keywordID == "" {
		return MatchKey{}, false
	}

	return NewMatchKey(
		record.SiteID,
		formatKeyDate(record.Date),
		record.CampaignID,
		record.AdGroupID,
		keywordID,
	), true
}

func (bingKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" || params.AdGroupID == "" {
		return MatchKey{}, false
	}

	keywordID, ok := extractKeywordID(params.TargetID)
	if !ok {
		return MatchKey{}, false
	}

	return NewMatchKey(
		siteID,
		formatKeyDate(date),
		params.CampaignID,
		params.AdGroupID,
		keywordID,
	), true
}

func (bingKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	if params == nil || params.CampaignID == "" || params.AdGroupID == "" {
		return repository.CostDimensionFilter{}, false
	}
	return repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
		AdGroupID:  params.AdGroupID,
	}, true
}

// criteoKeyBuilder usa a granularidade mais grosseira de todas: a campanha.
type criteoKeyBuilder struct{}

func (criteoKeyBuilder) Platform() domain.Platform {
	return domain.PlatformCriteo
}

func (criteoKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(record.SiteID, formatKeyDate(record.Date), record.CampaignID), true
}

func (criteoKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(siteID, formatKeyDate(date), params.CampaignID), true
}

func (criteoKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	if params == nil || params.CampaignID == "" {
		return repository.CostDimensionFilter{}, false
	}
	return repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
	}, true
}

type facebookAdsKeyBuilder struct{}

func (facebookAdsKeyBuilder) Platform() domain.Platform {
	return domain.PlatformFacebookAds
}

func (facebookAdsKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" || record.AdsetID == "" || record.AdID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(
		record.SiteID,
		formatKeyDate(record.Date),
		record.CampaignID,
		record.AdsetID,
		record.AdID,
	), true
}

func (facebookAdsKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" || params.AdsetID == "" || params.AdID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(
		siteID,
		formatKeyDate(date),
		params.CampaignID,
		params.AdsetID,
		params.AdID,
	), true
}

func (facebookAdsKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	if params == nil || params.CampaignID == "" || params.AdsetID == "" || params.AdID == "" {
		return repository.CostDimensionFilter{}, false
	}
	return repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
		AdsetID:    params.AdsetID,
		AdID:       params.AdID,
	}, true
}

// taboolaKeyBuilder combina a campanha com o site do publisher onde o
// anúncio foi veiculado.
type taboolaKeyBuilder struct{}

func (taboolaKeyBuilder) Platform() domain.Platform {
	return domain.PlatformTaboola
}

func (taboolaKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" || record.PublisherSiteID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(
		record.SiteID,
		formatKeyDate(record.Date),
		record.CampaignID,
		record.PublisherSiteID,
	), true
}

func (taboolaKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" || params.SiteID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(
		siteID,
		formatKeyDate(date),
		params.CampaignID,
		params.SiteID,
	), true
}

func (taboolaKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	if params == nil || params.CampaignID == "" {
		return repository.CostDimensionFilter{}, false
	}
	filter := repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
	}
	if params.SiteID != "" {
		filter.PublisherSiteID = params.SiteID
	}
	return filter, true
}

// individualCampaignsKeyBuilder cobre campanhas gerenciadas manualmente,
// identificadas apenas pela campanha.
type individualCampaignsKeyBuilder struct{}

func (individualCampaignsKeyBuilder) Platform() domain.Platform {
	return domain.PlatformIndividualCampaigns
}

func (individualCampaignsKeyBuilder) KeyFromCostRecord(record *domain.CostRecord) (MatchKey, bool) {
	if record.CampaignID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(record.SiteID, formatKeyDate(record.Date), record.CampaignID), true
}

func (individualCampaignsKeyBuilder) KeyFromAdParams(siteID string, date time.Time, params *domain.AdParams) (MatchKey, bool) {
	if params == nil || params.CampaignID == "" {
		return MatchKey{}, false
	}
	return NewMatchKey(siteID, formatKeyDate(date), params.CampaignID), true
}

func (individualCampaignsKeyBuilder) HistoricalFilter(siteID string, params *domain.AdParams) (repository.CostDimensionFilter, bool) {
	if params == nil || params.CampaignID == "" {
		return repository.CostDimensionFilter{}, false
	}
	return repository.CostDimensionFilter{
		SiteID:     siteID,
		CampaignID: params.CampaignID,
	}, true
}
