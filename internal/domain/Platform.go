package domain

// Platform identifica a origem dos registros de custo importados.
// O conjunto é fechado: cada plataforma possui sua própria tabela de
// registros de custo e sua própria derivação de chave de matching.
type Platform string

const (
	PlatformAdWords             Platform = "adwords"
	PlatformBing                Platform = "bing"
	PlatformCriteo              Platform = "criteo"
	PlatformFacebookAds         Platform = "facebook_ads"
	PlatformTaboola             Platform = "taboola"
	PlatformIndividualCampaigns Platform = "individual_campaigns"
)

// AllPlatforms retorna todas as plataformas suportadas, em ordem estável.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformAdWords,
		PlatformBing,
		PlatformCriteo,
		PlatformFacebookAds,
		PlatformTaboola,
		PlatformIndividualCampaigns,
	}
}

// IsValid verifica se a plataforma pertence ao conjunto suportado.
func (p Platform) IsValid() bool {
	for _, known := range AllPlatforms() {
		if p == known {
			return true
		}
	}
	return false
}

// Channel retorna o canal usado nas entradas do ledger para a plataforma.
// O canal coincide com o nome da plataforma.
func (p Platform) Channel() string {
	return string(p)
}

// Tipos de referência reportados pelo tracker para visitas sem plataforma.
const (
	RefererTypeDirect       = "direct"
	RefererTypeSearchEngine = "search_engine"
	RefererTypeWebsite      = "website"
	RefererTypeCampaign     = "campaign"
)

// ChannelFromRefererType deriva o canal de uma visita sem atribuição de
// plataforma a partir do tipo de referência da visita. Tipos desconhecidos
// são mantidos como estão para não perder informação.
func ChannelFromRefererType(refererType string) string {
	switch refererType {
	case RefererTypeDirect:
		return "direct"
	case RefererTypeSearchEngine:
		return "seo"
	case RefererTypeWebsite:
		return "website"
	case RefererTypeCampaign:
		return "campaign"
	default:
		return refererType
	}
}
