package domain

import (
	"time"
)

// AdParams é o subconjunto de parâmetros de anúncio extraídos pelo tracker
// para uma visita, já separados por plataforma. Entrada somente leitura para
// o motor de reconciliação; campos ausentes ficam vazios.
type AdParams struct {
	Platform   string `json:"platform,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`
	AdGroupID  string `json:"adGroupId,omitempty"`

	// AdWords / Bing: identificador bruto do alvo ("kwd-<id>" para keywords).
	TargetID string `json:"targetId,omitempty"`

	// AdWords display.
	Network   string `json:"network,omitempty"`
	Placement string `json:"placement,omitempty"`

	// FacebookAds.
	AdsetID string `json:"adsetId,omitempty"`
	AdID    string `json:"adId,omitempty"`

	// Taboola: site do publisher.
	SiteID string `json:"siteId,omitempty"`
}

// Visit representa uma visita registrada pelo tracker. Visitas sem Platform
// nunca participam do matching de custo; elas entram no ledger com canal
// derivado do tipo de referência.
type Visit struct {
	VisitID         int64     `json:"visit_id"`
	VisitorID       string    `json:"visitor_id"`
	SiteID          string    `json:"site_id"`
	FirstActionTime time.Time `json:"first_action_time"`
	RefererType     string    `json:"referer_type"`
	CampaignName    string    `json:"campaign_name,omitempty"`
	CampaignKeyword string    `json:"campaign_keyword,omitempty"`
	Platform        Platform  `json:"platform,omitempty"`
	AdParams        *AdParams `json:"ad_params,omitempty"`
}

// HasPlatform indica se a visita carrega atribuição a alguma plataforma.
func (v *Visit) HasPlatform() bool {
	return v.Platform != ""
}
