package domain

import (
	"time"
)

// CostRecord representa uma linha de gasto reportada por uma plataforma de
// anúncios para uma combinação de dimensões em um (site, dia). Os campos de
// dimensão presentes variam por plataforma; campos ausentes ficam vazios.
// Registros são imutáveis depois de importados: a reimportação de um dia
// apaga e substitui todas as linhas daquele dia.
type CostRecord struct {
	ID       int64     `json:"id"`
	Platform Platform  `json:"platform"`
	SiteID   string    `json:"site_id"`
	Date     time.Time `json:"date"`

	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	AdGroupID    string `json:"ad_group_id,omitempty"`
	AdGroupName  string `json:"ad_group_name,omitempty"`
	KeywordID    string `json:"keyword_id,omitempty"`
	KeywordName  string `json:"keyword_name,omitempty"`

	// AdWords: rede ("d" = display, "g" = search) e placement para display.
	Network   string `json:"network,omitempty"`
	Placement string `json:"placement,omitempty"`

	// FacebookAds.
	AdsetID string `json:"adset_id,omitempty"`
	AdID    string `json:"ad_id,omitempty"`

	// Taboola: site do publisher onde o anúncio foi veiculado.
	PublisherSiteID string `json:"publisher_site_id,omitempty"`

	Currency    string  `json:"currency"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Conversions int64   `json:"conversions"`

	CreatedAt time.Time `json:"created_at"`
}

// HasSpend indica se o registro carrega gasto ou cliques que precisam ser
// representados no ledger após a reconciliação.
func (r *CostRecord) HasSpend() bool {
	return r.Clicks > 0 || r.Cost > 0
}
