package domain

import (
	"encoding/json"
	"time"
)

// VisitOrigin distingue entradas do ledger com visita real de entradas
// artificiais (gasto sem visita rastreada). A distinção é exaustiva: uma
// entrada é real ou artificial, nunca ambos, nunca nenhum.
type VisitOrigin struct {
	visitID    int64
	artificial bool
}

// RealVisit cria a origem de uma entrada ligada a uma visita rastreada.
func RealVisit(visitID int64) VisitOrigin {
	return VisitOrigin{visitID: visitID}
}

// ArtificialVisit cria a origem de uma entrada artificial (visit_id NULL).
func ArtificialVisit() VisitOrigin {
	return VisitOrigin{artificial: true}
}

// IsArtificial indica se a entrada é artificial.
func (o VisitOrigin) IsArtificial() bool {
	return o.artificial
}

// VisitID retorna o identificador da visita real; ok é falso para entradas
// artificiais.
func (o VisitOrigin) VisitID() (int64, bool) {
	if o.artificial {
		return 0, false
	}
	return o.visitID, true
}

// CampaignData agrupa os metadados de campanha do tracker copiados para a
// entrada do ledger.
type CampaignData struct {
	CampaignName    string `json:"campaignName,omitempty"`
	CampaignKeyword string `json:"campaignKeyword,omitempty"`
	RefererType     string `json:"refererType,omitempty"`
}

// LedgerEntry é a saída da reconciliação (tabela aom_visits): uma visita
// (real ou artificial) com o custo alocado e os metadados da plataforma.
// Cost nulo significa "sem custo atribuído" (ex.: enriquecimento
// histórico), diferente de custo zero.
type LedgerEntry struct {
	ID                  int64           `json:"id"`
	SiteID              string          `json:"site_id"`
	Origin              VisitOrigin     `json:"-"`
	VisitorID           string          `json:"visitor_id,omitempty"`
	UniqueHash          string          `json:"unique_hash"`
	FirstActionTime     time.Time       `json:"first_action_time"`
	DateWebsiteTimezone string          `json:"date_website_timezone"`
	Channel             string          `json:"channel"`
	CampaignData        *CampaignData   `json:"campaign_data,omitempty"`
	PlatformData        json.RawMessage `json:"platform_data,omitempty"`
	PlatformKey         string          `json:"platform_key,omitempty"`
	Cost                *float64        `json:"cost"`
	Conversions         int64           `json:"conversions"`
	Revenue             float64         `json:"revenue"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// VisitIDOrNil expõe o visit_id como ponteiro para serialização e escrita
// no banco (NULL para entradas artificiais).
func (e *LedgerEntry) VisitIDOrNil() *int64 {
	if id, ok := e.Origin.VisitID(); ok {
		return &id
	}
	return nil
}

// MarshalJSON inclui o visit_id nullable no JSON da entrada.
func (e *LedgerEntry) MarshalJSON() ([]byte, error) {
	type alias LedgerEntry
	return json.Marshal(struct {
		*alias
		VisitID *int64 `json:"visit_id"`
	}{
		alias:   (*alias)(e),
		VisitID: e.VisitIDOrNil(),
	})
}
