package reconciling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

var testDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func TestAdwordsKeyBuilder_KeyFromAdParams(t *testing.T) {
	builder, ok := BuilderFor(domain.PlatformAdWords)
	require.True(t, ok)

	tests := []struct {
		name    string
		params  *domain.AdParams
		wantKey string
		wantOk  bool
	}{
		{
			name: "Anúncio de search usa a keyword extraída do targetId",
			params: &domain.AdParams{
				CampaignID: "100",
				AdGroupID:  "200",
				TargetID:   "kwd-300",
			},
			wantKey: "site-1|2026-08-15|100|200|300",
			wantOk:  true,
		},
		{
			name: "Anúncio de display usa a rede e o placement",
			params: &domain.AdParams{
				CampaignID: "100",
				AdGroupID:  "200",
				Network:    "d",
				Placement:  "noticias.example.com",
			},
			wantKey: "d|site-1|2026-08-15|100|200|noticias.example.com",
			wantOk:  true,
		},
		{
			name: "TargetId sem o prefixo kwd- torna a visita não atribuível",
			params: &domain.AdParams{
				CampaignID: "100",
				AdGroupID:  "200",
				TargetID:   "300",
			},
			wantOk: false,
		},
		{
			name: "Display sem placement não é atribuível",
			params: &domain.AdParams{
				CampaignID: "100",
				AdGroupID:  "200",
				Network:    "d",
			},
			wantOk: false,
		},
		{
			name:   "Parâmetros ausentes não são atribuíveis",
			params: nil,
			wantOk: false,
		},
		{
			name: "Campanha sem ad group não é atribuível",
			params: &domain.AdParams{
				CampaignID: "100",
				TargetID:   "kwd-300",
			},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := builder.KeyFromAdParams("site-1", testDate, tt.params)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.wantKey, key.String())
			} else {
				assert.True(t, key.IsZero())
			}
		})
	}
}

func TestAdwordsKeyBuilder_KeyFromCostRecord(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformAdWords)

	t.Run("Registro de search com keyword prefixada", func(t *testing.T) {
		key, ok := builder.KeyFromCostRecord(&domain.CostRecord{
			SiteID:     "site-1",
			Date:       testDate,
			CampaignID: "100",
			AdGroupID:  "200",
			KeywordID:  "kwd-300",
			Network:    "g",
		})
		require.True(t, ok)
		assert.Equal(t, "site-1|2026-08-15|100|200|300", key.String())
	})

	t.Run("Registro de display", func(t *testing.T) {
		key, ok := builder.KeyFromCostRecord(&domain.CostRecord{
			SiteID:     "site-1",
			Date:       testDate,
			CampaignID: "100",
			AdGroupID:  "200",
			Network:    "d",
			Placement:  "blog.example.com",
		})
		require.True(t, ok)
		assert.Equal(t, "d|site-1|2026-08-15|100|200|blog.example.com", key.String())
	})

	t.Run("Registro de search sem keyword não tem chave derivável", func(t *testing.T) {
		_, ok := builder.KeyFromCostRecord(&domain.CostRecord{
			SiteID:     "site-1",
			Date:       testDate,
			CampaignID: "100",
			AdGroupID:  "200",
		})
		assert.False(t, ok)
	})
}

func TestKeyBuilders_ChavesCoincidemEntreCustoEVisita(t *testing.T) {
	// A mesma entidade vista pelos dois lados deve produzir a mesma chave;
	// é isso que sustenta o matching exato.
	tests := []struct {
		name     string
		platform domain.Platform
		record   *domain.CostRecord
		params   *domain.AdParams
	}{
		{
			name:     "Bing",
			platform: domain.PlatformBing,
			record: &domain.CostRecord{
				SiteID: "site-9", Date: testDate,
				CampaignID: "c1", AdGroupID: "g1", KeywordID: "kwd-k1",
			},
			params: &domain.AdParams{CampaignID: "c1", AdGroupID: "g1", TargetID: "kwd-k1"},
		},
		{
			name:     "Criteo",
			platform: domain.PlatformCriteo,
			record: &domain.CostRecord{
				SiteID: "site-9", Date: testDate, CampaignID: "c1",
			},
			params: &domain.AdParams{CampaignID: "c1"},
		},
		{
			name:     "FacebookAds",
			platform: domain.PlatformFacebookAds,
			record: &domain.CostRecord{
				SiteID: "site-9", Date: testDate,
				CampaignID: "c1", AdsetID: "s1", AdID: "a1",
			},
			params: &domain.AdParams{CampaignID: "c1", AdsetID: "s1", AdID: "a1"},
		},
		{
			name:     "Taboola",
			platform: domain.PlatformTaboola,
			record: &domain.CostRecord{
				SiteID: "site-9", Date: testDate,
				CampaignID: "c1", PublisherSiteID: "pub-7",
			},
			params: &domain.AdParams{CampaignID: "c1", SiteID: "pub-7"},
		},
		{
			name:     "IndividualCampaigns",
			platform: domain.PlatformIndividualCampaigns,
			record: &domain.CostRecord{
				SiteID: "site-9", Date: testDate, CampaignID: "c1",
			},
			params: &domain.AdParams{CampaignID: "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, ok := BuilderFor(tt.platform)
			require.True(t, ok)

			recordKey, ok := builder.KeyFromCostRecord(tt.record)
			require.True(t, ok)

			visitKey, ok := builder.KeyFromAdParams("site-9", testDate, tt.params)
			require.True(t, ok)

			assert.True(t, recordKey.Equal(visitKey),
				"chave do registro %q difere da chave da visita %q", recordKey.String(), visitKey.String())
		})
	}
}

func TestMatchKey_ComparacaoPorString(t *testing.T) {
	// "007" e "7" são identificadores diferentes: a comparação nunca é
	// numérica.
	a := NewMatchKey("site-1", "2026-08-15", "007")
	b := NewMatchKey("site-1", "2026-08-15", "7")
	assert.False(t, a.Equal(b))
}

func TestAdwordsKeyBuilder_HistoricalFilterIgnoraRedeEData(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformAdWords)

	filter, ok := builder.HistoricalFilter("site-1", &domain.AdParams{
		CampaignID: "100",
		AdGroupID:  "200",
		Network:    "d",
		Placement:  "noticias.example.com",
	})
	require.True(t, ok)

	assert.Equal(t, "site-1", filter.SiteID)
	assert.Equal(t, "100", filter.CampaignID)
	assert.Equal(t, "200", filter.AdGroupID)
	assert.Empty(t, filter.PublisherSiteID)
}

func TestBuilderFor_PlataformaDesconhecida(t *testing.T) {
	_, ok := BuilderFor(domain.Platform("myspace_ads"))
	assert.False(t, ok)
}
