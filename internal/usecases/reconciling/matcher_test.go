package reconciling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

func facebookRecord(id int64, campaignID, adsetID, adID string, cost float64) *domain.CostRecord {
	return &domain.CostRecord{
		ID:         id,
		Platform:   domain.PlatformFacebookAds,
		SiteID:     "site-1",
		Date:       testDate,
		CampaignID: campaignID,
		AdsetID:    adsetID,
		AdID:       adID,
		Cost:       cost,
	}
}

func facebookVisit(visitID int64, campaignID, adsetID, adID string) *domain.Visit {
	return &domain.Visit{
		VisitID:         visitID,
		VisitorID:       "visitor-1",
		SiteID:          "site-1",
		FirstActionTime: testDate,
		Platform:        domain.PlatformFacebookAds,
		AdParams: &domain.AdParams{
			CampaignID: campaignID,
			AdsetID:    adsetID,
			AdID:       adID,
		},
	}
}

func TestMatch_AtribuiVisitasAosRegistros(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformFacebookAds)

	records := []*domain.CostRecord{
		facebookRecord(1, "c1", "s1", "a1", 10),
		facebookRecord(2, "c2", "s2", "a2", 20),
	}
	visits := []*domain.Visit{
		facebookVisit(101, "c1", "s1", "a1"),
		facebookVisit(102, "c1", "s1", "a1"),
		facebookVisit(103, "c9", "s9", "a9"),
	}

	result := Match(builder, records, visits)

	require.Len(t, result.Matches, 2)
	assert.Len(t, result.Matches[0].Visits, 2)
	assert.Empty(t, result.Matches[1].Visits)

	require.Len(t, result.UnmatchedVisits, 1)
	assert.Equal(t, int64(103), result.UnmatchedVisits[0].VisitID)
	assert.Empty(t, result.Warnings)
}

func TestMatch_ChaveDuplicadaUltimoRegistroVence(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformFacebookAds)

	// Dois registros com a mesma tupla de dimensões; a ordenação por id
	// garante que o de id maior vence independentemente da ordem do slice.
	records := []*domain.CostRecord{
		facebookRecord(7, "c1", "s1", "a1", 99),
		facebookRecord(3, "c1", "s1", "a1", 10),
	}
	visits := []*domain.Visit{
		facebookVisit(101, "c1", "s1", "a1"),
	}

	result := Match(builder, records, visits)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, int64(7), result.Matches[0].Record.ID)
	assert.Len(t, result.Matches[0].Visits, 1)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "chave duplicada")
}

func TestMatch_RegistroSemChaveContinuaElegivelParaAlocacao(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformFacebookAds)

	records := []*domain.CostRecord{
		facebookRecord(1, "c1", "", "", 10),
	}

	result := Match(builder, records, nil)

	require.Len(t, result.Matches, 1)
	assert.True(t, result.Matches[0].Key.IsZero())
	assert.Empty(t, result.Matches[0].Visits)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "sem chave derivável")
}

func TestMatch_IgnoraVisitasDeOutrasPlataformas(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformFacebookAds)

	outra := facebookVisit(101, "c1", "s1", "a1")
	outra.Platform = domain.PlatformTaboola

	result := Match(builder, []*domain.CostRecord{
		facebookRecord(1, "c1", "s1", "a1", 10),
	}, []*domain.Visit{outra})

	assert.Empty(t, result.Matches[0].Visits)
	assert.Empty(t, result.UnmatchedVisits)
}

func TestMatch_VisitaSemChaveVaiParaNaoAtribuidas(t *testing.T) {
	builder, _ := BuilderFor(domain.PlatformAdWords)

	visit := &domain.Visit{
		VisitID:         201,
		SiteID:          "site-1",
		FirstActionTime: testDate,
		Platform:        domain.PlatformAdWords,
		AdParams: &domain.AdParams{
			CampaignID: "100",
			AdGroupID:  "200",
			TargetID:   "aud-300",
		},
	}

	result := Match(builder, nil, []*domain.Visit{visit})

	require.Len(t, result.UnmatchedVisits, 1)
	assert.Equal(t, int64(201), result.UnmatchedVisits[0].VisitID)
}
