package reconciling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

func TestAllocate_CustoZeroNaoGeraEntradas(t *testing.T) {
	record := facebookRecord(1, "c1", "s1", "a1", 0)
	record.Clicks = 5

	result, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{
		{Record: record, Visits: []*domain.Visit{facebookVisit(101, "c1", "s1", "a1")}},
	})
	require.NoError(t, err)

	assert.Empty(t, result.RealEntries)
	assert.Empty(t, result.ArtificialEntries)
	assert.Empty(t, result.ZeroedArtificialHashes)

	// O registro ainda conta nas estatísticas de validação.
	assert.Equal(t, float64(0), result.Stats.ReportedCost)
	assert.Equal(t, int64(5), result.Stats.ReportedClicks)
	assert.Equal(t, float64(0), result.Stats.AllocatedCost)
}

func TestAllocate_DivideCustoIgualmenteEntreVisitas(t *testing.T) {
	record := facebookRecord(1, "c1", "s1", "a1", 9)
	visits := []*domain.Visit{
		facebookVisit(101, "c1", "s1", "a1"),
		facebookVisit(102, "c1", "s1", "a1"),
		facebookVisit(103, "c1", "s1", "a1"),
	}
	builder, _ := BuilderFor(domain.PlatformFacebookAds)
	key, _ := builder.KeyFromCostRecord(record)

	result, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{
		{Record: record, Key: key, Visits: visits},
	})
	require.NoError(t, err)

	require.Len(t, result.RealEntries, 3)
	for i, entry := range result.RealEntries {
		require.NotNil(t, entry.Cost)
		assert.Equal(t, float64(3), *entry.Cost)
		assert.False(t, entry.Origin.IsArtificial())

		visitID, ok := entry.Origin.VisitID()
		require.True(t, ok)
		assert.Equal(t, visits[i].VisitID, visitID)
		assert.Equal(t, VisitUniqueHash("site-1", "2026-08-15", visits[i].VisitID), entry.UniqueHash)
		assert.Equal(t, "facebook_ads", entry.Channel)
		assert.Equal(t, key.String(), entry.PlatformKey)
	}

	assert.Equal(t, float64(9), result.Stats.ReportedCost)
	assert.Equal(t, float64(9), result.Stats.AllocatedCost)
	assert.Equal(t, 3, result.Stats.MatchedVisits)
	assert.Equal(t, 0, result.Stats.ArtificialVisits)

	// Visitas reais têm precedência: o hash artificial da mesma chave é
	// marcado para zeramento.
	require.Len(t, result.ZeroedArtificialHashes, 1)
	platformData, _ := json.Marshal(record)
	assert.Equal(t,
		ArtificialUniqueHash("site-1", "2026-08-15", "facebook_ads", platformData),
		result.ZeroedArtificialHashes[0])
}

func TestAllocate_GastoSemVisitaViraEntradaArtificial(t *testing.T) {
	record := facebookRecord(1, "c1", "s1", "a1", 42.5)
	record.Conversions = 4
	builder, _ := BuilderFor(domain.PlatformFacebookAds)
	key, _ := builder.KeyFromCostRecord(record)

	result, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{
		{Record: record, Key: key},
	})
	require.NoError(t, err)

	assert.Empty(t, result.RealEntries)
	require.Len(t, result.ArtificialEntries, 1)

	entry := result.ArtificialEntries[0]
	assert.True(t, entry.Origin.IsArtificial())
	assert.Nil(t, entry.VisitIDOrNil())
	require.NotNil(t, entry.Cost)
	assert.Equal(t, 42.5, *entry.Cost)
	assert.Equal(t, int64(4), entry.Conversions)
	assert.Equal(t, "2026-08-15", entry.DateWebsiteTimezone)

	assert.Equal(t, 1, result.Stats.ArtificialVisits)
	assert.Equal(t, 42.5, result.Stats.AllocatedCost)
	assert.Empty(t, result.ZeroedArtificialHashes)
}

func TestAllocate_HashArtificialDeterministico(t *testing.T) {
	record := facebookRecord(1, "c1", "s1", "a1", 10)

	first, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{{Record: record}})
	require.NoError(t, err)
	second, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{{Record: record}})
	require.NoError(t, err)

	assert.Equal(t, first.ArtificialEntries[0].UniqueHash, second.ArtificialEntries[0].UniqueHash)

	// Registros com snapshots diferentes nunca colidem.
	other := facebookRecord(2, "c2", "s2", "a2", 10)
	third, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{{Record: other}})
	require.NoError(t, err)
	assert.NotEqual(t, first.ArtificialEntries[0].UniqueHash, third.ArtificialEntries[0].UniqueHash)
}

func TestAllocate_CopiaMetadadosDeCampanhaDaVisita(t *testing.T) {
	record := facebookRecord(1, "c1", "s1", "a1", 10)
	visit := facebookVisit(101, "c1", "s1", "a1")
	visit.CampaignName = "promo-inverno"
	visit.CampaignKeyword = "tenis corrida"
	visit.RefererType = "campaign"

	result, err := Allocate(domain.PlatformFacebookAds, testDate, []*CostMatch{
		{Record: record, Visits: []*domain.Visit{visit}},
	})
	require.NoError(t, err)

	require.Len(t, result.RealEntries, 1)
	data := result.RealEntries[0].CampaignData
	require.NotNil(t, data)
	assert.Equal(t, "promo-inverno", data.CampaignName)
	assert.Equal(t, "tenis corrida", data.CampaignKeyword)
	assert.Equal(t, "campaign", data.RefererType)
}
