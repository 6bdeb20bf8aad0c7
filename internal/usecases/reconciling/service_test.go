package reconciling

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository/mocks"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
	"go.uber.org/mock/gomock"
)

// fakeTxRunner executa a função diretamente, sem banco. Os repositórios são
// mocks, então o *sql.Tx nunca é dereferenciado.
type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) RunInTransaction(_ context.Context, fn func(*sql.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeRateService struct {
	rate float64
	err  error
}

func (f *fakeRateService) Rate(_, _ string, _ time.Time) (float64, error) {
	return f.rate, f.err
}

type serviceFixture struct {
	costRepo   *mocks.MockCostRecordRepository
	visitRepo  *mocks.MockVisitRepository
	ledgerRepo *mocks.MockLedgerRepository
	tx         *fakeTxRunner
	rates      *fakeRateService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	return &serviceFixture{
		costRepo:   mocks.NewMockCostRecordRepository(ctrl),
		visitRepo:  mocks.NewMockVisitRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		tx:         &fakeTxRunner{},
		rates:      &fakeRateService{rate: 1},
	}
}

func (f *serviceFixture) service(settings Settings) Reconciler {
	return NewService(f.tx, f.costRepo, f.visitRepo, f.ledgerRepo, f.rates, settings)
}

func onlyFacebook() Settings {
	return Settings{ActivePlatforms: []domain.Platform{domain.PlatformFacebookAds}}
}

func TestReconcileDateRange_IntervaloInvalido(t *testing.T) {
	f := newServiceFixture(t)
	svc := f.service(onlyFacebook())

	_, err := svc.ReconcileDateRange(context.Background(), testDate, testDate.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestReconcileDateRange_DiaComVisitaAtribuida(t *testing.T) {
	f := newServiceFixture(t)

	record := facebookRecord(1, "c1", "s1", "a1", 10)
	visit := facebookVisit(101, "c1", "s1", "a1")

	f.visitRepo.EXPECT().ListByDate(testDate).Return([]*domain.Visit{visit}, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)

	var inserted []*domain.LedgerEntry
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *sql.Tx, entries []*domain.LedgerEntry) error {
			inserted = entries
			return nil
		})

	// A chave do registro tem visitas reais, então o hash artificial dela é
	// consultado para zeramento; como não existe, nada é atualizado.
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(1)).
		Return(map[string]float64{}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	report, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	assert.Empty(t, report.FailedDates)
	require.Len(t, report.PerPlatform, 1)
	assert.Equal(t, float64(10), report.PerPlatform[0].ReportedCost)
	assert.Equal(t, float64(10), report.PerPlatform[0].AllocatedCost)
	assert.Equal(t, 1, report.PerPlatform[0].MatchedVisits)

	require.Len(t, inserted, 1)
	require.NotNil(t, inserted[0].Cost)
	assert.Equal(t, float64(10), *inserted[0].Cost)
	assert.Equal(t, 1, f.tx.calls)
}

func TestReconcileDateRange_ReexecucaoIdempotente(t *testing.T) {
	f := newServiceFixture(t)

	// Gasto sem visita: a execução anterior já gravou a entrada artificial
	// com o mesmo custo. Nada deve ser inserido nem atualizado.
	record := facebookRecord(1, "c1", "s1", "a1", 42.5)
	platformData, _ := json.Marshal(record)
	hash := ArtificialUniqueHash("site-1", "2026-08-15", "facebook_ads", platformData)

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), []string{hash}).
		Return(map[string]float64{hash: 42.5}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	report, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)
	assert.Empty(t, report.FailedDates)
	assert.Empty(t, report.Warnings)
}

func TestReconcileDateRange_CustoArtificialAtualizadoQuandoMuda(t *testing.T) {
	f := newServiceFixture(t)

	record := facebookRecord(1, "c1", "s1", "a1", 50)
	platformData, _ := json.Marshal(record)
	hash := ArtificialUniqueHash("site-1", "2026-08-15", "facebook_ads", platformData)

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), []string{hash}).
		Return(map[string]float64{hash: 42.5}, nil)
	f.ledgerRepo.EXPECT().UpdateArtificialCost(gomock.Any(), hash, float64(50)).Return(nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	_, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)
}

func TestReconcileDateRange_VisitaRealZeraArtificialExistente(t *testing.T) {
	f := newServiceFixture(t)

	// Uma execução anterior criou a entrada artificial; agora a mesma chave
	// tem visita real. O artificial é zerado, nunca apagado.
	record := facebookRecord(1, "c1", "s1", "a1", 10)
	visit := facebookVisit(101, "c1", "s1", "a1")
	platformData, _ := json.Marshal(record)
	hash := ArtificialUniqueHash("site-1", "2026-08-15", "facebook_ads", platformData)

	f.visitRepo.EXPECT().ListByDate(testDate).Return([]*domain.Visit{visit}, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(1)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), []string{hash}).
		Return(map[string]float64{hash: 10}, nil)
	f.ledgerRepo.EXPECT().UpdateArtificialCost(gomock.Any(), hash, float64(0)).Return(nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	_, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)
}

func TestReconcileDateRange_ColisoesAcimaDoLimiteAbortamODia(t *testing.T) {
	f := newServiceFixture(t)

	records := []*domain.CostRecord{
		facebookRecord(1, "c1", "s1", "a1", 10),
		facebookRecord(2, "c2", "s2", "a2", 20),
	}

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).Return(records, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(2)).
		Return(map[string]float64{}, nil)

	// Nenhuma linha inserida: as duas tentativas colidiram.
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(2)).
		Return(int64(0), nil)

	settings := onlyFacebook()
	settings.ArtificialCollisionThreshold = 1

	report, err := f.service(settings).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	require.Len(t, report.FailedDates, 1)
	assert.Equal(t, "2026-08-15", report.FailedDates[0])
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "FAILED")
}

func TestReconcileDateRange_ColisaoBenignaViraAviso(t *testing.T) {
	f := newServiceFixture(t)

	record := facebookRecord(1, "c1", "s1", "a1", 10)

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(1)).
		Return(map[string]float64{}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(1)).
		Return(int64(0), nil)

	report, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	assert.Empty(t, report.FailedDates)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "colisões benignas")
}

func TestReconcileDateRange_ConverteMoedaNaCarga(t *testing.T) {
	f := newServiceFixture(t)
	f.rates.rate = 5

	record := facebookRecord(1, "c1", "s1", "a1", 10)
	record.Currency = "USD"

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Any()).
		Return(map[string]float64{}, nil)

	var artificial []*domain.LedgerEntry
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *sql.Tx, entries []*domain.LedgerEntry) (int64, error) {
			artificial = entries
			return int64(len(entries)), nil
		})

	settings := onlyFacebook()
	settings.ReportingCurrency = "BRL"

	report, err := f.service(settings).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	require.Len(t, report.PerPlatform, 1)
	assert.Equal(t, float64(50), report.PerPlatform[0].ReportedCost)

	require.Len(t, artificial, 1)
	require.NotNil(t, artificial[0].Cost)
	assert.Equal(t, float64(50), *artificial[0].Cost)
}

func TestReconcileDateRange_RegistroSemTaxaDeCambioEPulado(t *testing.T) {
	f := newServiceFixture(t)
	f.rates.err = errors.New("taxa indisponível")

	record := facebookRecord(1, "c1", "s1", "a1", 10)
	record.Currency = "EUR"

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return([]*domain.CostRecord{record}, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(0)).
		Return(map[string]float64{}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	settings := onlyFacebook()
	settings.ReportingCurrency = "BRL"

	report, err := f.service(settings).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	require.Len(t, report.PerPlatform, 1)
	assert.Equal(t, float64(0), report.PerPlatform[0].ReportedCost)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "pulado")
}

func TestReconcileDateRange_VisitaSemPlataformaRecebeCanalDoReferer(t *testing.T) {
	f := newServiceFixture(t)

	plain := &domain.Visit{
		VisitID:         501,
		VisitorID:       "visitor-7",
		SiteID:          "site-1",
		FirstActionTime: testDate,
		RefererType:     domain.RefererTypeSearchEngine,
	}

	f.visitRepo.EXPECT().ListByDate(testDate).Return([]*domain.Visit{plain}, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).Return(nil, nil)

	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), testDate).Return(int64(0), nil)

	var inserted []*domain.LedgerEntry
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ *sql.Tx, entries []*domain.LedgerEntry) error {
			inserted = entries
			return nil
		})
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(0)).
		Return(map[string]float64{}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	_, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	require.Len(t, inserted, 1)
	assert.Equal(t, "seo", inserted[0].Channel)
	assert.Nil(t, inserted[0].Cost)

	visitID, ok := inserted[0].Origin.VisitID()
	require.True(t, ok)
	assert.Equal(t, int64(501), visitID)
}

func TestReconcileDateRange_FalhaDeCargaDePlataformaAbortaODiaSemEscrita(t *testing.T) {
	f := newServiceFixture(t)

	f.visitRepo.EXPECT().ListByDate(testDate).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, testDate).
		Return(nil, errors.New(`relation "cost_records_facebook_ads" does not exist`))

	report, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), testDate, testDate)
	require.NoError(t, err)

	require.Len(t, report.FailedDates, 1)
	assert.Equal(t, "2026-08-15", report.FailedDates[0])
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "FAILED")

	// O dia aborta antes da fase de escrita: nenhuma transação é aberta e o
	// ledger anterior da data permanece intocado.
	assert.Zero(t, f.tx.calls)
}

func TestConservationWarning(t *testing.T) {
	stats := &domain.PlatformReconciliation{
		Platform:      domain.PlatformFacebookAds,
		Date:          "2026-08-15",
		ReportedCost:  10,
		AllocatedCost: 9.5,
	}

	t.Run("Divergência acima da tolerância vira aviso", func(t *testing.T) {
		warning, ok := conservationWarning(stats, 0.01)
		require.True(t, ok)
		assert.Contains(t, warning, "conservação de custo violada")
		assert.Contains(t, warning, "facebook_ads/2026-08-15")
	})

	t.Run("Divergência dentro da tolerância não gera aviso", func(t *testing.T) {
		_, ok := conservationWarning(stats, 0.5)
		assert.False(t, ok)
	})
}

func TestReconcileDateRange_FalhaDeUmDiaNaoAfetaOsDemais(t *testing.T) {
	f := newServiceFixture(t)

	day1 := testDate
	day2 := testDate.AddDate(0, 0, 1)

	f.visitRepo.EXPECT().ListByDate(day1).Return(nil, errors.New("conexão perdida"))

	f.visitRepo.EXPECT().ListByDate(day2).Return(nil, nil)
	f.costRepo.EXPECT().ListByDate(domain.PlatformFacebookAds, day2).Return(nil, nil)
	f.ledgerRepo.EXPECT().DeleteTrackedEntriesByDate(gomock.Any(), day2).Return(int64(0), nil)
	f.ledgerRepo.EXPECT().BulkInsert(gomock.Any(), gomock.Len(0)).Return(nil)
	f.ledgerRepo.EXPECT().ListArtificialCostsByHash(gomock.Any(), gomock.Len(0)).
		Return(map[string]float64{}, nil)
	f.ledgerRepo.EXPECT().InsertArtificialIgnoreConflicts(gomock.Any(), gomock.Len(0)).
		Return(int64(0), nil)

	report, err := f.service(onlyFacebook()).ReconcileDateRange(context.Background(), day1, day2)
	require.NoError(t, err)

	require.Len(t, report.FailedDates, 1)
	assert.Equal(t, "2026-08-15", report.FailedDates[0])
	require.Len(t, report.PerPlatform, 1)
	assert.Equal(t, "2026-08-16", report.PerPlatform[0].Date)
}

func TestReconcileDateRange_CancelamentoPreservaDiasCommitados(t *testing.T) {
	f := newServiceFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service(onlyFacebook()).ReconcileDateRange(ctx, testDate, testDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.PerPlatform)
}
