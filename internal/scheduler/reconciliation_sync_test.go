package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/cost-reconciler-api/internal/config"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// fakeReconciler registra as datas reconciliadas e devolve relatórios ou
// erros pré-configurados por data
type fakeReconciler struct {
	mu      sync.Mutex
	calls   []string
	reports map[string]*domain.ReconciliationReport
	errs    map[string]error
}

func newFakeReconciler() *fakeReconciler {
	return &fakeReconciler{
		reports: make(map[string]*domain.ReconciliationReport),
		errs:    make(map[string]error),
	}
}

func (f *fakeReconciler) ReconcileDateRange(_ context.Context, startDate, _ time.Time) (*domain.ReconciliationReport, error) {
	dateStr := startDate.Format(time.DateOnly)

	f.mu.Lock()
	f.calls = append(f.calls, dateStr)
	f.mu.Unlock()

	if err, ok := f.errs[dateStr]; ok {
		return nil, err
	}
	if report, ok := f.reports[dateStr]; ok {
		return report, nil
	}
	return &domain.ReconciliationReport{StartDate: dateStr, EndDate: dateStr}, nil
}

func (f *fakeReconciler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestSyncService(reconciler *fakeReconciler, lookbackDays, maxConcurrent int) *ReconciliationSyncService {
	cfg := &config.Config{}
	cfg.Reconciliation.CronSchedule = "0 3 * * *"
	cfg.Reconciliation.LookbackDays = lookbackDays
	cfg.Reconciliation.MaxConcurrentDates = maxConcurrent
	cfg.Reconciliation.Enabled = true
	return NewReconciliationSyncService(reconciler, cfg)
}

func TestGetDatesToProcess(t *testing.T) {
	service := newTestSyncService(newFakeReconciler(), 7, 3)

	dates := service.getDatesToProcess()

	require.Len(t, dates, 7)

	// Do dia mais antigo até ontem, sem incluir hoje.
	yesterday := time.Now().AddDate(0, 0, -1).Format(time.DateOnly)
	assert.Equal(t, yesterday, dates[len(dates)-1].Format(time.DateOnly))

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]), "datas fora de ordem cronológica")
	}
}

func TestProcessDates_ReconciliaCadaDataUmaVez(t *testing.T) {
	reconciler := newFakeReconciler()
	service := newTestSyncService(reconciler, 5, 2)

	service.processDates(context.Background(), service.getDatesToProcess())

	assert.Equal(t, 5, reconciler.callCount())
	assert.Empty(t, service.lastFailedDates)
	assert.Zero(t, service.lastWarningCount)
}

func TestProcessDates_AgregaFalhasEAvisos(t *testing.T) {
	reconciler := newFakeReconciler()
	service := newTestSyncService(reconciler, 3, 3)

	dates := service.getDatesToProcess()
	day0 := dates[0].Format(time.DateOnly)
	day1 := dates[1].Format(time.DateOnly)

	// O primeiro dia falha por completo; o segundo termina com um dia FAILED
	// no relatório e dois avisos.
	reconciler.errs[day0] = errors.New("conexão perdida")
	reconciler.reports[day1] = &domain.ReconciliationReport{
		StartDate:   day1,
		EndDate:     day1,
		FailedDates: []string{day1},
		Warnings:    []string{"aviso 1", "aviso 2"},
	}

	service.processDates(context.Background(), dates)

	assert.Equal(t, 3, reconciler.callCount())
	assert.ElementsMatch(t, []string{day0, day1}, service.lastFailedDates)
	assert.Equal(t, 2, service.lastWarningCount)
}

func TestReconcileLookbackWindow_IgnoraExecucaoConcorrente(t *testing.T) {
	reconciler := newFakeReconciler()
	service := newTestSyncService(reconciler, 2, 1)

	service.syncMutex.Lock()
	service.syncRunning = true
	service.syncMutex.Unlock()

	service.reconcileLookbackWindow(context.Background())

	assert.Zero(t, reconciler.callCount())
}

func TestGetStatus(t *testing.T) {
	service := newTestSyncService(newFakeReconciler(), 7, 3)
	service.lastFailedDates = []string{"2026-08-15"}
	service.lastWarningCount = 4

	status := service.GetStatus()

	assert.Equal(t, true, status["sync_enabled"])
	assert.Equal(t, "0 3 * * *", status["sync_cron"])
	assert.Equal(t, 7, status["sync_lookback_days"])
	assert.Equal(t, 3, status["sync_max_concurrent"])
	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, []string{"2026-08-15"}, status["last_failed_dates"])
	assert.Equal(t, 4, status["last_warning_count"])
}

func TestStart_DesabilitadoNaoAgenda(t *testing.T) {
	reconciler := newFakeReconciler()
	cfg := &config.Config{}
	cfg.Reconciliation.Enabled = false
	service := NewReconciliationSyncService(reconciler, cfg)

	err := service.Start(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reconciler.callCount())
}
