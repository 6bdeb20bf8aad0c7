package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/internal/config"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/reconciling"
)

// ReconciliationSyncConfig representa a configuração do agendador de
// reconciliação de custos
type ReconciliationSyncConfig struct {
	CronSchedule       string
	LookbackDays       int
	MaxConcurrentDates int
	SyncEnabled        bool
}

// ReconciliationSyncService gerencia o agendamento e execução da
// reconciliação diária de custos de publicidade
type ReconciliationSyncService struct {
	scheduler           *gocron.Scheduler
	config              ReconciliationSyncConfig
	reconciler          reconciling.Reconciler
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastFailedDates     []string
	lastWarningCount    int
}

// NewReconciliationSyncService cria uma nova instância do serviço de
// reconciliação agendada
func NewReconciliationSyncService(
	reconciler reconciling.Reconciler,
	appConfig *config.Config,
) *ReconciliationSyncService {
	// Criar a configuração com base na config global
	syncConfig := ReconciliationSyncConfig{
		CronSchedule:       appConfig.Reconciliation.CronSchedule,
		LookbackDays:       appConfig.Reconciliation.LookbackDays,
		MaxConcurrentDates: appConfig.Reconciliation.MaxConcurrentDates,
		SyncEnabled:        appConfig.Reconciliation.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":        syncConfig.CronSchedule,
		"lookback_days":        syncConfig.LookbackDays,
		"max_concurrent_dates": syncConfig.MaxConcurrentDates,
		"sync_enabled":         syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de reconciliação carregada")

	return &ReconciliationSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		reconciler:  reconciler,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *ReconciliationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Reconciliação agendada de custos desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação de custos")

	// Agendar a reconciliação diária
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.reconcileLookbackWindow(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reconciliação de custos: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação de custos")
		s.scheduler.Stop()
	}()

	return nil
}

// reconcileLookbackWindow reconcilia todos os dias da janela de lookback,
// do mais antigo para o mais recente
func (s *ReconciliationSyncService) reconcileLookbackWindow(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação de custos já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	dates := s.getDatesToProcess()
	logrus.WithFields(logrus.Fields{
		"days":       s.config.LookbackDays,
		"start_date": dates[0].Format(time.DateOnly),
		"end_date":   dates[len(dates)-1].Format(time.DateOnly),
	}).Info("Período para reconciliação de custos")

	s.processDates(ctx, dates)

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":     duration.String(),
		"days":         s.config.LookbackDays,
		"failed_dates": len(s.lastFailedDates),
		"warnings":     s.lastWarningCount,
	}).Info("Reconciliação de custos concluída")

	s.lastSyncCompletedAt = time.Now()
}

// getDatesToProcess cria o conjunto de datas da janela de lookback, do dia
// mais antigo para ontem
func (s *ReconciliationSyncService) getDatesToProcess() []time.Time {
	dates := make([]time.Time, s.config.LookbackDays)
	for i := 0; i < s.config.LookbackDays; i++ {
		dates[i] = time.Now().AddDate(0, 0, i-s.config.LookbackDays) // Do mais antigo até ontem
	}
	return dates
}

// processDates reconcilia cada data em um worker próprio, limitado pelo
// semáforo de concorrência. Datas distintas nunca disputam as mesmas linhas
// do ledger, então podem correr em paralelo.
func (s *ReconciliationSyncService) processDates(ctx context.Context, dates []time.Time) {
	// Criar um canal para controlar o número de workers concorrentes
	semaphore := make(chan struct{}, s.config.MaxConcurrentDates)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var failedDates []string
	warningCount := 0

	for _, date := range dates {
		wg.Add(1)
		semaphore <- struct{}{} // Adquirir semáforo

		go func(d time.Time) {
			defer func() {
				<-semaphore // Liberar semáforo
				wg.Done()
			}()

			report, err := s.reconciler.ReconcileDateRange(ctx, d, d)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"date":  d.Format(time.DateOnly),
					"error": err.Error(),
				}).Error("Erro ao reconciliar custos do dia")

				mu.Lock()
				failedDates = append(failedDates, d.Format(time.DateOnly))
				mu.Unlock()
				return
			}

			mu.Lock()
			failedDates = append(failedDates, report.FailedDates...)
			warningCount += len(report.Warnings)
			mu.Unlock()
		}(date)
	}

	// Aguardar todos os workers terminarem
	wg.Wait()

	s.lastFailedDates = failedDates
	s.lastWarningCount = warningCount
}

// TriggerManualSync inicia manualmente uma reconciliação da janela de
// lookback
func (s *ReconciliationSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação de custos já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reconciliação manual de custos")
	go s.reconcileLookbackWindow(context.Background())
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_max_concurrent":    s.config.MaxConcurrentDates,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_failed_dates":      s.lastFailedDates,
		"last_warning_count":     s.lastWarningCount,
	}
}
