package reconciling

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/integrator/exchangerate"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

// Fases da máquina de estados de um dia de reconciliação, para logging.
const (
	phaseLoading    = "LOADING"
	phaseAllocating = "ALLOCATING"
	phaseWriting    = "WRITING"
	phaseValidated  = "VALIDATED"
)

// Settings é a configuração imutável do motor, passada na construção do
// serviço em vez de lida de estado global.
type Settings struct {
	ActivePlatforms []domain.Platform

	// Moeda em que o ledger é mantido; registros em outra moeda são
	// convertidos na carga com a taxa diária do serviço externo.
	ReportingCurrency string

	// Divergência tolerada entre custo reportado e alocado por
	// plataforma/dia (uma unidade da moeda menor).
	ConservationTolerance float64

	// Limite de colisões de unique_hash tolerado por dia na inserção de
	// visitas artificiais; acima disso o dia aborta sem commit.
	ArtificialCollisionThreshold int
}

func (s *Settings) applyDefaults() {
	if len(s.ActivePlatforms) == 0 {
		s.ActivePlatforms = domain.AllPlatforms()
	}
	if s.ConservationTolerance <= 0 {
		s.ConservationTolerance = 0.01
	}
	if s.ArtificialCollisionThreshold <= 0 {
		s.ArtificialCollisionThreshold = 10
	}
}

// TxRunner executa uma função dentro de uma transação do banco. Satisfeito
// por *postgres.Connection.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// Reconciler é o ponto de entrada em lote do motor de reconciliação.
type Reconciler interface {
	// ReconcileDateRange reconcilia cada dia do intervalo (inclusivo) de
	// forma independente: um dia que falha não afeta os demais. O relatório
	// acumula as estatísticas por plataforma/dia e os avisos não fatais.
	ReconcileDateRange(ctx context.Context, startDate, endDate time.Time) (*domain.ReconciliationReport, error)
}

type Service struct {
	db         TxRunner
	costRepo   repository.CostRecordRepository
	visitRepo  repository.VisitRepository
	ledgerRepo repository.LedgerRepository
	rates      exchangerate.Service
	enricher   *HistoricalEnricher
	settings   Settings
}

func NewService(
	db TxRunner,
	costRepo repository.CostRecordRepository,
	visitRepo repository.VisitRepository,
	ledgerRepo repository.LedgerRepository,
	rates exchangerate.Service,
	settings Settings,
) Reconciler {
	settings.applyDefaults()
	return &Service{
		db:         db,
		costRepo:   costRepo,
		visitRepo:  visitRepo,
		ledgerRepo: ledgerRepo,
		rates:      rates,
		enricher:   NewHistoricalEnricher(costRepo),
		settings:   settings,
	}
}

func (s *Service) ReconcileDateRange(ctx context.Context, startDate, endDate time.Time) (*domain.ReconciliationReport, error) {
	if endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}

	report := &domain.ReconciliationReport{
		StartDate: startDate.Format(time.DateOnly),
		EndDate:   endDate.Format(time.DateOnly),
		StartedAt: time.Now(),
	}

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			// Cancelamento entre dias: os dias já commitados permanecem, o
			// restante fica para a próxima execução.
			report.FinishedAt = time.Now()
			return report, errors.Wrap(err, "reconciliação cancelada")
		}

		if err := s.reconcileDate(ctx, date, report); err != nil {
			dateStr := date.Format(time.DateOnly)
			report.FailedDates = append(report.FailedDates, dateStr)
			report.AddWarning("dia %s marcado como FAILED: %v", dateStr, err)

			logrus.WithFields(logrus.Fields{
				"date":  dateStr,
				"error": err.Error(),
			}).Error("Reconciliação do dia falhou; ledger anterior preservado")
		}
	}

	report.FinishedAt = time.Now()
	return report, nil
}

// dayPlan acumula, em memória, tudo o que a fase WRITING de um dia grava.
// Só depois da alocação de todas as plataformas o plano é commitado, em uma
// única transação: um cancelamento antes disso não toca o ledger.
type dayPlan struct {
	realEntries       []*domain.LedgerEntry
	artificialEntries []*domain.LedgerEntry
	zeroedHashes      []string
}

func (s *Service) reconcileDate(ctx context.Context, date time.Time, report *domain.ReconciliationReport) error {
	dateStr := date.Format(time.DateOnly)
	logger := logrus.WithField("date", dateStr)

	logger.WithField("phase", phaseLoading).Info("Iniciando reconciliação do dia")

	visits, err := s.visitRepo.ListByDate(date)
	if err != nil {
		return errors.Wrap(err, "erro ao carregar visitas do dia")
	}

	visitsByPlatform := make(map[domain.Platform][]*domain.Visit)
	var plainVisits []*domain.Visit
	for _, visit := range visits {
		if !visit.HasPlatform() {
			plainVisits = append(plainVisits, visit)
			continue
		}
		visitsByPlatform[visit.Platform] = append(visitsByPlatform[visit.Platform], visit)
	}

	logger.WithFields(logrus.Fields{
		"phase":        phaseAllocating,
		"visits":       len(visits),
		"plain_visits": len(plainVisits),
	}).Info("Visitas carregadas; alocando custo por plataforma")

	plan := &dayPlan{}
	for _, platform := range s.settings.ActivePlatforms {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "reconciliação cancelada antes da escrita")
		}

		if err := s.allocatePlatform(platform, date, visitsByPlatform[platform], plan, report); err != nil {
			// Falha de carga ou de alocação de uma plataforma é fatal para o
			// dia: a fase WRITING apaga e regrava as entradas reais da data
			// inteira, então prosseguir sem essa plataforma destruiria as
			// entradas já gravadas dela e o gasto sumiria do ledger.
			return errors.Wrapf(err, "plataforma %s", platform)
		}
	}

	for _, visit := range plainVisits {
		plan.realEntries = append(plan.realEntries, buildPlainEntry(visit))
	}

	logger.WithFields(logrus.Fields{
		"phase":              phaseWriting,
		"real_entries":       len(plan.realEntries),
		"artificial_entries": len(plan.artificialEntries),
	}).Info("Alocação concluída; gravando ledger do dia")

	if err := s.writeDay(ctx, date, plan, report); err != nil {
		return err
	}

	logger.WithField("phase", phaseValidated).Info("Reconciliação do dia concluída")
	return nil
}

func (s *Service) allocatePlatform(
	platform domain.Platform,
	date time.Time,
	visits []*domain.Visit,
	plan *dayPlan,
	report *domain.ReconciliationReport,
) error {
	builder, ok := BuilderFor(platform)
	if !ok {
		return errors.Wrapf(ErrUnknownPlatform, "%s", platform)
	}

	records, err := s.costRepo.ListByDate(platform, date)
	if err != nil {
		return errors.Wrap(err, "erro ao carregar registros de custo")
	}

	records = s.convertCurrencies(records, date, report)

	matchResult := Match(builder, records, visits)
	for _, warning := range matchResult.Warnings {
		report.AddWarning("%s", warning)
	}

	allocation, err := Allocate(platform, date, matchResult.Matches)
	if err != nil {
		return err
	}

	for _, visit := range matchResult.UnmatchedVisits {
		entry, err := s.enricher.Enrich(builder, visit)
		if err != nil {
			// Linha de visita problemática: pula a visita, segue a execução.
			report.AddWarning("visita %d não enriquecida: %v", visit.VisitID, err)
			continue
		}
		plan.realEntries = append(plan.realEntries, entry)
	}

	plan.realEntries = append(plan.realEntries, allocation.RealEntries...)
	plan.artificialEntries = append(plan.artificialEntries, allocation.ArtificialEntries...)
	plan.zeroedHashes = append(plan.zeroedHashes, allocation.ZeroedArtificialHashes...)

	report.PerPlatform = append(report.PerPlatform, allocation.Stats)

	if warning, ok := conservationWarning(allocation.Stats, s.settings.ConservationTolerance); ok {
		report.AddWarning("%s", warning)
	}

	return nil
}

// conservationWarning valida a conservação de custo de uma plataforma/dia:
// divergência entre reportado e alocado acima da tolerância vira um aviso
// não fatal no relatório.
func conservationWarning(stats *domain.PlatformReconciliation, tolerance float64) (string, bool) {
	if stats.Divergence() <= tolerance {
		return "", false
	}
	return fmt.Sprintf("conservação de custo violada em %s/%s: reportado %.4f, alocado %.4f",
		stats.Platform, stats.Date, stats.ReportedCost, stats.AllocatedCost), true
}

// convertCurrencies converte o custo dos registros para a moeda de
// relatório. Registros cuja taxa não pôde ser obtida são pulados com aviso
// para não alocar custo em moeda errada.
func (s *Service) convertCurrencies(records []*domain.CostRecord, date time.Time, report *domain.ReconciliationReport) []*domain.CostRecord {
	if s.settings.ReportingCurrency == "" {
		return records
	}

	converted := records[:0]
	for _, record := range records {
		if record.Currency == "" || record.Currency == s.settings.ReportingCurrency {
			converted = append(converted, record)
			continue
		}

		rate, err := s.rates.Rate(record.Currency, s.settings.ReportingCurrency, date)
		if err != nil {
			report.AddWarning("registro de custo %d (%s) pulado: %v", record.ID, record.Platform, err)
			continue
		}

		record.Cost = record.Cost * rate
		record.Currency = s.settings.ReportingCurrency
		converted = append(converted, record)
	}

	return converted
}

func (s *Service) writeDay(ctx context.Context, date time.Time, plan *dayPlan, report *domain.ReconciliationReport) error {
	dateStr := date.Format(time.DateOnly)

	err := s.db.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := s.ledgerRepo.DeleteTrackedEntriesByDate(tx, date); err != nil {
			return err
		}

		if err := s.ledgerRepo.BulkInsert(tx, plan.realEntries); err != nil {
			return err
		}

		return s.upsertArtificials(tx, dateStr, plan, report)
	})
	if err != nil {
		var duplicateErr *DuplicateArtificialVisitError
		if errors.As(err, &duplicateErr) {
			return err
		}
		return &WriteTransactionError{Date: dateStr, Err: err}
	}

	return nil
}

// upsertArtificials aplica a disciplina de escritor único por chave das
// entradas artificiais: custos velhos são atualizados, chaves com visitas
// reais são zeradas, inserções novas toleram corridas benignas via
// ON CONFLICT DO NOTHING com contagem posterior de colisões.
func (s *Service) upsertArtificials(tx *sql.Tx, dateStr string, plan *dayPlan, report *domain.ReconciliationReport) error {
	hashes := make([]string, 0, len(plan.artificialEntries)+len(plan.zeroedHashes))
	for _, entry := range plan.artificialEntries {
		hashes = append(hashes, entry.UniqueHash)
	}
	hashes = append(hashes, plan.zeroedHashes...)

	existing, err := s.ledgerRepo.ListArtificialCostsByHash(tx, hashes)
	if err != nil {
		return err
	}

	var toInsert []*domain.LedgerEntry
	for _, entry := range plan.artificialEntries {
		current, found := existing[entry.UniqueHash]
		if !found {
			toInsert = append(toInsert, entry)
			continue
		}
		if entry.Cost != nil && *entry.Cost != current {
			if err := s.ledgerRepo.UpdateArtificialCost(tx, entry.UniqueHash, *entry.Cost); err != nil {
				return err
			}
		}
	}

	for _, hash := range plan.zeroedHashes {
		current, found := existing[hash]
		if !found || current == 0 {
			continue
		}
		if err := s.ledgerRepo.UpdateArtificialCost(tx, hash, 0); err != nil {
			return err
		}
	}

	inserted, err := s.ledgerRepo.InsertArtificialIgnoreConflicts(tx, toInsert)
	if err != nil {
		return err
	}

	collisions := len(toInsert) - int(inserted)
	if collisions > s.settings.ArtificialCollisionThreshold {
		return &DuplicateArtificialVisitError{
			Date:       dateStr,
			Collisions: collisions,
			Threshold:  s.settings.ArtificialCollisionThreshold,
		}
	}
	if collisions > 0 {
		report.AddWarning("%d colisões benignas de visitas artificiais em %s", collisions, dateStr)
	}

	return nil
}

// buildPlainEntry grava no ledger uma visita sem atribuição de plataforma,
// com canal derivado do tipo de referência e sem custo.
func buildPlainEntry(visit *domain.Visit) *domain.LedgerEntry {
	dateStr := visit.FirstActionTime.Format(time.DateOnly)
	return &domain.LedgerEntry{
		SiteID:              visit.SiteID,
		Origin:              domain.RealVisit(visit.VisitID),
		VisitorID:           visit.VisitorID,
		UniqueHash:          VisitUniqueHash(visit.SiteID, dateStr, visit.VisitID),
		FirstActionTime:     visit.FirstActionTime,
		DateWebsiteTimezone: dateStr,
		Channel:             domain.ChannelFromRefererType(visit.RefererType),
		CampaignData:        campaignDataFromVisit(visit),
	}
}
