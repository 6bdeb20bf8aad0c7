package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/database/postgres"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/integrator/exchangerate"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/config"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/reconciling"
	"github.com/vfg2006/cost-reconciler-api/pkg/utils"
)

// Execução em lote da reconciliação, para reprocessamentos manuais:
//
//	go run ./cmd/reconcile -start 2026-08-01 -end 2026-08-07
func main() {
	startFlag := flag.String("start", "", "data inicial (YYYY-MM-DD); padrão: ontem")
	endFlag := flag.String("end", "", "data final (YYYY-MM-DD); padrão: igual à inicial")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	startDate, endDate, err := resolveDates(*startFlag, *endFlag)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer conn.Close()

	reconciler := reconciling.NewService(
		conn,
		repository.NewCostRecordRepository(conn),
		repository.NewVisitRepository(conn),
		repository.NewLedgerRepository(conn),
		exchangerate.NewClient(cfg),
		reconcilingSettings(cfg),
	)

	report, err := reconciler.ReconcileDateRange(ctx, startDate, endDate)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao executar reconciliação")
	}

	for _, stats := range report.PerPlatform {
		logrus.WithFields(logrus.Fields{
			"platform":          stats.Platform,
			"date":              stats.Date,
			"reported_cost":     utils.RoundWithTwoDecimalPlace(stats.ReportedCost),
			"allocated_cost":    utils.RoundWithTwoDecimalPlace(stats.AllocatedCost),
			"matched_visits":    stats.MatchedVisits,
			"artificial_visits": stats.ArtificialVisits,
		}).Info("Resultado da reconciliação por plataforma")
	}

	for _, warning := range report.Warnings {
		logrus.Warn(warning)
	}

	logrus.Debug("Relatório completo da reconciliação:\n", utils.PrettyJson(report))

	logrus.WithFields(logrus.Fields{
		"start_date":   report.StartDate,
		"end_date":     report.EndDate,
		"failed_dates": report.FailedDates,
		"duration":     report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Reconciliação concluída")

	if len(report.FailedDates) > 0 {
		logrus.Fatal("Um ou mais dias falharam na reconciliação")
	}
}

func resolveDates(startStr, endStr string) (time.Time, time.Time, error) {
	yesterday := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)

	startDate := yesterday
	if startStr != "" {
		parsed, err := time.Parse(time.DateOnly, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		startDate = parsed
	}

	endDate := startDate
	if endStr != "" {
		parsed, err := time.Parse(time.DateOnly, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endDate = parsed
	}

	return startDate, endDate, nil
}

func reconcilingSettings(cfg *config.Config) reconciling.Settings {
	var platforms []domain.Platform
	for _, name := range cfg.Reconciliation.ActivePlatforms {
		platform := domain.Platform(name)
		if !platform.IsValid() {
			logrus.Warnf("Plataforma desconhecida na configuração: %s", name)
			continue
		}
		platforms = append(platforms, platform)
	}

	return reconciling.Settings{
		ActivePlatforms:              platforms,
		ReportingCurrency:            cfg.Reconciliation.ReportingCurrency,
		ConservationTolerance:        cfg.Reconciliation.ConservationTolerance,
		ArtificialCollisionThreshold: cfg.Reconciliation.CollisionThreshold,
	}
}
