package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/database/postgres"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/integrator/exchangerate"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/api"
	"github.com/vfg2006/cost-reconciler-api/internal/config"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
	"github.com/vfg2006/cost-reconciler-api/internal/scheduler"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/authenticating"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/reconciling"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	costRecordRepo := repository.NewCostRecordRepository(pgConn)
	visitRepo := repository.NewVisitRepository(pgConn)
	ledgerRepo := repository.NewLedgerRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	exchangeRateService := exchangerate.NewClient(cfg)

	reconciler := reconciling.NewService(
		pgConn,
		costRecordRepo,
		visitRepo,
		ledgerRepo,
		exchangeRateService,
		reconcilingSettings(cfg),
	)

	// Inicializa o agendador da reconciliação diária
	reconciliationSyncService := scheduler.NewReconciliationSyncService(reconciler, cfg)

	// Inicia o agendador em background
	if err := reconciliationSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação de custos")
	} else {
		logrus.Info("Agendador de reconciliação de custos iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		reconciler,
		ledgerRepo,
		authenticator,
		reconciliationSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// reconcilingSettings converte a configuração global nas opções do motor,
// descartando plataformas desconhecidas com aviso
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

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
