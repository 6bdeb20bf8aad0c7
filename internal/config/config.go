package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Auth           Auth           `mapstructure:",squash"`
	ExchangeRate   ExchangeRate   `mapstructure:",squash"`
	Reconciliation Reconciliation `mapstructure:",squash"`
	SecretKey      string         `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type ExchangeRate struct {
	URL string `mapstructure:"exchange_rate_url"`
}

type Reconciliation struct {
	CronSchedule       string   `mapstructure:"reconciliation_cron"`
	LookbackDays       int      `mapstructure:"reconciliation_lookback_days"`
	MaxConcurrentDates int      `mapstructure:"reconciliation_max_concurrent_dates"`
	Enabled            bool     `mapstructure:"reconciliation_enabled"`
	ActivePlatforms    []string `mapstructure:"reconciliation_active_platforms"`
	ReportingCurrency  string   `mapstructure:"reconciliation_reporting_currency"`

	// Limite de colisões de hash artificial tolerado por dia; acima disso a
	// transação do dia é abortada.
	CollisionThreshold int `mapstructure:"reconciliation_collision_threshold"`

	// Divergência tolerada entre custo reportado e alocado na validação de
	// conservação, em unidades da moeda de relatório.
	ConservationTolerance float64 `mapstructure:"reconciliation_conservation_tolerance"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/reconciler")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("EXCHANGE_RATE_URL", "https://api.frankfurter.dev/v1")

	// Defaults para a reconciliação diária de custos
	viper.SetDefault("RECONCILIATION_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("RECONCILIATION_LOOKBACK_DAYS", 7)  // 7 dias para reconciliar
	viper.SetDefault("RECONCILIATION_MAX_CONCURRENT_DATES", 3)
	viper.SetDefault("RECONCILIATION_ENABLED", false)
	viper.SetDefault("RECONCILIATION_ACTIVE_PLATFORMS", "") // Vazio = todas as plataformas
	viper.SetDefault("RECONCILIATION_REPORTING_CURRENCY", "BRL")
	viper.SetDefault("RECONCILIATION_COLLISION_THRESHOLD", 10)
	viper.SetDefault("RECONCILIATION_CONSERVATION_TOLERANCE", 0.01)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
