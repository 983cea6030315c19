package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New() //nolint:gochecknoglobals // skip

type Config struct {
	App      App
	Postgres Postgres
	Redis    Redis
	Bot      Bot
	Backend  Backend
	Scanner  Scanner
	Files    Files
}

type App struct {
	Name            string        `env:"APP_NAME" envDefault:"currency_flip"`
	Version         string        `env:"APP_VERSION" envDefault:"dev"`
	HTTPAddress     string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	ProbeAddress    string        `env:"PROBE_ADDRESS" envDefault:":8081"`
	MetricsAddress  string        `env:"METRICS_ADDRESS" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// Bot пустой токен отключает уведомления и административного бота.
type Bot struct {
	Token   string `env:"BOT_TOKEN" json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

type Backend struct {
	URL             string        `env:"POE_TRADE_URL" envDefault:"https://www.pathofexile.com" validate:"url"`
	Workers         int           `env:"POE_TRADE_WORKERS" envDefault:"1" validate:"min=1"`
	MaxAttempts     int           `env:"POE_TRADE_MAX_ATTEMPTS" envDefault:"3" validate:"min=1"`
	Penalty         time.Duration `env:"POE_TRADE_PENALTY" envDefault:"15s"`
	RequestInterval time.Duration `env:"POE_TRADE_REQUEST_INTERVAL" envDefault:"1500ms"`
	Burst           int           `env:"POE_TRADE_BURST" envDefault:"2" validate:"min=1"`
	FetchLimit      int           `env:"POE_TRADE_FETCH_LIMIT" envDefault:"10" validate:"min=1"`
}

type Scanner struct {
	League     string        `env:"SCAN_LEAGUE" envDefault:"Kalandra"`
	Currencies []string      `env:"SCAN_CURRENCIES" envSeparator:","`
	Interval   time.Duration `env:"SCAN_INTERVAL" envDefault:"5m"`
	FullBulk   bool          `env:"SCAN_FULLBULK"`
	NoFilter   bool          `env:"SCAN_NOFILTER"`
	Limit      int           `env:"SCAN_LIMIT" envDefault:"5" validate:"gte=0"`
	MaxLength  int           `env:"SCAN_MAX_LENGTH" envDefault:"2" validate:"min=1,max=5"`
	AutoStart  bool          `env:"SCAN_AUTOSTART" envDefault:"true"`
	// Concurrency число задач из очереди сканирований, обрабатываемых одновременно.
	Concurrency int `env:"SCAN_QUEUE_CONCURRENCY" envDefault:"2" validate:"min=1"`
}

type Files struct {
	UserConfig      string `env:"USER_CONFIG_PATH"`
	ExcludedTraders string `env:"EXCLUDED_TRADERS_PATH" envDefault:"config/excluded_traders.txt"`
	Catalog         string `env:"CATALOG_PATH"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("validate.Struct: %w", err)
	}

	return config, nil
}

// LoadStandalone читает только то, что нужно для разового поиска из CLI:
// без Postgres, Redis и ботов.
func LoadStandalone() (Config, error) {
	_ = godotenv.Load()

	var config Config

	for _, part := range []any{&config.App, &config.Backend, &config.Scanner, &config.Files} {
		if err := env.Parse(part); err != nil {
			return Config{}, fmt.Errorf("env.Parse: %w", err)
		}

		if err := validate.Struct(part); err != nil {
			return Config{}, fmt.Errorf("validate.Struct: %w", err)
		}
	}

	return config, nil
}
