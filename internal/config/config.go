package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/SignalLab/internal/calculate"
	"github.com/Alias1177/SignalLab/internal/trading/backtest"
	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
)

// Config holds all application configuration
type Config struct {
	LogLevel    string   `yaml:"logLevel"`
	Symbols     []string `yaml:"symbols"`
	Timeframe   string   `yaml:"timeframe"`
	HistoryDays int      `yaml:"historyDays"`

	Backtest   backtest.Config  `yaml:"backtest"`
	Optimizer  optimizer.Config `yaml:"optimizer"`
	Indicators calculate.Params `yaml:"indicators"`

	TwelveData struct {
		APIKey         string `yaml:"apiKey"`
		RequestsPerSec int    `yaml:"requestsPerSec"`
		RequestTimeout int    `yaml:"requestTimeout"` // seconds
	} `yaml:"twelveData"`

	Storage struct {
		PostgresDSN string `yaml:"postgresDsn"`
		SQLitePath  string `yaml:"sqlitePath"`
	} `yaml:"storage"`

	Telegram struct {
		BotToken string `yaml:"botToken"`
		ChatID   int64  `yaml:"chatId"`
	} `yaml:"telegram"`

	Schedule struct {
		OptimizeCron string `yaml:"optimizeCron"` // six fields, seconds first
		RunOnStart   bool   `yaml:"runOnStart"`
	} `yaml:"schedule"`
}

// Default returns the configuration used when neither a file nor the
// environment sets a value.
func Default() *Config {
	cfg := &Config{
		LogLevel:    "info",
		Symbols:     []string{"EUR/USD"},
		Timeframe:   "1h",
		HistoryDays: 60,
		Backtest:    backtest.DefaultConfig(),
		Optimizer:   optimizer.DefaultConfig(),
		Indicators:  calculate.DefaultParams(),
	}
	cfg.TwelveData.RequestsPerSec = 5
	cfg.TwelveData.RequestTimeout = 30
	cfg.Storage.SQLitePath = "data/signallab.db"
	cfg.Schedule.OptimizeCron = "0 0 2 * * *"
	return cfg
}

// Load reads .env, then the optional YAML file at path, then applies
// environment variable overrides and validates the result.
func Load(path string) (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.Timeframe = getEnvWithDefault("TIMEFRAME", c.Timeframe)
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = splitList(v)
	}
	c.TwelveData.APIKey = getEnvWithDefault("TWELVE_API_KEY", c.TwelveData.APIKey)
	c.Storage.PostgresDSN = getEnvWithDefault("DATABASE_URL", c.Storage.PostgresDSN)
	c.Storage.SQLitePath = getEnvWithDefault("SQLITE_PATH", c.Storage.SQLitePath)
	c.Telegram.BotToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Schedule.OptimizeCron = getEnvWithDefault("OPTIMIZE_CRON", c.Schedule.OptimizeCron)

	var errs []error
	intEnv := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	floatEnv := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err))
		}
		c.Telegram.ChatID = id
	}
	intEnv("HISTORY_DAYS", &c.HistoryDays)
	floatEnv("BT_FEE", &c.Backtest.Fee)
	floatEnv("BT_INITIAL_CAPITAL", &c.Backtest.InitialCapital)
	floatEnv("BT_SIGNAL_THRESHOLD", &c.Backtest.SignalThreshold)
	intEnv("OPT_WORKERS", &c.Optimizer.Workers)
	intEnv("TRAINING_WINDOW", &c.Optimizer.TrainingWindow)
	if v := os.Getenv("OPT_MODE"); v != "" {
		c.Optimizer.Mode = optimizer.Mode(v)
	}
	if v := os.Getenv("BT_LONG_ONLY"); v != "" {
		c.Backtest.LongOnly = getEnvBoolWithDefault("BT_LONG_ONLY", c.Backtest.LongOnly)
	}

	return errors.Join(errs...)
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Timeframe == "" {
		return fmt.Errorf("timeframe is required")
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("historyDays must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chatId is required with a bot token")
	}
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
