package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the bot process needs: the exchange session
// inputs, the schedule source, the pricing window and the ambient
// services. The exchange and schedule constructors take plain arguments;
// only main consumes this package.
type Config struct {
	Exchange ExchangeConfig
	Schedule ScheduleConfig
	Pricing  PricingConfig
	Series   SeriesConfig
	Metrics  MetricsConfig
}

type ExchangeConfig struct {
	BaseURL  string
	Username string
	Password string
	Product  string
}

type ScheduleConfig struct {
	BaseURL string
	Pages   int
	From    time.Time
	To      time.Time
}

type PricingConfig struct {
	WindowStart time.Time
	WindowEnd   time.Time
}

type SeriesConfig struct {
	Path string
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// LoadConfig loads configuration from environment variables, with an
// optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	return &Config{
		Exchange: ExchangeConfig{
			BaseURL:  getEnv("FLIGHTBOT_CMI_URL", "http://localhost:8000"),
			Username: getEnv("FLIGHTBOT_CMI_USERNAME", ""),
			Password: getEnv("FLIGHTBOT_CMI_PASSWORD", ""),
			Product:  getEnv("FLIGHTBOT_PRODUCT", "MUC5"),
		},
		Schedule: ScheduleConfig{
			BaseURL: getEnv("FLIGHTBOT_SCHEDULE_URL", "https://www.munich-airport.com/flightsearch"),
			Pages:   getEnvInt("FLIGHTBOT_SCHEDULE_PAGES", 9),
			From:    getEnvTime("FLIGHTBOT_SCHEDULE_FROM", time.Date(2025, 11, 22, 0, 0, 0, 0, time.Local)),
			To:      getEnvTime("FLIGHTBOT_SCHEDULE_TO", time.Date(2025, 11, 24, 0, 0, 0, 0, time.Local)),
		},
		Pricing: PricingConfig{
			WindowStart: getEnvTime("FLIGHTBOT_WINDOW_START", time.Date(2025, 11, 22, 10, 0, 0, 0, time.Local)),
			WindowEnd:   getEnvTime("FLIGHTBOT_WINDOW_END", time.Date(2025, 11, 23, 10, 0, 0, 0, time.Local)),
		},
		Series: SeriesConfig{
			Path: getEnv("FLIGHTBOT_SERIES_FILE", "price_estimates_series.json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("FLIGHTBOT_METRICS_ENABLED", true),
			Addr:    getEnv("FLIGHTBOT_METRICS_ADDR", ":8080"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvTime(key string, fallback time.Time) time.Time {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local); err == nil {
			return parsed
		}
	}
	return fallback
}
