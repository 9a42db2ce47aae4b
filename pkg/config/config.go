package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcclellann/fredPayroll/pkg/payroll"
)

type Config struct {
	Addr              string
	Environment       string
	DatabasePath      string
	DeductionStrategy string
	ReconcileInterval time.Duration
	CompanyName       string
	Currency          string
	MaxBodyBytes      int64
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		Environment:       getEnv("APP_ENV", "development"),
		DatabasePath:      getEnv("DATABASE_PATH", "fredpayroll.db"),
		DeductionStrategy: strings.ToLower(getEnv("DEDUCTION_STRATEGY", payroll.StrategyFlat)),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", time.Hour),
		CompanyName:       getEnv("RECEIPT_COMPANY_NAME", "Payroll Department"),
		Currency:          getEnv("CURRENCY", "AED"),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if _, err := payroll.StrategyByName(c.DeductionStrategy); err != nil {
		return fmt.Errorf("DEDUCTION_STRATEGY: %w", err)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
