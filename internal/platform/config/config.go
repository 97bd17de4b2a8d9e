package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds engine configuration.
type Config struct {
	DatabaseURL   string
	IsProduction  bool
	EnableDBCheck bool

	// LockInMonths is the fixed lock-in duration from investment creation.
	LockInMonths int
	// DedupWindow is the trailing interval during which an identical
	// (member, type, reference) transaction is treated as a duplicate.
	DedupWindow time.Duration

	// Quarterly bonus pool percentage band. Caller-supplied percentages
	// outside [BonusPoolMinPercent, BonusPoolMaxPercent] are rejected.
	BonusPoolMinPercent     float64
	BonusPoolMaxPercent     float64
	BonusPoolDefaultPercent float64

	// OutboxBatchSize bounds one dispatch pass over pending notifications.
	OutboxBatchSize int
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOCK_IN_MONTHS", 12)
	viper.SetDefault("DEDUP_WINDOW", "5m")
	viper.SetDefault("BONUS_POOL_MIN_PERCENT", 5.0)
	viper.SetDefault("BONUS_POOL_MAX_PERCENT", 10.0)
	viper.SetDefault("BONUS_POOL_DEFAULT_PERCENT", 7.5)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 100)

	viper.AutomaticEnv()

	cfg := &Config{}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LockInMonths = viper.GetInt("LOCK_IN_MONTHS")
	cfg.DedupWindow = viper.GetDuration("DEDUP_WINDOW")
	cfg.BonusPoolMinPercent = viper.GetFloat64("BONUS_POOL_MIN_PERCENT")
	cfg.BonusPoolMaxPercent = viper.GetFloat64("BONUS_POOL_MAX_PERCENT")
	cfg.BonusPoolDefaultPercent = viper.GetFloat64("BONUS_POOL_DEFAULT_PERCENT")
	cfg.OutboxBatchSize = viper.GetInt("OUTBOX_BATCH_SIZE")

	if cfg.LockInMonths <= 0 {
		return nil, fmt.Errorf("LOCK_IN_MONTHS must be positive, got %d", cfg.LockInMonths)
	}
	if cfg.DedupWindow <= 0 {
		return nil, fmt.Errorf("DEDUP_WINDOW must be positive, got %s", cfg.DedupWindow)
	}
	if cfg.BonusPoolMinPercent > cfg.BonusPoolMaxPercent {
		return nil, fmt.Errorf("bonus pool band is inverted: min %.2f > max %.2f", cfg.BonusPoolMinPercent, cfg.BonusPoolMaxPercent)
	}

	return cfg, nil
}
