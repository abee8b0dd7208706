package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings come from environment variables; cmd/server flags override
// SERVER_PORT and DB_PATH.

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	DBPath            string        `mapstructure:"DB_PATH"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogPretty         bool          `mapstructure:"LOG_PRETTY"`
	CarryoverEnabled  bool          `mapstructure:"CARRYOVER_ENABLED"`
	CarryoverInterval time.Duration `mapstructure:"CARRYOVER_INTERVAL"`
	WorkPolicyFile    string        `mapstructure:"WORK_POLICY_FILE"`
	CORSOrigins       string        `mapstructure:"CORS_ORIGINS"`
}

// Load reads configuration from environment variables over the defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_PATH", "payroll.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CARRYOVER_ENABLED", true)
	v.SetDefault("CARRYOVER_INTERVAL", time.Hour)
	v.SetDefault("WORK_POLICY_FILE", "")
	v.SetDefault("CORS_ORIGINS", "*")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
