// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Services ServicesConfig `mapstructure:"services"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServicesConfig holds the endpoints of the collaborating verification
// services. Each call has a per-service timeout in milliseconds.
type ServicesConfig struct {
	Identity     ServiceEndpoint `mapstructure:"identity"`
	CreditReport ServiceEndpoint `mapstructure:"credit_report"`
	Registry     ServiceEndpoint `mapstructure:"registry"`
	Valuation    ServiceEndpoint `mapstructure:"valuation"`
	Policy       ServiceEndpoint `mapstructure:"policy"`
	Persistence  ServiceEndpoint `mapstructure:"persistence"`
}

type ServiceEndpoint struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// PolicyConfig holds the tunable heuristics of the reconciler and the
// fallback defaults of the connectors.
type PolicyConfig struct {
	AmountBand         AmountBand `mapstructure:"amount_band"`
	EstimatedLTV       float64    `mapstructure:"estimated_ltv"`
	DefaultMarketValue int64      `mapstructure:"default_market_value"`
	SnapshotTTLHours   int        `mapstructure:"snapshot_ttl_hours"`
}

// AmountBand is the plausible vehicle-loan window used by the
// amount-range classification heuristic.
type AmountBand struct {
	Lower int64 `mapstructure:"lower"`
	Upper int64 `mapstructure:"upper"`
}

// Contains reports whether an amount falls inside the band.
func (b AmountBand) Contains(amount int64) bool {
	return amount >= b.Lower && amount <= b.Upper
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func validateConfig(cfg *Config) error {
	if cfg.Policy.AmountBand.Lower < 0 || cfg.Policy.AmountBand.Upper <= cfg.Policy.AmountBand.Lower {
		return fmt.Errorf("policy.amount_band: lower=%d upper=%d is not a valid window",
			cfg.Policy.AmountBand.Lower, cfg.Policy.AmountBand.Upper)
	}
	if cfg.Policy.EstimatedLTV <= 0 || cfg.Policy.EstimatedLTV > 1 {
		return fmt.Errorf("policy.estimated_ltv must be in (0,1], got %v", cfg.Policy.EstimatedLTV)
	}
	if cfg.Policy.DefaultMarketValue <= 0 {
		return fmt.Errorf("policy.default_market_value must be positive")
	}
	return nil
}
