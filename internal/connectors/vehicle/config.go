// internal/connectors/vehicle/config.go
package vehicle

import (
	"time"

	"refi-pipeline/internal/common/config"
)

type Config struct {
	RegistryURL        string
	ValuationURL       string
	RegistryTimeout    time.Duration
	ValuationTimeout   time.Duration
	DefaultMarketValue int64
}

// LoadConfig maps the shared services and policy sections onto this connector.
func LoadConfig(svc config.ServicesConfig, policy config.PolicyConfig) *Config {
	return &Config{
		RegistryURL:        svc.Registry.BaseURL + "/v1/registry/lookup",
		ValuationURL:       svc.Valuation.BaseURL + "/v1/valuation/estimate",
		RegistryTimeout:    time.Duration(svc.Registry.Timeout) * time.Millisecond,
		ValuationTimeout:   time.Duration(svc.Valuation.Timeout) * time.Millisecond,
		DefaultMarketValue: policy.DefaultMarketValue,
	}
}
