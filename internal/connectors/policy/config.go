// internal/connectors/policy/config.go
package policy

import (
	"time"

	"refi-pipeline/internal/common/config"
)

type Config struct {
	EvaluateURL string
	Timeout     time.Duration
}

// LoadConfig maps the shared services section onto this connector.
func LoadConfig(svc config.ServicesConfig) *Config {
	return &Config{
		EvaluateURL: svc.Policy.BaseURL + "/v1/policy/evaluate",
		Timeout:     time.Duration(svc.Policy.Timeout) * time.Millisecond,
	}
}
