// internal/connectors/identity/config.go
package identity

import (
	"time"

	"refi-pipeline/internal/common/config"
)

type Config struct {
	VerifyURL     string
	ReportURL     string
	VerifyTimeout time.Duration
	ReportTimeout time.Duration
}

// LoadConfig maps the shared services section onto this connector.
func LoadConfig(svc config.ServicesConfig) *Config {
	return &Config{
		VerifyURL:     svc.Identity.BaseURL + "/v1/identity/verify",
		ReportURL:     svc.CreditReport.BaseURL + "/v1/credit/report",
		VerifyTimeout: time.Duration(svc.Identity.Timeout) * time.Millisecond,
		ReportTimeout: time.Duration(svc.CreditReport.Timeout) * time.Millisecond,
	}
}
