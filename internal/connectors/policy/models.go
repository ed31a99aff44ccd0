// internal/connectors/policy/models.go
package policy

import (
	"fmt"

	"refi-pipeline/internal/models"
)

// EvaluateRequest carries the applicant attributes the lender policy
// service filters on.
type EvaluateRequest struct {
	CreditScore    int     `json:"creditScore"`
	FuelType       string  `json:"fuelType"`
	EmploymentType string  `json:"employmentType"`
	MonthlyIncome  float64 `json:"monthlyIncome"`
	LoanPurpose    string  `json:"loanPurpose"`
	LoanAmount     int64   `json:"loanAmount,omitempty"`
}

// EvaluateResponse is the policy service's pre-filtered product list.
type EvaluateResponse struct {
	EligibleProducts []models.LenderProduct `json:"eligibleProducts"`
}

// ValidateShape rejects bodies whose product entries lack the LTV the
// derived maximum loan depends on.
func (r *EvaluateResponse) ValidateShape() error {
	for i, p := range r.EligibleProducts {
		if p.LenderName == "" || p.ProductName == "" {
			return fmt.Errorf("product %d missing lender/product name", i)
		}
		if p.MaxLTVPercent <= 0 || p.MaxLTVPercent > 100 {
			return fmt.Errorf("product %d has maxLtvPercent %v outside (0,100]", i, p.MaxLTVPercent)
		}
	}
	return nil
}

// CatalogueDocument is the locally cached fallback product catalogue.
type CatalogueDocument struct {
	Products []models.LenderProduct `json:"products"`
}

// Result is the matcher outcome: the eligible set plus the tier it came
// from. An empty Products slice is a valid, non-error outcome.
type Result struct {
	Products []models.EligibleProduct
	Source   models.DataSource
}
