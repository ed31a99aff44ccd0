// internal/models/product.go
package models

// LenderProduct is one refinance product in a lender's catalogue.
type LenderProduct struct {
	LenderName      string  `json:"lenderName"`
	ProductName     string  `json:"productName"`
	InterestRateMin float64 `json:"interestRateMin"`
	InterestRateMax float64 `json:"interestRateMax"`
	MaxLTVPercent   float64 `json:"maxLtvPercent"`
	Status          string  `json:"status"`
}

// Active reports whether the product is currently offered.
func (p LenderProduct) Active() bool {
	return p.Status == "active"
}

// EligibleProduct is a LenderProduct the applicant qualifies for, with the
// maximum loan derived for the vehicle's market value.
type EligibleProduct struct {
	LenderProduct
	MaxLoanAmount int64 `json:"maxLoanAmount"`
}

// MaxLoanFor derives the maximum loan for a vehicle value, truncated to an
// integer currency unit.
func (p LenderProduct) MaxLoanFor(marketValue int64) int64 {
	return int64(float64(marketValue) * p.MaxLTVPercent / 100)
}
