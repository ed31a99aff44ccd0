// internal/models/vehicle.go
package models

// VehicleRecord is the decoded registry + valuation view of the applicant's
// vehicle. FinancerName is the registry-stated hypothecation, nullable when
// the vehicle carries no active loan in the registry record.
type VehicleRecord struct {
	RegistrationNumber string          `json:"registrationNumber"`
	Make               string          `json:"make"`
	Model              string          `json:"model"`
	Year               int             `json:"year"`
	FuelType           string          `json:"fuelType"`
	Color              string          `json:"color"`
	OwnerName          string          `json:"ownerName"`
	FinancerName       *string         `json:"financerName,omitempty"`
	MarketValue        int64           `json:"marketValue"`
	Tiers              map[string]Tier `json:"tiers"`
	Source             DataSource      `json:"source"`
}

// Tier-tag keys for VehicleRecord fields.
const (
	VehicleFieldRegistry    = "registry"
	VehicleFieldMarketValue = "marketValue"
)

// Financer returns the registry financer name, or empty when absent.
func (v VehicleRecord) Financer() string {
	if v.FinancerName == nil {
		return ""
	}
	return *v.FinancerName
}
