// internal/connectors/vehicle/models.go
package vehicle

import (
	"fmt"

	"refi-pipeline/internal/models"
)

// RegistryRequest is the vehicle-registry lookup input.
type RegistryRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
}

// RegistryResponse is the vehicle-registry lookup output.
type RegistryResponse struct {
	Found             bool   `json:"found"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	YearOfManufacture int    `json:"yearOfManufacture"`
	FuelType          string `json:"fuelType"`
	Color             string `json:"color"`
	OwnerName         string `json:"ownerName"`
	FinancerName      string `json:"financerName"`
	RegistrationDate  string `json:"registrationDate"`
}

// ValidateShape rejects decodable bodies that lack the fields the pipeline
// keys valuation on.
func (r *RegistryResponse) ValidateShape() error {
	if r.Found && (r.Make == "" || r.Model == "") {
		return fmt.Errorf("registry record without make/model")
	}
	return nil
}

// ValuationRequest keys a market-value lookup on decoded vehicle attributes.
type ValuationRequest struct {
	Make              string `json:"make"`
	Model             string `json:"model"`
	YearOfManufacture int    `json:"yearOfManufacture"`
	FuelType          string `json:"fuelType"`
	City              string `json:"city,omitempty"`
}

// ValuationResponse is the valuation output.
type ValuationResponse struct {
	MarketValue int64 `json:"marketValue"`
}

// ValidateShape rejects zero or negative valuations.
func (r *ValuationResponse) ValidateShape() error {
	if r.MarketValue <= 0 {
		return fmt.Errorf("marketValue %d is not a usable valuation", r.MarketValue)
	}
	return nil
}

// Snapshot is the cached form of a successful live lookup.
type Snapshot struct {
	Record models.VehicleRecord `json:"record"`
}
