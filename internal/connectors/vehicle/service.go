// internal/connectors/vehicle/service.go
package vehicle

import (
	"context"
	"hash/fnv"
	"time"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/common/metrics"
	"refi-pipeline/internal/models"
)

const connectorName = "vehicle"

// Service acquires a vehicle record with tiered fallback: live registry +
// valuation, then cached snapshot, then full synthesis. A valuation failure
// behind a live registry hit degrades only the market value.
type Service struct {
	registry  RegistryAPI
	valuation ValuationAPI
	snapshots *cache.SnapshotStore
	cfg       *Config
	logger    logger.Logger
}

func NewService(registry RegistryAPI, valuation ValuationAPI, snapshots *cache.SnapshotStore, cfg *Config, log logger.Logger) *Service {
	return &Service{
		registry:  registry,
		valuation: valuation,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"connector": connectorName}),
	}
}

// Acquire returns a vehicle record for the registration number. ownerHint is
// the applicant name already on the profile, used as the synthesized owner
// when the registry is unreachable. The only error returned is the explicit
// registration-not-found field error.
func (s *Service) Acquire(ctx context.Context, regNo, ownerHint string) (*models.VehicleRecord, error) {
	reg, err := s.registry.Lookup(ctx, RegistryRequest{RegistrationNumber: regNo})
	switch {
	case err == nil && !reg.Found:
		return nil, errors.NewNotFoundError("registrationNumber", "vehicle registry", "registration not found")

	case err == nil:
		return s.withLiveRegistry(ctx, regNo, reg), nil

	default:
		cause := string(errors.CodeOf(err))
		if cause == "" {
			cause = "unclassified"
		}
		s.logger.Warn("registry lookup degraded", map[string]interface{}{
			"cause":              cause,
			"registrationNumber": regNo,
		})
		metrics.ConnectorFallbacks.WithLabelValues(connectorName, cause).Inc()
		return s.fallback(ctx, regNo, ownerHint, cause), nil
	}
}

func (s *Service) withLiveRegistry(ctx context.Context, regNo string, reg *RegistryResponse) *models.VehicleRecord {
	rec := &models.VehicleRecord{
		RegistrationNumber: regNo,
		Make:               reg.Make,
		Model:              reg.Model,
		Year:               reg.YearOfManufacture,
		FuelType:           reg.FuelType,
		Color:              reg.Color,
		OwnerName:          reg.OwnerName,
		Tiers: map[string]models.Tier{
			models.VehicleFieldRegistry: models.TierLive,
		},
	}
	if reg.FinancerName != "" {
		f := reg.FinancerName
		rec.FinancerName = &f
	}

	val, err := s.valuation.Estimate(ctx, ValuationRequest{
		Make:              reg.Make,
		Model:             reg.Model,
		YearOfManufacture: reg.YearOfManufacture,
		FuelType:          reg.FuelType,
	})
	if err != nil {
		metrics.ConnectorFallbacks.WithLabelValues(connectorName, "valuation:"+string(errors.CodeOf(err))).Inc()
		rec.MarketValue = s.cfg.DefaultMarketValue
		rec.Tiers[models.VehicleFieldMarketValue] = models.TierSimulated
		rec.Source = models.DataSource{
			Step:             "vehicle",
			Tier:             models.TierLive,
			DegradationCause: "valuation unavailable, default market value substituted",
			RecordedAt:       time.Now().UTC(),
		}
		return rec
	}

	rec.MarketValue = val.MarketValue
	rec.Tiers[models.VehicleFieldMarketValue] = models.TierLive
	rec.Source = models.DataSource{
		Step:       "vehicle",
		Tier:       models.TierLive,
		RecordedAt: time.Now().UTC(),
	}

	if s.snapshots != nil {
		if err := s.snapshots.PutVehicle(ctx, regNo, Snapshot{Record: *rec}); err != nil {
			s.logger.Warn("vehicle snapshot write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return rec
}

func (s *Service) fallback(ctx context.Context, regNo, ownerHint, cause string) *models.VehicleRecord {
	if s.snapshots != nil {
		var snap Snapshot
		if err := s.snapshots.GetVehicle(ctx, regNo, &snap); err == nil {
			rec := snap.Record
			rec.Tiers = map[string]models.Tier{
				models.VehicleFieldRegistry:    models.TierCached,
				models.VehicleFieldMarketValue: models.TierCached,
			}
			rec.Source = models.DataSource{
				Step:             "vehicle",
				Tier:             models.TierCached,
				DegradationCause: cause,
				RecordedAt:       time.Now().UTC(),
			}
			return &rec
		}
	}
	return s.simulate(regNo, ownerHint, cause)
}

// simulate synthesizes a complete fallback record deterministically from the
// registration number, with the applicant's known name as the owner.
func (s *Service) simulate(regNo, ownerHint, cause string) *models.VehicleRecord {
	h := fnv.New64a()
	h.Write([]byte(regNo))
	sum := h.Sum64()

	entry := simCatalogue[sum%uint64(len(simCatalogue))]
	owner := ownerHint
	if owner == "" {
		owner = "Registered Owner"
	}

	return &models.VehicleRecord{
		RegistrationNumber: regNo,
		Make:               entry.make_,
		Model:              entry.model,
		Year:               2014 + int(sum%10),
		FuelType:           entry.fuel,
		Color:              simColors[(sum/7)%uint64(len(simColors))],
		OwnerName:          owner,
		MarketValue:        s.cfg.DefaultMarketValue,
		Tiers: map[string]models.Tier{
			models.VehicleFieldRegistry:    models.TierSimulated,
			models.VehicleFieldMarketValue: models.TierSimulated,
		},
		Source: models.DataSource{
			Step:             "vehicle",
			Tier:             models.TierSimulated,
			DegradationCause: cause,
			RecordedAt:       time.Now().UTC(),
		},
	}
}

type simVehicle struct {
	make_ string
	model string
	fuel  string
}

var simCatalogue = []simVehicle{
	{"Maruti Suzuki", "Swift", "Petrol"},
	{"Hyundai", "i20", "Petrol"},
	{"Tata", "Nexon", "Diesel"},
	{"Mahindra", "XUV300", "Diesel"},
	{"Honda", "City", "Petrol"},
	{"Toyota", "Innova", "Diesel"},
	{"Kia", "Seltos", "Petrol"},
	{"Maruti Suzuki", "Baleno", "CNG"},
}

var simColors = []string{"White", "Silver", "Grey", "Red", "Blue", "Black"}
