// internal/connectors/identity/service.go
package identity

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/common/metrics"
	"refi-pipeline/internal/models"
)

const connectorName = "identity-bureau"

// Service acquires identity + credit enrichment with tiered fallback:
// live verification + report, then cached snapshot, then deterministic
// simulation from the PAN. An explicit no-match from the identity service
// is a field error, not a fallback trigger.
type Service struct {
	verify    VerifyAPI
	report    ReportAPI
	snapshots *cache.SnapshotStore
	logger    logger.Logger
	scoreRand func() int
}

func NewService(verify VerifyAPI, report ReportAPI, snapshots *cache.SnapshotStore, log logger.Logger) *Service {
	return &Service{
		verify:    verify,
		report:    report,
		snapshots: snapshots,
		logger:    log.WithFields(map[string]interface{}{"connector": connectorName}),
		scoreRand: func() int { return 300 + rand.Intn(601) },
	}
}

// Acquire returns an enrichment for the PAN. The only error it returns is a
// field-level one (PAN explicitly not found); every transport or parse
// failure is absorbed into a degraded enrichment.
func (s *Service) Acquire(ctx context.Context, pan, mobile string) (*Enrichment, error) {
	verified, err := s.verify.Verify(ctx, VerifyRequest{PAN: pan, Mobile: mobile})
	switch {
	case err == nil && !verified.MatchFound:
		return nil, errors.NewNotFoundError("pan", "identity verification", "PAN not found")

	case err == nil:
		return s.withLiveIdentity(ctx, pan, mobile, verified), nil

	case errors.IsFallbackTrigger(err):
		s.logger.Warn("identity verification degraded", map[string]interface{}{
			"cause": errors.CodeOf(err),
			"pan":   maskPAN(pan),
		})
		metrics.ConnectorFallbacks.WithLabelValues(connectorName, string(errors.CodeOf(err))).Inc()
		return s.fallback(ctx, pan, string(errors.CodeOf(err))), nil

	default:
		// Unknown failure class: absorb like a transport error.
		metrics.ConnectorFallbacks.WithLabelValues(connectorName, "unclassified").Inc()
		return s.fallback(ctx, pan, "unclassified"), nil
	}
}

// withLiveIdentity attempts the credit report behind a positive identity
// match. Report failure keeps the verified fields live and simulates only
// the score.
func (s *Service) withLiveIdentity(ctx context.Context, pan, mobile string, v *VerifyResponse) *Enrichment {
	report, err := s.report.Report(ctx, ReportRequest{
		PAN:         pan,
		LegalName:   v.Name(),
		DateOfBirth: v.DateOfBirth,
		Mobile:      mobile,
	})
	if err != nil {
		metrics.ConnectorFallbacks.WithLabelValues(connectorName, "report:"+string(errors.CodeOf(err))).Inc()
		e := &Enrichment{
			LegalName:   v.Name(),
			DateOfBirth: v.DateOfBirth,
			GenderCode:  v.GenderCode,
			CreditScore: s.scoreRand(),
			Tiers: map[string]models.Tier{
				models.FieldLegalName:   models.TierLive,
				models.FieldDateOfBirth: models.TierLive,
				models.FieldGenderCode:  models.TierLive,
				models.FieldCreditScore: models.TierSimulated,
			},
			Source: models.DataSource{
				Step:             "identity",
				Tier:             models.TierLive,
				DegradationCause: "credit report unavailable, score simulated",
				RecordedAt:       time.Now().UTC(),
			},
		}
		return e
	}

	payload := &models.BureauPayload{
		BureauScore: report.BureauScore,
		Accounts:    report.RawAccountList,
		Enquiries:   report.RawEnquiryList,
	}
	e := &Enrichment{
		LegalName:   v.Name(),
		DateOfBirth: v.DateOfBirth,
		GenderCode:  v.GenderCode,
		CreditScore: report.BureauScore,
		Payload:     payload,
		Tiers: map[string]models.Tier{
			models.FieldLegalName:   models.TierLive,
			models.FieldDateOfBirth: models.TierLive,
			models.FieldGenderCode:  models.TierLive,
			models.FieldCreditScore: models.TierLive,
		},
		Source: models.DataSource{
			Step:       "identity",
			Tier:       models.TierLive,
			RecordedAt: time.Now().UTC(),
		},
	}

	// Snapshot for future fallback fidelity. Best effort.
	if s.snapshots != nil {
		snap := Snapshot{
			LegalName:   e.LegalName,
			DateOfBirth: e.DateOfBirth,
			GenderCode:  e.GenderCode,
			CreditScore: e.CreditScore,
			Payload:     payload,
		}
		if err := s.snapshots.PutIdentity(ctx, pan, snap); err != nil {
			s.logger.Warn("identity snapshot write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return e
}

// fallback drops to the cached snapshot, then to deterministic simulation.
func (s *Service) fallback(ctx context.Context, pan, cause string) *Enrichment {
	if s.snapshots != nil {
		var snap Snapshot
		if err := s.snapshots.GetIdentity(ctx, pan, &snap); err == nil {
			return &Enrichment{
				LegalName:   snap.LegalName,
				DateOfBirth: snap.DateOfBirth,
				GenderCode:  snap.GenderCode,
				CreditScore: snap.CreditScore,
				Payload:     snap.Payload,
				Tiers: map[string]models.Tier{
					models.FieldLegalName:   models.TierCached,
					models.FieldDateOfBirth: models.TierCached,
					models.FieldGenderCode:  models.TierCached,
					models.FieldCreditScore: models.TierCached,
				},
				Source: models.DataSource{
					Step:             "identity",
					Tier:             models.TierCached,
					DegradationCause: cause,
					RecordedAt:       time.Now().UTC(),
				},
			}
		}
	}
	return s.simulate(pan, cause)
}

// simulate synthesizes a full enrichment deterministically from the PAN, so
// the same unreachable PAN always yields the same profile.
func (s *Service) simulate(pan, cause string) *Enrichment {
	h := panHash(pan)
	first := simFirstNames[h%uint64(len(simFirstNames))]
	last := simLastNames[(h/7)%uint64(len(simLastNames))]
	score := 300 + int(h%601)
	gender := fmt.Sprintf("%d", 1+h%2)
	year := 1960 + int(h%40)
	month := 1 + int((h/11)%12)
	day := 1 + int((h/13)%28)

	return &Enrichment{
		LegalName:   first + " " + last,
		DateOfBirth: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		GenderCode:  gender,
		CreditScore: score,
		Tiers: map[string]models.Tier{
			models.FieldLegalName:   models.TierSimulated,
			models.FieldDateOfBirth: models.TierSimulated,
			models.FieldGenderCode:  models.TierSimulated,
			models.FieldCreditScore: models.TierSimulated,
		},
		Source: models.DataSource{
			Step:             "identity",
			Tier:             models.TierSimulated,
			DegradationCause: cause,
			RecordedAt:       time.Now().UTC(),
		},
	}
}

func panHash(pan string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(pan))
	return h.Sum64()
}

func maskPAN(pan string) string {
	if len(pan) < 4 {
		return "****"
	}
	return "******" + pan[len(pan)-4:]
}

var simFirstNames = []string{
	"Rahul", "Priya", "Amit", "Sneha", "Vikram", "Anita",
	"Suresh", "Kavita", "Rajesh", "Meera", "Arjun", "Pooja",
}

var simLastNames = []string{
	"Sharma", "Verma", "Patel", "Reddy", "Iyer", "Singh",
	"Gupta", "Nair", "Joshi", "Kulkarni", "Das", "Mehta",
}
