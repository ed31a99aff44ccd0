// internal/pipeline/orchestrator.go

// Package pipeline drives the onboarding state machine. The orchestrator
// owns the accumulating applicant record; connectors absorb their own
// failures, so the only errors surfacing from here are field-level
// validation errors and invalid-transition guards.
package pipeline

import (
	"context"
	"strings"
	"time"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/common/metrics"
	"refi-pipeline/internal/common/observability"
	"refi-pipeline/internal/connectors/identity"
	"refi-pipeline/internal/connectors/persist"
	"refi-pipeline/internal/connectors/policy"
	"refi-pipeline/internal/connectors/vehicle"
	"refi-pipeline/internal/models"
	"refi-pipeline/internal/reconcile"
	"refi-pipeline/internal/report"
)

// StepResult is what a completed submission hands back to the presentation
// layer: where the machine now stands and where the step's data came from.
type StepResult struct {
	Step     Step
	State    Step
	Source   models.DataSource
	View     StepView
	Eligible []models.EligibleProduct
}

type Orchestrator struct {
	identity   *identity.Service
	vehicle    *vehicle.Service
	policy     *policy.Service
	saver      persist.Saver
	reconciler *reconcile.Reconciler
	snapshots  *cache.SnapshotStore
	obs        *observability.Observability
	renderer   PresentationStrategy
	logger     logger.Logger
}

// Dependencies collects the orchestrator's collaborators.
type Dependencies struct {
	Identity   *identity.Service
	Vehicle    *vehicle.Service
	Policy     *policy.Service
	Saver      persist.Saver
	Reconciler *reconcile.Reconciler
	Snapshots  *cache.SnapshotStore
	Obs        *observability.Observability
	Renderer   PresentationStrategy
	Logger     logger.Logger
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = FullPresentation{}
	}
	return &Orchestrator{
		identity:   deps.Identity,
		vehicle:    deps.Vehicle,
		policy:     deps.Policy,
		saver:      deps.Saver,
		reconciler: deps.Reconciler,
		snapshots:  deps.Snapshots,
		obs:        deps.Obs,
		renderer:   renderer,
		logger:     deps.Logger.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// SubmitMobile runs the first step. The mobile number comes from the
// applicant directly, so it is live by definition.
func (o *Orchestrator) SubmitMobile(ctx context.Context, s *Session, mobile string) (*StepResult, error) {
	if err := o.guard(s, StepMobile); err != nil {
		return nil, err
	}
	if err := ValidateMobile(mobile); err != nil {
		metrics.StepsRejected.WithLabelValues(string(StepMobile), errors.FieldOf(err)).Inc()
		return nil, err
	}
	mobile = strings.TrimSpace(mobile)
	started := time.Now()
	s.beginAttempt(StepMobile)

	source := models.DataSource{Step: string(StepMobile), Tier: models.TierLive, RecordedAt: time.Now().UTC()}

	if o.snapshots != nil {
		var previous models.ApplicantProfile
		if err := o.snapshots.GetPartialProfile(ctx, mobile, &previous); err == nil {
			o.logger.Info("returning applicant", map[string]interface{}{
				"sessionId":       s.ID,
				"previousSession": previous.SessionID,
			})
		}
	}

	s.mu.Lock()
	s.Profile = s.Profile.Apply(models.ProfileDelta{
		Source: source,
		Mobile: mobile,
		Tiers:  map[string]models.Tier{models.FieldMobile: models.TierLive},
	})
	s.state = next(StepMobile)
	profile := s.Profile
	s.mu.Unlock()

	o.storePartialProfile(ctx, profile)
	return o.complete(ctx, s, StepMobile, source, started), nil
}

// SubmitIdentity verifies the PAN and pulls the credit report through the
// tiered identity connector.
func (o *Orchestrator) SubmitIdentity(ctx context.Context, s *Session, pan string) (*StepResult, error) {
	if err := o.guard(s, StepIdentity); err != nil {
		return nil, err
	}
	if err := ValidatePAN(pan); err != nil {
		metrics.StepsRejected.WithLabelValues(string(StepIdentity), errors.FieldOf(err)).Inc()
		return nil, err
	}
	pan = strings.ToUpper(strings.TrimSpace(pan))
	started := time.Now()
	seq := s.beginAttempt(StepIdentity)

	s.mu.Lock()
	mobile := s.Profile.Mobile
	s.mu.Unlock()

	enrichment, err := o.identity.Acquire(ctx, pan, mobile)
	if err != nil {
		// Explicit PAN-not-found: field error, the step does not advance.
		metrics.StepsRejected.WithLabelValues(string(StepIdentity), errors.FieldOf(err)).Inc()
		return nil, err
	}

	s.mu.Lock()
	if !s.stillCurrent(StepIdentity, seq) {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues(string(StepIdentity)).Inc()
		return nil, errors.NewStaleResponseError(string(StepIdentity))
	}
	tiers := map[string]models.Tier{models.FieldPAN: models.TierLive}
	for k, v := range enrichment.Tiers {
		tiers[k] = v
	}
	s.Profile = s.Profile.Apply(models.ProfileDelta{
		Source:        enrichment.Source,
		PAN:           pan,
		LegalName:     enrichment.LegalName,
		DateOfBirth:   enrichment.DateOfBirth,
		GenderCode:    enrichment.GenderCode,
		CreditScore:   enrichment.CreditScore,
		BureauPayload: enrichment.Payload,
		Tiers:         tiers,
	})
	s.state = next(StepIdentity)
	s.mu.Unlock()

	return o.complete(ctx, s, StepIdentity, enrichment.Source, started), nil
}

// SubmitScoreReview records the applicant's declared income and employment
// type alongside the already-acquired score.
func (o *Orchestrator) SubmitScoreReview(ctx context.Context, s *Session, income float64, employmentType string) (*StepResult, error) {
	if err := o.guard(s, StepScoreReview); err != nil {
		return nil, err
	}
	if err := ValidateScoreReview(income, employmentType); err != nil {
		metrics.StepsRejected.WithLabelValues(string(StepScoreReview), errors.FieldOf(err)).Inc()
		return nil, err
	}
	started := time.Now()
	s.beginAttempt(StepScoreReview)

	source := models.DataSource{Step: string(StepScoreReview), Tier: models.TierLive, RecordedAt: time.Now().UTC()}

	s.mu.Lock()
	s.Profile = s.Profile.Apply(models.ProfileDelta{
		Source:         source,
		MonthlyIncome:  income,
		EmploymentType: employmentType,
		Tiers: map[string]models.Tier{
			models.FieldMonthlyIncome:  models.TierLive,
			models.FieldEmploymentType: models.TierLive,
		},
	})
	s.state = next(StepScoreReview)
	profile := s.Profile
	s.mu.Unlock()

	o.storePartialProfile(ctx, profile)
	return o.complete(ctx, s, StepScoreReview, source, started), nil
}

// SubmitVehicle looks up the registration, then reconciles bureau tradelines
// against the registry financer to produce the selection candidates.
func (o *Orchestrator) SubmitVehicle(ctx context.Context, s *Session, regNo string) (*StepResult, error) {
	if err := o.guard(s, StepVehicleRegistry); err != nil {
		return nil, err
	}
	if err := ValidateRegistration(regNo); err != nil {
		metrics.StepsRejected.WithLabelValues(string(StepVehicleRegistry), errors.FieldOf(err)).Inc()
		return nil, err
	}
	regNo = strings.ToUpper(strings.TrimSpace(regNo))
	started := time.Now()
	seq := s.beginAttempt(StepVehicleRegistry)

	s.mu.Lock()
	ownerHint := s.Profile.LegalName
	s.mu.Unlock()

	rec, err := o.vehicle.Acquire(ctx, regNo, ownerHint)
	if err != nil {
		metrics.StepsRejected.WithLabelValues(string(StepVehicleRegistry), errors.FieldOf(err)).Inc()
		return nil, err
	}

	s.mu.Lock()
	if !s.stillCurrent(StepVehicleRegistry, seq) {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues(string(StepVehicleRegistry)).Inc()
		return nil, errors.NewStaleResponseError(string(StepVehicleRegistry))
	}
	s.Vehicle = rec
	s.Profile.DataSources = append(s.Profile.DataSources, rec.Source)
	s.Candidates = o.reconciler.Candidates(s.Profile.BureauPayload, *rec)
	match := o.reconciler.MatchFinancer(s.Candidates, rec.Financer())
	s.Match = &match
	s.state = next(StepVehicleRegistry)
	s.mu.Unlock()

	return o.complete(ctx, s, StepVehicleRegistry, rec.Source, started), nil
}

// SelectAccount confirms the chosen tradeline, runs the eligibility matcher,
// persists the application (best effort) and produces the summary document.
// A negative index accepts the reconciler's pre-selected match. The choice
// is immutable once confirmed.
func (o *Orchestrator) SelectAccount(ctx context.Context, s *Session, index int) (*StepResult, error) {
	if err := o.guard(s, StepAccountSelection); err != nil {
		return nil, err
	}
	started := time.Now()
	s.beginAttempt(StepAccountSelection)

	s.mu.Lock()
	if s.Chosen != nil {
		s.mu.Unlock()
		return nil, errors.NewInvalidStateError(string(StepAccountSelection), "account already confirmed")
	}
	var chosen *models.DecodedAccountRecord
	switch {
	case index < 0 && s.Match != nil && s.Match.HasMatch:
		chosen = s.Match.Account
	case index >= 0 && index < len(s.Candidates):
		chosen = &s.Candidates[index]
	default:
		s.mu.Unlock()
		metrics.StepsRejected.WithLabelValues(string(StepAccountSelection), "accountIndex").Inc()
		return nil, errors.NewValidationError("accountIndex", "selected account is not in the candidate list")
	}
	s.Chosen = chosen
	profile := s.Profile
	veh := *s.Vehicle
	s.mu.Unlock()

	result := o.policy.Match(ctx, policy.EvaluateRequest{
		CreditScore:    profile.CreditScore,
		FuelType:       veh.FuelType,
		EmploymentType: profile.EmploymentType,
		MonthlyIncome:  profile.MonthlyIncome,
		LoanPurpose:    "refinance",
		LoanAmount:     chosen.CurrentBalance,
	}, veh.MarketValue)

	s.mu.Lock()
	s.Eligible = result
	s.Profile.DataSources = append(s.Profile.DataSources, result.Source)
	s.state = next(StepAccountSelection)
	s.mu.Unlock()

	o.finalize(ctx, s)

	res := o.complete(ctx, s, StepAccountSelection, result.Source, started)
	res.Eligible = result.Products
	return res, nil
}

// finalize persists the application and builds the downloadable summary.
// Persistence failure never blocks the summary.
func (o *Orchestrator) finalize(ctx context.Context, s *Session) {
	s.mu.Lock()
	req := persist.SaveRequest{
		Profile:  s.Profile,
		Vehicle:  s.Vehicle,
		Match:    s.Match,
		Products: s.Eligible.Products,
	}
	s.mu.Unlock()

	appID := "unsaved"
	if o.saver != nil {
		id, err := o.saver.Save(ctx, req)
		appID = id
		if err != nil {
			o.logger.Warn("application save degraded", map[string]interface{}{
				"sessionId": s.ID,
				"error":     err.Error(),
			})
		}
	}

	s.mu.Lock()
	s.ApplicationID = appID
	s.SummaryDoc = report.Generate(report.Input{
		Profile:       s.Profile,
		Vehicle:       s.Vehicle,
		Candidates:    s.Candidates,
		Match:         s.Match,
		Chosen:        s.Chosen,
		Eligible:      s.Eligible.Products,
		ApplicationID: appID,
	})
	s.mu.Unlock()
}

func (o *Orchestrator) guard(s *Session, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != step {
		return errors.NewInvalidStateError(string(s.state), string(step))
	}
	return nil
}

func (o *Orchestrator) complete(ctx context.Context, s *Session, step Step, source models.DataSource, started time.Time) *StepResult {
	elapsed := time.Since(started)
	metrics.StepsCompleted.WithLabelValues(string(step), string(source.Tier)).Inc()
	metrics.StepDuration.WithLabelValues(string(step)).Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordStep(ctx, string(step), string(source.Tier), elapsed)
	}
	if source.DegradationCause != "" {
		o.logger.Warn("step completed degraded", map[string]interface{}{
			"sessionId": s.ID,
			"step":      string(step),
			"tier":      string(source.Tier),
			"cause":     source.DegradationCause,
		})
	} else {
		o.logger.Info("step completed", map[string]interface{}{
			"sessionId": s.ID,
			"step":      string(step),
			"tier":      string(source.Tier),
		})
	}

	return &StepResult{
		Step:   step,
		State:  s.State(),
		Source: source,
		View:   o.renderer.RenderStep(s, step, source),
	}
}

// storePartialProfile records the {mobile -> partial profile} snapshot.
// Best effort; a cache failure never disturbs the flow.
func (o *Orchestrator) storePartialProfile(ctx context.Context, profile models.ApplicantProfile) {
	if o.snapshots == nil || profile.Mobile == "" {
		return
	}
	if err := o.snapshots.PutPartialProfile(ctx, profile.Mobile, profile); err != nil {
		o.logger.Warn("partial profile snapshot failed", map[string]interface{}{"error": err.Error()})
	}
}
