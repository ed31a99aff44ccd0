// internal/pipeline/render.go
package pipeline

import (
	"fmt"
	"strings"

	"refi-pipeline/internal/codes"
	"refi-pipeline/internal/models"
)

// StepView is the rendered, applicant-facing text for a completed step.
type StepView string

// PresentationStrategy controls how much of the accumulated record each
// completed step shows. The pipeline core is identical under every
// strategy; only the rendering density differs.
type PresentationStrategy interface {
	RenderStep(s *Session, step Step, source models.DataSource) StepView
}

// FullPresentation shows the acquired fields of each step, with provenance
// annotations for anything not obtained live.
type FullPresentation struct{}

func (FullPresentation) RenderStep(s *Session, step Step, source models.DataSource) StepView {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", step)
	if source.Tier != models.TierLive {
		fmt.Fprintf(&b, " (%s", source.Tier)
		if source.DegradationCause != "" {
			fmt.Fprintf(&b, ": %s", source.DegradationCause)
		}
		b.WriteString(")")
	}
	b.WriteString("\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	switch step {
	case StepMobile:
		fmt.Fprintf(&b, "  Mobile: %s\n", s.Profile.Mobile)
	case StepIdentity:
		fmt.Fprintf(&b, "  Name: %s\n", s.Profile.LegalName)
		if s.Profile.DateOfBirth != "" {
			fmt.Fprintf(&b, "  Date of birth: %s\n", s.Profile.DateOfBirth)
		}
		if s.Profile.GenderCode != "" {
			fmt.Fprintf(&b, "  Gender: %s\n", codes.Resolve(codes.Gender, s.Profile.GenderCode))
		}
		fmt.Fprintf(&b, "  Credit score: %d\n", s.Profile.CreditScore)
	case StepScoreReview:
		fmt.Fprintf(&b, "  Monthly income: %.0f\n", s.Profile.MonthlyIncome)
		fmt.Fprintf(&b, "  Employment: %s\n", s.Profile.EmploymentType)
	case StepVehicleRegistry:
		if s.Vehicle != nil {
			fmt.Fprintf(&b, "  Vehicle: %s %s (%s)\n", s.Vehicle.Make, s.Vehicle.Model, s.Vehicle.RegistrationNumber)
			fmt.Fprintf(&b, "  Market value: %d\n", s.Vehicle.MarketValue)
			if f := s.Vehicle.Financer(); f != "" {
				fmt.Fprintf(&b, "  Financer on record: %s\n", f)
			}
		}
		fmt.Fprintf(&b, "  Candidate accounts: %d\n", len(s.Candidates))
		if s.Match != nil && s.Match.HasMatch {
			fmt.Fprintf(&b, "  Pre-selected: %s (%s)\n", s.Match.Account.LenderName, s.Match.Account.AccountTypeDesc)
		}
	case StepAccountSelection:
		if s.Chosen != nil {
			fmt.Fprintf(&b, "  Confirmed account: %s (%s)\n", s.Chosen.LenderName, s.Chosen.AccountTypeDesc)
		}
		if s.Eligible != nil {
			fmt.Fprintf(&b, "  Eligible products: %d\n", len(s.Eligible.Products))
		}
	}
	return StepView(b.String())
}

// CompactPresentation reduces each step to a single status line.
type CompactPresentation struct{}

func (CompactPresentation) RenderStep(s *Session, step Step, source models.DataSource) StepView {
	return StepView(fmt.Sprintf("[%s] ok (%s)\n", step, source.Tier))
}
