// internal/pipeline/step.go
package pipeline

import (
	"regexp"
	"strings"

	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/models"
)

// Step is one state of the linear onboarding machine.
type Step string

const (
	StepMobile           Step = "Mobile"
	StepIdentity         Step = "Identity"
	StepScoreReview      Step = "ScoreReview"
	StepVehicleRegistry  Step = "VehicleRegistry"
	StepAccountSelection Step = "AccountSelection"
	StepSummary          Step = "Summary"
)

// stepOrder fixes the single forward transition per state.
var stepOrder = []Step{
	StepMobile,
	StepIdentity,
	StepScoreReview,
	StepVehicleRegistry,
	StepAccountSelection,
	StepSummary,
}

// next returns the state following s, or s itself at the terminal state.
func next(s Step) Step {
	for i, st := range stepOrder {
		if st == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return s
}

var (
	// India-style mobile: 10 digits, leading 6-9.
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	// PAN: 5 letters, 4 digits, 1 letter.
	panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// ValidateMobile checks the mobile-step input.
func ValidateMobile(mobile string) error {
	if !mobilePattern.MatchString(strings.TrimSpace(mobile)) {
		return errors.NewValidationError("mobile", "must be a 10-digit mobile number starting with 6-9")
	}
	return nil
}

// ValidatePAN checks the identity-step input.
func ValidatePAN(pan string) error {
	if !panPattern.MatchString(strings.ToUpper(strings.TrimSpace(pan))) {
		return errors.NewValidationError("pan", "must match the 10-character PAN pattern (AAAAA9999A)")
	}
	return nil
}

// ValidateRegistration checks the vehicle-step input.
func ValidateRegistration(regNo string) error {
	if strings.TrimSpace(regNo) == "" {
		return errors.NewValidationError("registrationNumber", "registration number is required")
	}
	return nil
}

// ValidateScoreReview checks the income and employment inputs. A declared
// income of exactly zero is a validation failure, never a fallback case.
func ValidateScoreReview(income float64, employmentType string) error {
	if income <= 0 {
		return errors.NewValidationError("monthlyIncome", "monthly income must be a positive number")
	}
	if !models.ValidEmploymentType(employmentType) {
		return errors.NewValidationError("employmentType", "employment type must be one of: "+strings.Join(models.EmploymentTypes, ", "))
	}
	return nil
}
