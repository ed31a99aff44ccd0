// internal/models/profile.go
package models

import "time"

// Tier marks the provenance of a verified field.
type Tier string

const (
	TierLive      Tier = "live"
	TierCached    Tier = "cached"
	TierSimulated Tier = "simulated"
)

// DataSource describes where a step's data came from and, if degraded,
// why the live source was bypassed.
type DataSource struct {
	Step             string    `json:"step"`
	Tier             Tier      `json:"tier"`
	DegradationCause string    `json:"degradationCause,omitempty"`
	RecordedAt       time.Time `json:"recordedAt"`
}

// ApplicantProfile accumulates across pipeline steps. Fields are added
// monotonically; a populated field is never overwritten and its tier tag
// is set exactly once, when the field is first populated.
type ApplicantProfile struct {
	SessionID      string          `json:"sessionId"`
	Mobile         string          `json:"mobile"`
	PAN            string          `json:"pan"`
	LegalName      string          `json:"legalName"`
	DateOfBirth    string          `json:"dateOfBirth"`
	GenderCode     string          `json:"genderCode"`
	MonthlyIncome  float64         `json:"monthlyIncome"`
	EmploymentType string          `json:"employmentType"`
	CreditScore    int             `json:"creditScore"`
	BureauPayload  *BureauPayload  `json:"bureauPayload,omitempty"`
	FieldTiers     map[string]Tier `json:"fieldTiers"`
	DataSources    []DataSource    `json:"dataSources"`
}

// Field names used as tier-tag keys.
const (
	FieldMobile         = "mobile"
	FieldPAN            = "pan"
	FieldLegalName      = "legalName"
	FieldDateOfBirth    = "dateOfBirth"
	FieldGenderCode     = "genderCode"
	FieldMonthlyIncome  = "monthlyIncome"
	FieldEmploymentType = "employmentType"
	FieldCreditScore    = "creditScore"
)

// NewApplicantProfile creates an empty profile for a pipeline session.
func NewApplicantProfile(sessionID string) ApplicantProfile {
	return ApplicantProfile{
		SessionID:  sessionID,
		FieldTiers: map[string]Tier{},
	}
}

// TierOf returns the tier tag for a field, or empty if the field has not
// been populated yet.
func (p ApplicantProfile) TierOf(field string) Tier {
	return p.FieldTiers[field]
}

// tagged reports whether a field already carries a tier tag.
func (p ApplicantProfile) tagged(field string) bool {
	_, ok := p.FieldTiers[field]
	return ok
}

// ProfileDelta is the outcome of one pipeline step: the fields it verified
// and the tier each came from. Deltas are folded into a fresh profile value
// so each step's contribution stays auditable.
type ProfileDelta struct {
	Source         DataSource
	Mobile         string
	PAN            string
	LegalName      string
	DateOfBirth    string
	GenderCode     string
	MonthlyIncome  float64
	EmploymentType string
	CreditScore    int
	BureauPayload  *BureauPayload
	Tiers          map[string]Tier
}

// Apply folds a step delta into a new profile value. Already-populated
// fields keep their value and tier; only unset fields are written.
func (p ApplicantProfile) Apply(d ProfileDelta) ApplicantProfile {
	next := p
	next.FieldTiers = make(map[string]Tier, len(p.FieldTiers)+len(d.Tiers))
	for k, v := range p.FieldTiers {
		next.FieldTiers[k] = v
	}
	next.DataSources = append(append([]DataSource{}, p.DataSources...), d.Source)

	set := func(field string, apply func()) {
		tier, proposed := d.Tiers[field]
		if !proposed || next.tagged(field) {
			return
		}
		apply()
		next.FieldTiers[field] = tier
	}

	set(FieldMobile, func() { next.Mobile = d.Mobile })
	set(FieldPAN, func() { next.PAN = d.PAN })
	set(FieldLegalName, func() { next.LegalName = d.LegalName })
	set(FieldDateOfBirth, func() { next.DateOfBirth = d.DateOfBirth })
	set(FieldGenderCode, func() { next.GenderCode = d.GenderCode })
	set(FieldMonthlyIncome, func() { next.MonthlyIncome = d.MonthlyIncome })
	set(FieldEmploymentType, func() { next.EmploymentType = d.EmploymentType })
	set(FieldCreditScore, func() { next.CreditScore = d.CreditScore })

	if next.BureauPayload == nil && d.BureauPayload != nil {
		next.BureauPayload = d.BureauPayload
	}
	return next
}

// EmploymentTypes is the fixed enumeration accepted at the score-review step.
var EmploymentTypes = []string{"salaried", "self-employed", "professional", "business"}

// ValidEmploymentType reports membership in the fixed enumeration.
func ValidEmploymentType(v string) bool {
	for _, t := range EmploymentTypes {
		if t == v {
			return true
		}
	}
	return false
}
