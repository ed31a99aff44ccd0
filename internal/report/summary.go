// internal/report/summary.go

// Package report renders the plain-text application summary produced once
// the eligibility step has run. The summary is a human-readable document,
// not a wire format; nothing parses it back.
package report

import (
	"fmt"
	"strings"

	"refi-pipeline/internal/codes"
	"refi-pipeline/internal/models"
)

// Input is everything the summary draws on.
type Input struct {
	Profile       models.ApplicantProfile
	Vehicle       *models.VehicleRecord
	Candidates    []models.DecodedAccountRecord
	Match         *models.FinancerMatch
	Chosen        *models.DecodedAccountRecord
	Eligible      []models.EligibleProduct
	ApplicationID string
}

// Generate builds the summary document. Every field that was not obtained
// live carries its provenance tier inline.
func Generate(in Input) string {
	var b strings.Builder

	b.WriteString("REFINANCE APPLICATION SUMMARY\n")
	b.WriteString(strings.Repeat("=", 29) + "\n")
	fmt.Fprintf(&b, "Application: %s\n\n", in.ApplicationID)

	writeApplicant(&b, in.Profile)
	writeVehicle(&b, in.Vehicle)
	writeScore(&b, in.Profile)
	writeReconciliation(&b, in)
	writeEnquiries(&b, in.Profile.BureauPayload)
	writeEligibility(&b, in.Eligible)

	return b.String()
}

func writeApplicant(b *strings.Builder, p models.ApplicantProfile) {
	b.WriteString("Applicant\n---------\n")
	fmt.Fprintf(b, "Name:       %s%s\n", p.LegalName, tierNote(p, models.FieldLegalName))
	fmt.Fprintf(b, "Mobile:     %s\n", p.Mobile)
	fmt.Fprintf(b, "PAN:        %s\n", maskPAN(p.PAN))
	if p.DateOfBirth != "" {
		fmt.Fprintf(b, "DOB:        %s%s\n", p.DateOfBirth, tierNote(p, models.FieldDateOfBirth))
	}
	if p.GenderCode != "" {
		fmt.Fprintf(b, "Gender:     %s\n", codes.Resolve(codes.Gender, p.GenderCode))
	}
	fmt.Fprintf(b, "Income:     %.0f/month\n", p.MonthlyIncome)
	fmt.Fprintf(b, "Employment: %s\n\n", p.EmploymentType)
}

func writeVehicle(b *strings.Builder, v *models.VehicleRecord) {
	if v == nil {
		return
	}
	b.WriteString("Vehicle\n-------\n")
	fmt.Fprintf(b, "Registration: %s\n", v.RegistrationNumber)
	fmt.Fprintf(b, "Vehicle:      %s %s, %s", v.Make, v.Model, v.FuelType)
	if t, ok := v.Tiers[models.VehicleFieldRegistry]; ok && t != models.TierLive {
		fmt.Fprintf(b, " [%s]", t)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "Market value: %d", v.MarketValue)
	if t, ok := v.Tiers[models.VehicleFieldMarketValue]; ok && t != models.TierLive {
		fmt.Fprintf(b, " [%s]", t)
	}
	b.WriteString("\n")
	if f := v.Financer(); f != "" {
		fmt.Fprintf(b, "Financer:     %s\n", f)
	}
	b.WriteString("\n")
}

func writeScore(b *strings.Builder, p models.ApplicantProfile) {
	b.WriteString("Credit score\n------------\n")
	fmt.Fprintf(b, "Score: %d (%s)%s\n\n", p.CreditScore, scoreCategory(p.CreditScore), tierNote(p, models.FieldCreditScore))
}

func writeReconciliation(b *strings.Builder, in Input) {
	b.WriteString("Loan accounts\n-------------\n")
	if in.Match != nil {
		if in.Match.HasMatch {
			fmt.Fprintf(b, "Registry financer %q matched tradeline from %s.\n",
				in.Match.RegistryFinancer, in.Match.Account.LenderName)
		} else if in.Match.RegistryFinancer != "" {
			fmt.Fprintf(b, "Registry financer %q: no matching tradeline found.\n", in.Match.RegistryFinancer)
		}
	}
	for i, c := range in.Candidates {
		marker := " "
		if in.Chosen != nil && sameAccount(*in.Chosen, c) {
			marker = "*"
		}
		fmt.Fprintf(b, "%s %d. %s, %s, %s", marker, i+1, c.LenderName, c.AccountTypeDesc, c.AccountStatusDesc)
		if c.Estimated {
			b.WriteString(" (estimated)")
		}
		b.WriteString("\n")
		fmt.Fprintf(b, "      sanctioned %d, balance %d, opened %s\n", c.SanctionedAmount, c.CurrentBalance, c.OpenDate)
		if c.MatchReason != "" {
			fmt.Fprintf(b, "      basis: %s\n", c.MatchReason)
		}
	}
	b.WriteString("\n")
}

func writeEnquiries(b *strings.Builder, payload *models.BureauPayload) {
	if payload == nil || len(payload.Enquiries) == 0 {
		return
	}
	b.WriteString("Recent enquiries\n----------------\n")
	for _, e := range payload.Enquiries {
		fmt.Fprintf(b, "%s  %-24s %d\n", e.EnquiryDate, codes.Resolve(codes.EnquiryReason, e.EnquiryReasonCode), e.Amount)
	}
	b.WriteString("\n")
}

func writeEligibility(b *strings.Builder, eligible []models.EligibleProduct) {
	b.WriteString("Eligible products\n-----------------\n")
	if len(eligible) == 0 {
		b.WriteString("No products matched the current profile.\n")
		return
	}
	for _, p := range eligible {
		fmt.Fprintf(b, "%s / %s: up to %d at %.2f-%.2f%%\n",
			p.LenderName, p.ProductName, p.MaxLoanAmount, p.InterestRateMin, p.InterestRateMax)
	}
}

func scoreCategory(score int) string {
	switch {
	case score >= 750:
		return "excellent"
	case score >= 700:
		return "good"
	case score >= 650:
		return "fair"
	default:
		return "below average"
	}
}

func tierNote(p models.ApplicantProfile, field string) string {
	if t, ok := p.FieldTiers[field]; ok && t != models.TierLive {
		return fmt.Sprintf(" [%s]", t)
	}
	return ""
}

func maskPAN(pan string) string {
	if len(pan) != 10 {
		return pan
	}
	return pan[:2] + "XXXXX" + pan[7:]
}

func sameAccount(a, b models.DecodedAccountRecord) bool {
	return a.LenderName == b.LenderName && a.OpenDate == b.OpenDate && a.SanctionedAmount == b.SanctionedAmount
}
