// internal/connectors/identity/models.go
package identity

import (
	"fmt"

	"refi-pipeline/internal/models"
)

// VerifyRequest is the identity-verification call input.
type VerifyRequest struct {
	PAN    string `json:"pan"`
	Mobile string `json:"mobile,omitempty"`
}

// VerifyResponse is the identity-verification call output.
type VerifyResponse struct {
	MatchFound  bool   `json:"matchFound"`
	LegalName   string `json:"legalName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	GenderCode  string `json:"genderCode"`
}

// ValidateShape rejects bodies that decoded but cannot carry a positive
// match, such as error pages re-encoded as empty JSON objects.
func (r *VerifyResponse) ValidateShape() error {
	if r.MatchFound && r.LegalName == "" && r.FirstName == "" {
		return fmt.Errorf("matchFound without any identity fields")
	}
	return nil
}

// Name returns the verified legal name, assembling it from first/last when
// the service omits the combined form.
func (r *VerifyResponse) Name() string {
	if r.LegalName != "" {
		return r.LegalName
	}
	return r.FirstName + " " + r.LastName
}

// ReportRequest is the credit-report retrieval input.
type ReportRequest struct {
	PAN         string `json:"pan"`
	LegalName   string `json:"legalName"`
	DateOfBirth string `json:"dateOfBirth"`
	Mobile      string `json:"mobile,omitempty"`
}

// ReportResponse is the credit-report retrieval output.
type ReportResponse struct {
	BureauScore    int                          `json:"bureauScore"`
	RawAccountList []models.CreditAccountRecord `json:"rawAccountList"`
	RawEnquiryList []models.EnquiryRecord       `json:"rawEnquiryList"`
}

// ValidateShape enforces the score contract of [300, 900].
func (r *ReportResponse) ValidateShape() error {
	if r.BureauScore < 300 || r.BureauScore > 900 {
		return fmt.Errorf("bureauScore %d outside contract bounds [300,900]", r.BureauScore)
	}
	return nil
}

// Enrichment is the connector's contribution to the applicant profile.
type Enrichment struct {
	LegalName   string
	DateOfBirth string
	GenderCode  string
	CreditScore int
	Payload     *models.BureauPayload
	Tiers       map[string]models.Tier
	Source      models.DataSource
}

// Snapshot is the cached form of a successful live acquisition.
type Snapshot struct {
	LegalName   string                `json:"legalName"`
	DateOfBirth string                `json:"dateOfBirth"`
	GenderCode  string                `json:"genderCode"`
	CreditScore int                   `json:"creditScore"`
	Payload     *models.BureauPayload `json:"payload,omitempty"`
}
