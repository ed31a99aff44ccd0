// internal/models/credit.go
package models

// BureauPayload is the parsed but still coded view of a credit report.
// Parsing is fail-closed: absent sections decode to empty slices, never nil
// dereferences downstream.
type BureauPayload struct {
	BureauScore int                   `json:"bureauScore"`
	Accounts    []CreditAccountRecord `json:"accounts"`
	Enquiries   []EnquiryRecord       `json:"enquiries"`
}

// CreditAccountRecord is one bureau tradeline, immutable once parsed.
// Type and status remain bureau-coded here; decoding happens in the
// code-table layer.
type CreditAccountRecord struct {
	AccountTypeCode   string   `json:"accountTypeCode"`
	AccountStatusCode string   `json:"accountStatusCode"`
	LenderName        string   `json:"lenderName"`
	SanctionedAmount  int64    `json:"sanctionedAmount"`
	CurrentBalance    int64    `json:"currentBalance"`
	EMIAmount         int64    `json:"emiAmount"`
	OpenDate          string   `json:"openDate"`
	PaymentHistory    []string `json:"paymentHistory"`
}

// EnquiryRecord is one bureau enquiry row.
type EnquiryRecord struct {
	EnquiryDate       string `json:"enquiryDate"`
	EnquiryReasonCode string `json:"enquiryReasonCode"`
	Amount            int64  `json:"amount"`
}

// Classification tags for decoded tradelines, ordered most to least specific.
type Classification string

const (
	ClassConfirmedAutoLoan    Classification = "confirmed-auto-loan"
	ClassLenderNameMatch      Classification = "lender-name-match"
	ClassAmountRangeHeuristic Classification = "amount-range-heuristic"
	ClassUnclassified         Classification = "unclassified"
)

// DecodedAccountRecord is a tradeline with code-table descriptions resolved
// and the reconciler's classification attached. An unclassified record never
// carries a match reason.
type DecodedAccountRecord struct {
	CreditAccountRecord
	AccountTypeDesc   string           `json:"accountTypeDesc"`
	AccountStatusDesc string           `json:"accountStatusDesc"`
	Classification    Classification   `json:"classification"`
	MatchedRules      []Classification `json:"matchedRules,omitempty"`
	MatchReason       string           `json:"matchReason,omitempty"`
	Estimated         bool             `json:"estimated"`
}

// FinancerMatch pairs the registry financer with at most one tradeline.
// HasMatch is true iff a rule actually selected a record.
type FinancerMatch struct {
	RegistryFinancer string                `json:"registryFinancer"`
	Account          *DecodedAccountRecord `json:"account,omitempty"`
	HasMatch         bool                  `json:"hasMatch"`
	Rule             string                `json:"rule,omitempty"`
}
