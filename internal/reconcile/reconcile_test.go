// internal/reconcile/reconcile_test.go
package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestReconciler() *Reconciler {
	return NewReconciler(config.PolicyConfig{
		AmountBand:   config.AmountBand{Lower: 50000, Upper: 2500000},
		EstimatedLTV: 0.70,
	}, logger.Nop())
}

func vehicleWithFinancer(financer string, value int64) models.VehicleRecord {
	v := models.VehicleRecord{
		RegistrationNumber: "RJ14AB1234",
		Make:               "Maruti Suzuki",
		Model:              "Swift",
		MarketValue:        value,
	}
	if financer != "" {
		v.FinancerName = &financer
	}
	return v
}

func payloadWith(accounts ...models.CreditAccountRecord) *models.BureauPayload {
	return &models.BureauPayload{BureauScore: 720, Accounts: accounts}
}

// ==========================
// Classification Tests
// ==========================

func TestCandidates_ConfirmedAutoLoanByTypeCode(t *testing.T) {
	r := createTestReconciler()

	// Type code "1" confirms the family even when no name or amount rule fires.
	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode:  "1",
		LenderName:       "Some Unrelated Lender",
		SanctionedAmount: 9000000, // outside the amount band
	})

	got := r.Candidates(payload, vehicleWithFinancer("Canara Bank", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, models.ClassConfirmedAutoLoan, got[0].Classification)
	assert.Equal(t, "Auto Loan", got[0].AccountTypeDesc)
	assert.NotEmpty(t, got[0].MatchReason)
	assert.False(t, got[0].Estimated)
}

func TestCandidates_VehicleFamilyCodes(t *testing.T) {
	r := createTestReconciler()
	for _, code := range []string{"13", "17", "32", "59", "60"} {
		payload := payloadWith(models.CreditAccountRecord{
			AccountTypeCode: code, LenderName: "X", SanctionedAmount: 9000000,
		})
		got := r.Candidates(payload, vehicleWithFinancer("", 500000))
		require.Len(t, got, 1, "code %s", code)
		assert.Equal(t, models.ClassConfirmedAutoLoan, got[0].Classification, "code %s", code)
	}
}

func TestCandidates_LenderNameKeyword(t *testing.T) {
	r := createTestReconciler()
	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode:  "5", // personal loan, not vehicle family
		LenderName:       "Shriram Automall Vehicle Finance",
		SanctionedAmount: 9000000,
	})

	got := r.Candidates(payload, vehicleWithFinancer("", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, models.ClassLenderNameMatch, got[0].Classification)
}

func TestCandidates_LenderNameOverlapsRegistryFinancer(t *testing.T) {
	r := createTestReconciler()
	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode:  "5",
		LenderName:       "Canara Limited",
		SanctionedAmount: 9000000,
	})

	got := r.Candidates(payload, vehicleWithFinancer("Canara Bank", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, models.ClassLenderNameMatch, got[0].Classification)
}

func TestCandidates_AmountRangeHeuristic(t *testing.T) {
	r := createTestReconciler()
	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode:  "5",
		LenderName:       "Plain Lender",
		SanctionedAmount: 400000,
	})

	got := r.Candidates(payload, vehicleWithFinancer("", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, models.ClassAmountRangeHeuristic, got[0].Classification)
}

func TestCandidates_MostSpecificRuleWinsButAllRecorded(t *testing.T) {
	r := createTestReconciler()
	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode:  "1",
		LenderName:       "Canara Auto Finance",
		SanctionedAmount: 400000,
	})

	got := r.Candidates(payload, vehicleWithFinancer("Canara Bank", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, models.ClassConfirmedAutoLoan, got[0].Classification)
	assert.Equal(t, []models.Classification{
		models.ClassConfirmedAutoLoan,
		models.ClassLenderNameMatch,
		models.ClassAmountRangeHeuristic,
	}, got[0].MatchedRules)
}

func TestCandidates_UnclassifiedExcluded(t *testing.T) {
	r := createTestReconciler()
	payload := payloadWith(
		models.CreditAccountRecord{AccountTypeCode: "10", LenderName: "Plain Card Issuer", SanctionedAmount: 9000000},
		models.CreditAccountRecord{AccountTypeCode: "1", LenderName: "HDFC Bank", SanctionedAmount: 450000},
	)

	got := r.Candidates(payload, vehicleWithFinancer("", 500000))
	require.Len(t, got, 1)
	assert.Equal(t, "HDFC Bank", got[0].LenderName)
}

func TestCandidates_UnclassifiedNeverCarriesMatchReason(t *testing.T) {
	r := createTestReconciler()
	decoded := r.classify(models.CreditAccountRecord{
		AccountTypeCode:  "10",
		LenderName:       "Plain Card Issuer",
		SanctionedAmount: 9000000,
	}, "")
	assert.Equal(t, models.ClassUnclassified, decoded.Classification)
	assert.Empty(t, decoded.MatchReason)
}

func TestCandidates_ZeroTradelinesSynthesizesOne(t *testing.T) {
	r := createTestReconciler()

	got := r.Candidates(payloadWith(), vehicleWithFinancer("Canara Bank", 500000))
	require.Len(t, got, 1)
	assert.True(t, got[0].Estimated)
	assert.Equal(t, "Canara Bank", got[0].LenderName)
	// Estimated sanctioned amount is the fixed LTV fraction of market value.
	assert.Equal(t, int64(350000), got[0].SanctionedAmount)
}

func TestCandidates_NilPayloadSynthesizes(t *testing.T) {
	r := createTestReconciler()

	got := r.Candidates(nil, vehicleWithFinancer("", 400000))
	require.Len(t, got, 1)
	assert.True(t, got[0].Estimated)
	assert.Equal(t, "Unknown Financer", got[0].LenderName)
	assert.Equal(t, int64(280000), got[0].SanctionedAmount)
}

func TestCandidates_ConfigurableAmountBand(t *testing.T) {
	r := NewReconciler(config.PolicyConfig{
		AmountBand:   config.AmountBand{Lower: 100, Upper: 200},
		EstimatedLTV: 0.70,
	}, logger.Nop())

	payload := payloadWith(models.CreditAccountRecord{
		AccountTypeCode: "5", LenderName: "Plain Lender", SanctionedAmount: 400000,
	})
	got := r.Candidates(payload, vehicleWithFinancer("", 500000))
	require.Len(t, got, 1)
	assert.True(t, got[0].Estimated) // narrow band excluded the real account
}

// ==========================
// Financer Match Tests
// ==========================

func TestMatchFinancer_SubstringContainment(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Canara Auto Finance"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	match := r.MatchFinancer(candidates, "Canara Bank")
	assert.True(t, match.HasMatch)
	require.NotNil(t, match.Account)
	assert.Equal(t, "Canara Auto Finance", match.Account.LenderName)
	assert.Equal(t, "financer-name-overlap", match.Rule)
}

func TestMatchFinancer_EitherDirectionContainment(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "HDFC"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	match := r.MatchFinancer(candidates, "HDFC Bank Limited")
	assert.True(t, match.HasMatch)
}

func TestMatchFinancer_GenericTokensDoNotMatch(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Axis Bank Finance"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	// Shares only "Bank" and "Finance" with the registry name.
	match := r.MatchFinancer(candidates, "Canara Bank Finance")
	assert.False(t, match.HasMatch)
	assert.Nil(t, match.Account)
}

func TestMatchFinancer_GenericContainmentDoesNotMatch(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Acme Finance Ltd Partners"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	// "Finance Ltd" is fully contained in the lender name but carries no
	// significant token, so containment alone must not select it.
	match := r.MatchFinancer(candidates, "Finance Ltd")
	assert.False(t, match.HasMatch)
	assert.Nil(t, match.Account)

	// A brand token inside the contained name still matches.
	match = r.MatchFinancer(candidates, "Acme Finance")
	assert.True(t, match.HasMatch)
}

func TestMatchFinancer_TieBreaksOnEarliestOpenDate(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Canara Auto Finance", OpenDate: "2021-06-01"},
			Classification: models.ClassConfirmedAutoLoan},
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Canara Auto Finance", OpenDate: "2018-02-15"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	match := r.MatchFinancer(candidates, "Canara Bank")
	require.True(t, match.HasMatch)
	assert.Equal(t, "2018-02-15", match.Account.OpenDate)
}

func TestMatchFinancer_NoFinancerNoMatch(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "HDFC Bank"},
			Classification: models.ClassConfirmedAutoLoan},
	}

	match := r.MatchFinancer(candidates, "")
	assert.False(t, match.HasMatch)
}

func TestMatchFinancer_HasMatchIffRuleSelected(t *testing.T) {
	r := createTestReconciler()
	candidates := []models.DecodedAccountRecord{
		{CreditAccountRecord: models.CreditAccountRecord{LenderName: "Unrelated Lender"},
			Classification: models.ClassAmountRangeHeuristic},
	}

	match := r.MatchFinancer(candidates, "Canara Bank")
	assert.False(t, match.HasMatch)
	assert.Nil(t, match.Account)
	assert.Empty(t, match.Rule)
}
