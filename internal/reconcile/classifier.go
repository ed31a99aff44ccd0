// internal/reconcile/classifier.go

// Package reconcile classifies bureau tradelines as vehicle-loan-like and
// reconciles them against the registry-stated financer. Everything here is
// fail-closed: missing payload sections decode to empty candidate lists and
// unknown codes classify to unclassified, never to an error.
package reconcile

import (
	"fmt"
	"strings"

	"refi-pipeline/internal/codes"
	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/models"
)

// vehicleFinanceKeywords are lender-name substrings that mark a tradeline as
// vehicle financing when the bureau's type code does not.
var vehicleFinanceKeywords = []string{
	"auto",
	"vehicle",
	"motor",
	"wheeler",
}

// Reconciler applies the classification rules and the financer matcher.
type Reconciler struct {
	band         config.AmountBand
	estimatedLTV float64
	logger       logger.Logger
}

func NewReconciler(policy config.PolicyConfig, log logger.Logger) *Reconciler {
	return &Reconciler{
		band:         policy.AmountBand,
		estimatedLTV: policy.EstimatedLTV,
		logger:       log.WithFields(map[string]interface{}{"component": "reconciler"}),
	}
}

// Candidates decodes and classifies every tradeline in the payload against
// the vehicle record, returning only the classified ones. When nothing
// classifies, exactly one synthetic candidate is manufactured from the
// registry financer and the vehicle's market value.
func (r *Reconciler) Candidates(payload *models.BureauPayload, vehicle models.VehicleRecord) []models.DecodedAccountRecord {
	var out []models.DecodedAccountRecord
	if payload != nil {
		for _, acct := range payload.Accounts {
			decoded := r.classify(acct, vehicle.Financer())
			if decoded.Classification == models.ClassUnclassified {
				continue
			}
			out = append(out, decoded)
		}
	}

	if len(out) == 0 {
		out = append(out, r.synthesize(vehicle))
	}
	return out
}

// classify evaluates the rules most-specific first. Every rule that matches
// is recorded; Classification keeps the most specific hit.
func (r *Reconciler) classify(acct models.CreditAccountRecord, registryFinancer string) models.DecodedAccountRecord {
	decoded := models.DecodedAccountRecord{
		CreditAccountRecord: acct,
		AccountTypeDesc:     codes.Resolve(codes.AccountType, acct.AccountTypeCode),
		AccountStatusDesc:   codes.Resolve(codes.AccountStatus, acct.AccountStatusCode),
		Classification:      models.ClassUnclassified,
	}

	reasons := map[models.Classification]string{}

	if codes.IsVehicleLoanType(acct.AccountTypeCode) {
		decoded.MatchedRules = append(decoded.MatchedRules, models.ClassConfirmedAutoLoan)
		reasons[models.ClassConfirmedAutoLoan] = fmt.Sprintf("account type decodes to %q", decoded.AccountTypeDesc)
	}
	if reason := r.lenderNameReason(acct.LenderName, registryFinancer); reason != "" {
		decoded.MatchedRules = append(decoded.MatchedRules, models.ClassLenderNameMatch)
		reasons[models.ClassLenderNameMatch] = reason
	}
	if r.band.Contains(acct.SanctionedAmount) || r.band.Contains(acct.CurrentBalance) {
		decoded.MatchedRules = append(decoded.MatchedRules, models.ClassAmountRangeHeuristic)
		reasons[models.ClassAmountRangeHeuristic] = fmt.Sprintf("amount within vehicle-loan band [%d, %d]", r.band.Lower, r.band.Upper)
	}

	if len(decoded.MatchedRules) > 0 {
		decoded.Classification = decoded.MatchedRules[0]
		decoded.MatchReason = reasons[decoded.Classification]
	}
	return decoded
}

func (r *Reconciler) lenderNameReason(lender, registryFinancer string) string {
	lowered := strings.ToLower(lender)
	for _, kw := range vehicleFinanceKeywords {
		if strings.Contains(lowered, kw) {
			return fmt.Sprintf("lender name contains vehicle-finance keyword %q", kw)
		}
	}
	if registryFinancer != "" && nameOverlap(lender, registryFinancer) > 0 {
		return fmt.Sprintf("lender name overlaps registry financer %q", registryFinancer)
	}
	return ""
}

// synthesize manufactures the single fallback candidate from the registry
// financer and an estimated sanctioned amount at the assumed LTV.
func (r *Reconciler) synthesize(vehicle models.VehicleRecord) models.DecodedAccountRecord {
	lender := vehicle.Financer()
	if lender == "" {
		lender = "Unknown Financer"
	}
	estimated := int64(float64(vehicle.MarketValue) * r.estimatedLTV)

	r.logger.Info("no tradeline classified, synthesizing candidate", map[string]interface{}{
		"lender":          lender,
		"estimatedAmount": estimated,
		"vehicleValue":    vehicle.MarketValue,
	})

	return models.DecodedAccountRecord{
		CreditAccountRecord: models.CreditAccountRecord{
			AccountTypeCode:  "1",
			LenderName:       lender,
			SanctionedAmount: estimated,
			CurrentBalance:   estimated,
		},
		AccountTypeDesc: codes.Resolve(codes.AccountType, "1"),
		Classification:  models.ClassLenderNameMatch,
		MatchReason:     "synthesized from registry financer",
		Estimated:       true,
	}
}
