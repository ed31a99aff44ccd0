// internal/reconcile/matcher.go
package reconcile

import (
	"strings"

	"refi-pipeline/internal/models"
)

// genericTokens are name fragments too common across lenders to count as
// evidence of identity. Without this guard, every "Bank" matches every other.
var genericTokens = map[string]bool{
	"bank":      true,
	"finance":   true,
	"financial": true,
	"services":  true,
	"limited":   true,
	"ltd":       true,
	"india":     true,
	"indian":    true,
	"company":   true,
	"corp":      true,
	"the":       true,
	"and":       true,
}

// MatchFinancer selects the classified candidate whose lender name most
// closely overlaps the registry financer name. Overlap is case-insensitive
// containment in either direction, or shared significant name tokens; ties
// break on earliest account-open date. HasMatch is true only when an overlap
// was actually found; otherwise the applicant chooses manually from the full
// candidate list.
func (r *Reconciler) MatchFinancer(candidates []models.DecodedAccountRecord, registryFinancer string) models.FinancerMatch {
	match := models.FinancerMatch{RegistryFinancer: registryFinancer}
	if registryFinancer == "" || len(candidates) == 0 {
		return match
	}

	bestScore := 0
	var best *models.DecodedAccountRecord
	for i := range candidates {
		score := nameOverlap(candidates[i].LenderName, registryFinancer)
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && opensEarlier(candidates[i], best)) {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best != nil {
		match.Account = best
		match.HasMatch = true
		match.Rule = "financer-name-overlap"
	}
	return match
}

// nameOverlap scores how strongly two lender names refer to the same entity.
// Full containment in either direction scores the contained length, but only
// when the contained name carries at least one significant token; a string
// of purely generic words ("Finance Ltd") never matches by containment.
// Otherwise the score is the total length of shared significant tokens
// (length >= 4 and not generic). Zero means no usable overlap.
func nameOverlap(lender, financer string) int {
	a := strings.ToLower(strings.TrimSpace(lender))
	b := strings.ToLower(strings.TrimSpace(financer))
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) && hasSignificantToken(b) {
		return len(b)
	}
	if strings.Contains(b, a) && hasSignificantToken(a) {
		return len(a)
	}

	shared := 0
	bTokens := map[string]bool{}
	for _, tok := range strings.Fields(b) {
		bTokens[tok] = true
	}
	for _, tok := range strings.Fields(a) {
		if len(tok) >= 4 && !genericTokens[tok] && bTokens[tok] {
			shared += len(tok)
		}
	}
	return shared
}

// hasSignificantToken reports whether the name contains at least one token
// that identifies a lender rather than a generic industry word.
func hasSignificantToken(name string) bool {
	for _, tok := range strings.Fields(name) {
		if len(tok) >= 4 && !genericTokens[tok] {
			return true
		}
	}
	return false
}

func opensEarlier(candidate models.DecodedAccountRecord, current *models.DecodedAccountRecord) bool {
	if current == nil {
		return true
	}
	if candidate.OpenDate == "" {
		return false
	}
	if current.OpenDate == "" {
		return true
	}
	// Open dates are ISO formatted, so string order is date order.
	return candidate.OpenDate < current.OpenDate
}
