// internal/connectors/policy/service.go
package policy

import (
	"context"
	"time"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/common/metrics"
	"refi-pipeline/internal/models"
)

const connectorName = "policy"

// Service evaluates lender eligibility: a live policy call whose result is
// used as-is, or a looser fallback over the locally cached catalogue
// filtered only to active products.
type Service struct {
	evaluate  EvaluateAPI
	snapshots *cache.SnapshotStore
	logger    logger.Logger
}

func NewService(evaluate EvaluateAPI, snapshots *cache.SnapshotStore, log logger.Logger) *Service {
	return &Service{
		evaluate:  evaluate,
		snapshots: snapshots,
		logger:    log.WithFields(map[string]interface{}{"connector": connectorName}),
	}
}

// Match returns the eligible-product set for the applicant attributes and
// the vehicle's market value. It never returns an error: an empty set is a
// valid outcome and fallback failures degrade to it.
func (s *Service) Match(ctx context.Context, req EvaluateRequest, marketValue int64) *Result {
	resp, err := s.evaluate.Evaluate(ctx, req)
	if err == nil {
		s.refreshCatalogue(ctx, resp.EligibleProducts)
		return &Result{
			Products: derive(resp.EligibleProducts, marketValue),
			Source: models.DataSource{
				Step:       "eligibility",
				Tier:       models.TierLive,
				RecordedAt: time.Now().UTC(),
			},
		}
	}

	cause := string(errors.CodeOf(err))
	if cause == "" {
		cause = "unclassified"
	}
	s.logger.Warn("policy evaluation degraded", map[string]interface{}{"cause": cause})
	metrics.ConnectorFallbacks.WithLabelValues(connectorName, cause).Inc()

	return s.fallback(ctx, marketValue, cause)
}

// fallback filters the cached catalogue by status only. This is deliberately
// looser than the live policy: showing any currently active product beats
// showing none.
func (s *Service) fallback(ctx context.Context, marketValue int64, cause string) *Result {
	source := models.DataSource{
		Step:             "eligibility",
		Tier:             models.TierCached,
		DegradationCause: cause,
		RecordedAt:       time.Now().UTC(),
	}

	if s.snapshots == nil {
		source.DegradationCause = cause + "; no catalogue store"
		return &Result{Source: source}
	}

	doc, err := loadCatalogue(ctx, s.snapshots)
	if err != nil {
		s.logger.Warn("fallback catalogue unusable", map[string]interface{}{"error": err.Error()})
		source.DegradationCause = cause + "; catalogue unusable"
		return &Result{Source: source}
	}

	var active []models.LenderProduct
	for _, p := range doc.Products {
		if p.Active() {
			active = append(active, p)
		}
	}
	return &Result{Products: derive(active, marketValue), Source: source}
}

// refreshCatalogue merges live products into the cached catalogue. Best
// effort; a snapshot failure never disturbs the live result.
func (s *Service) refreshCatalogue(ctx context.Context, products []models.LenderProduct) {
	if s.snapshots == nil || len(products) == 0 {
		return
	}

	doc, err := loadCatalogue(ctx, s.snapshots)
	if err != nil {
		doc = &CatalogueDocument{}
	}

	index := make(map[string]int, len(doc.Products))
	for i, p := range doc.Products {
		index[p.LenderName+"|"+p.ProductName] = i
	}
	for _, p := range products {
		if p.Status == "" {
			p.Status = "active"
		}
		if i, ok := index[p.LenderName+"|"+p.ProductName]; ok {
			doc.Products[i] = p
		} else {
			doc.Products = append(doc.Products, p)
		}
	}

	if err := storeCatalogue(ctx, s.snapshots, doc); err != nil {
		s.logger.Warn("catalogue refresh failed", map[string]interface{}{"error": err.Error()})
	}
}

// derive computes the maximum loan per product for the vehicle value,
// truncated to an integer currency unit.
func derive(products []models.LenderProduct, marketValue int64) []models.EligibleProduct {
	out := make([]models.EligibleProduct, 0, len(products))
	for _, p := range products {
		out = append(out, models.EligibleProduct{
			LenderProduct: p,
			MaxLoanAmount: p.MaxLoanFor(marketValue),
		})
	}
	return out
}
