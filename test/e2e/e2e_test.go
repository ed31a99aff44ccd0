// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/connectors/identity"
	"refi-pipeline/internal/connectors/policy"
	"refi-pipeline/internal/connectors/vehicle"
	"refi-pipeline/internal/models"
	"refi-pipeline/internal/pipeline"
	"refi-pipeline/internal/reconcile"
)

// ==========================
// Test Helper Functions
// ==========================

func snapshotStore(t *testing.T) *cache.SnapshotStore {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return cache.NewSnapshotStoreWithClient(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
}

func policyConfig() config.PolicyConfig {
	return config.PolicyConfig{
		AmountBand:         config.AmountBand{Lower: 50000, Upper: 2500000},
		EstimatedLTV:       0.70,
		DefaultMarketValue: 350000,
	}
}

// deadEndpoint returns a base URL that refuses connections.
func deadEndpoint(t *testing.T) string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func jsonHandler(t *testing.T, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func newOrchestrator(t *testing.T, identityURL, vehicleURL, policyURL string) *pipeline.Orchestrator {
	o, _ := newOrchestratorWithStore(t, identityURL, vehicleURL, policyURL)
	return o
}

func newOrchestratorWithStore(t *testing.T, identityURL, vehicleURL, policyURL string) (*pipeline.Orchestrator, *cache.SnapshotStore) {
	log := logger.Nop()
	snapshots := snapshotStore(t)

	identityCfg := &identity.Config{
		VerifyURL:     identityURL + "/verify",
		ReportURL:     identityURL + "/report",
		VerifyTimeout: 2 * time.Second,
		ReportTimeout: 2 * time.Second,
	}
	vehicleCfg := &vehicle.Config{
		RegistryURL:        vehicleURL + "/registry",
		ValuationURL:       vehicleURL + "/valuation",
		RegistryTimeout:    2 * time.Second,
		ValuationTimeout:   2 * time.Second,
		DefaultMarketValue: 350000,
	}
	policyCfg := &policy.Config{
		EvaluateURL: policyURL + "/evaluate",
		Timeout:     2 * time.Second,
	}

	o := pipeline.NewOrchestrator(pipeline.Dependencies{
		Identity: identity.NewService(
			identity.NewVerifyClient(identityCfg),
			identity.NewReportClient(identityCfg),
			snapshots, log,
		),
		Vehicle: vehicle.NewService(
			vehicle.NewRegistryClient(vehicleCfg),
			vehicle.NewValuationClient(vehicleCfg),
			snapshots, vehicleCfg, log,
		),
		Policy: policy.NewService(
			policy.NewEvaluateClient(policyCfg),
			snapshots, log,
		),
		Reconciler: reconcile.NewReconciler(policyConfig(), log),
		Snapshots:  snapshots,
		Logger:     log,
	})
	return o, snapshots
}

// ==========================
// End-to-End Scenarios
// ==========================

// Every external dependency is down. The pipeline still walks an applicant
// from mobile number to summary on simulated data, with every simulated
// field tagged.
func TestFullPipeline_AllServicesUnreachable(t *testing.T) {
	dead := deadEndpoint(t)
	o := newOrchestrator(t, dead, dead, dead)
	s := pipeline.NewSession()
	ctx := context.Background()

	_, err := o.SubmitMobile(ctx, s, "9876543210")
	require.NoError(t, err)

	res, err := o.SubmitIdentity(ctx, s, "ABCDE1234F")
	require.NoError(t, err)
	assert.Equal(t, models.TierSimulated, res.Source.Tier)
	assert.NotEmpty(t, s.Profile.LegalName)
	assert.GreaterOrEqual(t, s.Profile.CreditScore, 300)
	assert.LessOrEqual(t, s.Profile.CreditScore, 900)

	_, err = o.SubmitScoreReview(ctx, s, 55000, "self-employed")
	require.NoError(t, err)

	res, err = o.SubmitVehicle(ctx, s, "RJ14AB1234")
	require.NoError(t, err)
	assert.Equal(t, models.TierSimulated, res.Source.Tier)
	require.NotNil(t, s.Vehicle)
	assert.Equal(t, int64(350000), s.Vehicle.MarketValue)
	require.NotEmpty(t, s.Candidates)

	res, err = o.SelectAccount(ctx, s, 0)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StepSummary, s.State())
	// No live policy and no cached catalogue: empty set, not an error.
	assert.Empty(t, res.Eligible)
	assert.Contains(t, s.SummaryDoc, "[simulated]")
	assert.Contains(t, s.SummaryDoc, "No products matched")
}

// Services down but a product catalogue was cached by an earlier live run:
// eligibility falls back to it, keeps only active products, and derives the
// maximum loan from the defaulted market value.
func TestFullPipeline_UnreachableWithCachedCatalogue(t *testing.T) {
	dead := deadEndpoint(t)
	o, snapshots := newOrchestratorWithStore(t, dead, dead, dead)
	require.NoError(t, snapshots.PutCatalogue(context.Background(), []byte(`{
		"products": [
			{"lenderName": "HDFC Bank", "productName": "Auto Refi", "interestRateMin": 9.5, "interestRateMax": 11.0, "maxLtvPercent": 80, "status": "active"},
			{"lenderName": "Axis Bank", "productName": "Refi Classic", "interestRateMin": 10.0, "interestRateMax": 12.0, "maxLtvPercent": 85, "status": "inactive"}
		]
	}`)))

	s := pipeline.NewSession()
	ctx := context.Background()

	_, err := o.SubmitMobile(ctx, s, "9876543210")
	require.NoError(t, err)
	_, err = o.SubmitIdentity(ctx, s, "ABCDE1234F")
	require.NoError(t, err)
	_, err = o.SubmitScoreReview(ctx, s, 55000, "salaried")
	require.NoError(t, err)
	_, err = o.SubmitVehicle(ctx, s, "RJ14AB1234")
	require.NoError(t, err)

	res, err := o.SelectAccount(ctx, s, 0)
	require.NoError(t, err)
	require.Len(t, res.Eligible, 1)
	assert.Equal(t, "HDFC Bank", res.Eligible[0].LenderName)
	// 350000 (default market value) * 80 / 100.
	assert.Equal(t, int64(280000), res.Eligible[0].MaxLoanAmount)
	assert.Equal(t, models.TierCached, res.Source.Tier)
}

// Simulated acquisitions are deterministic: the same PAN and registration
// produce the same profile on every run.
func TestSimulatedTierIsDeterministic(t *testing.T) {
	dead := deadEndpoint(t)
	ctx := context.Background()

	run := func() (string, int, int64) {
		o := newOrchestrator(t, dead, dead, dead)
		s := pipeline.NewSession()
		_, err := o.SubmitMobile(ctx, s, "9876543210")
		require.NoError(t, err)
		_, err = o.SubmitIdentity(ctx, s, "ABCDE1234F")
		require.NoError(t, err)
		_, err = o.SubmitScoreReview(ctx, s, 55000, "salaried")
		require.NoError(t, err)
		_, err = o.SubmitVehicle(ctx, s, "RJ14AB1234")
		require.NoError(t, err)
		return s.Profile.LegalName, s.Profile.CreditScore, s.Vehicle.MarketValue
	}

	name1, score1, value1 := run()
	name2, score2, value2 := run()
	assert.Equal(t, name1, name2)
	assert.Equal(t, score1, score2)
	assert.Equal(t, value1, value2)
}

// All services healthy: live tiers throughout and the derived maximum loan
// follows the vehicle value.
func TestFullPipeline_AllServicesLive(t *testing.T) {
	identityMux := http.NewServeMux()
	identityMux.Handle("/verify", jsonHandler(t, map[string]interface{}{
		"matchFound":  true,
		"legalName":   "Ramesh Kumar",
		"dateOfBirth": "1985-04-12",
		"genderCode":  "2",
	}))
	identityMux.Handle("/report", jsonHandler(t, map[string]interface{}{
		"bureauScore": 742,
		"rawAccountList": []map[string]interface{}{
			{
				"accountTypeCode":   "1",
				"accountStatusCode": "11",
				"lenderName":        "Canara Bank",
				"sanctionedAmount":  450000,
				"currentBalance":    230000,
				"openDate":          "2022-06-15",
			},
		},
	}))
	identitySrv := httptest.NewServer(identityMux)
	t.Cleanup(identitySrv.Close)

	vehicleMux := http.NewServeMux()
	vehicleMux.Handle("/registry", jsonHandler(t, map[string]interface{}{
		"found":        true,
		"make":         "Maruti Suzuki",
		"model":        "Swift",
		"fuelType":     "petrol",
		"financerName": "Canara Auto Finance",
	}))
	vehicleMux.Handle("/valuation", jsonHandler(t, map[string]interface{}{"marketValue": 499999}))
	vehicleSrv := httptest.NewServer(vehicleMux)
	t.Cleanup(vehicleSrv.Close)

	policySrv := httptest.NewServer(jsonHandler(t, map[string]interface{}{
		"eligibleProducts": []map[string]interface{}{
			{
				"lenderName":      "HDFC Bank",
				"productName":     "Auto Refi",
				"interestRateMin": 9.5,
				"interestRateMax": 11.0,
				"maxLtvPercent":   66.67,
				"status":          "active",
			},
		},
	}))
	t.Cleanup(policySrv.Close)

	o := newOrchestrator(t, identitySrv.URL, vehicleSrv.URL, policySrv.URL)
	s := pipeline.NewSession()
	ctx := context.Background()

	_, err := o.SubmitMobile(ctx, s, "9876543210")
	require.NoError(t, err)

	res, err := o.SubmitIdentity(ctx, s, "ABCDE1234F")
	require.NoError(t, err)
	assert.Equal(t, models.TierLive, res.Source.Tier)
	assert.Equal(t, "Ramesh Kumar", s.Profile.LegalName)

	_, err = o.SubmitScoreReview(ctx, s, 65000, "salaried")
	require.NoError(t, err)

	res, err = o.SubmitVehicle(ctx, s, "RJ14AB1234")
	require.NoError(t, err)
	assert.Equal(t, models.TierLive, res.Source.Tier)
	assert.Equal(t, int64(499999), s.Vehicle.MarketValue)
	require.NotNil(t, s.Match)
	assert.True(t, s.Match.HasMatch)

	res, err = o.SelectAccount(ctx, s, -1)
	require.NoError(t, err)
	require.Len(t, res.Eligible, 1)
	// 499999 * 66.67 / 100, truncated.
	assert.Equal(t, int64(333349), res.Eligible[0].MaxLoanAmount)
	assert.NotContains(t, s.SummaryDoc, "[simulated]")
}

// A malformed upstream (HTML where JSON is expected) degrades exactly like
// an unreachable one.
func TestMalformedUpstreamTreatedAsDegraded(t *testing.T) {
	htmlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>503 Service Unavailable</body></html>"))
	}))
	t.Cleanup(htmlSrv.Close)
	dead := deadEndpoint(t)

	o := newOrchestrator(t, htmlSrv.URL, dead, dead)
	s := pipeline.NewSession()
	ctx := context.Background()

	_, err := o.SubmitMobile(ctx, s, "9876543210")
	require.NoError(t, err)

	res, err := o.SubmitIdentity(ctx, s, "ABCDE1234F")
	require.NoError(t, err)
	assert.Equal(t, models.TierSimulated, res.Source.Tier)
	assert.NotEmpty(t, res.Source.DegradationCause)
}
