// internal/connectors/identity/service_test.go
package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refi-pipeline/internal/common/cache"
	pipeerrors "refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeVerify struct {
	resp *VerifyResponse
	err  error
}

func (f *fakeVerify) Verify(_ context.Context, _ VerifyRequest) (*VerifyResponse, error) {
	return f.resp, f.err
}

type fakeReport struct {
	resp *ReportResponse
	err  error
}

func (f *fakeReport) Report(_ context.Context, _ ReportRequest) (*ReportResponse, error) {
	return f.resp, f.err
}

func setupSnapshots(t *testing.T) *cache.SnapshotStore {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewSnapshotStoreWithClient(client, time.Hour)
}

func matchedVerify() *fakeVerify {
	return &fakeVerify{resp: &VerifyResponse{
		MatchFound:  true,
		LegalName:   "Ramesh Kumar",
		DateOfBirth: "1985-04-12",
		GenderCode:  "2",
	}}
}

func goodReport() *fakeReport {
	return &fakeReport{resp: &ReportResponse{
		BureauScore: 742,
		RawAccountList: []models.CreditAccountRecord{
			{AccountTypeCode: "1", LenderName: "HDFC Bank", SanctionedAmount: 450000},
		},
	}}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAcquire_LiveTier(t *testing.T) {
	snapshots := setupSnapshots(t)
	svc := NewService(matchedVerify(), goodReport(), snapshots, logger.Nop())

	e, err := svc.Acquire(context.Background(), "ABCDE1234F", "9876543210")
	require.NoError(t, err)

	assert.Equal(t, "Ramesh Kumar", e.LegalName)
	assert.Equal(t, 742, e.CreditScore)
	assert.NotNil(t, e.Payload)
	assert.Equal(t, models.TierLive, e.Tiers[models.FieldLegalName])
	assert.Equal(t, models.TierLive, e.Tiers[models.FieldCreditScore])
	assert.Equal(t, models.TierLive, e.Source.Tier)
	assert.Empty(t, e.Source.DegradationCause)

	// Live success writes a snapshot for future fallback reads.
	var snap Snapshot
	require.NoError(t, snapshots.GetIdentity(context.Background(), "ABCDE1234F", &snap))
	assert.Equal(t, "Ramesh Kumar", snap.LegalName)
	assert.Equal(t, 742, snap.CreditScore)
}

func TestAcquire_PANNotFoundIsFieldError(t *testing.T) {
	verify := &fakeVerify{resp: &VerifyResponse{MatchFound: false}}
	svc := NewService(verify, goodReport(), setupSnapshots(t), logger.Nop())

	e, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	assert.Nil(t, e)
	require.Error(t, err)
	assert.True(t, pipeerrors.IsFieldError(err))
	assert.Equal(t, "pan", pipeerrors.FieldOf(err))
}

func TestAcquire_PartialLive_ReportFailureSimulatesScoreOnly(t *testing.T) {
	report := &fakeReport{err: pipeerrors.NewTransportError("credit-report", errors.New("connection refused"))}
	svc := NewService(matchedVerify(), report, setupSnapshots(t), logger.Nop())

	e, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)

	assert.Equal(t, "Ramesh Kumar", e.LegalName)
	assert.Equal(t, models.TierLive, e.Tiers[models.FieldLegalName])
	assert.Equal(t, models.TierLive, e.Tiers[models.FieldDateOfBirth])
	assert.Equal(t, models.TierSimulated, e.Tiers[models.FieldCreditScore])
	assert.Nil(t, e.Payload)
	assert.GreaterOrEqual(t, e.CreditScore, 300)
	assert.LessOrEqual(t, e.CreditScore, 900)
}

func TestAcquire_CachedTier(t *testing.T) {
	snapshots := setupSnapshots(t)
	require.NoError(t, snapshots.PutIdentity(context.Background(), "ABCDE1234F", Snapshot{
		LegalName:   "Ramesh Kumar",
		DateOfBirth: "1985-04-12",
		GenderCode:  "2",
		CreditScore: 710,
	}))

	verify := &fakeVerify{err: pipeerrors.NewTransportError("identity-verification", errors.New("timeout"))}
	svc := NewService(verify, goodReport(), snapshots, logger.Nop())

	e, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)

	assert.Equal(t, "Ramesh Kumar", e.LegalName)
	assert.Equal(t, 710, e.CreditScore)
	assert.Equal(t, models.TierCached, e.Source.Tier)
	assert.Equal(t, models.TierCached, e.Tiers[models.FieldCreditScore])
	assert.NotEmpty(t, e.Source.DegradationCause)
}

func TestAcquire_SimulatedTier_Deterministic(t *testing.T) {
	verify := &fakeVerify{err: pipeerrors.NewTransportError("identity-verification", errors.New("unreachable"))}
	svc := NewService(verify, goodReport(), setupSnapshots(t), logger.Nop())

	first, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)
	second, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)

	assert.Equal(t, first.LegalName, second.LegalName)
	assert.Equal(t, first.CreditScore, second.CreditScore)
	assert.Equal(t, first.DateOfBirth, second.DateOfBirth)
	assert.Equal(t, models.TierSimulated, first.Source.Tier)
	assert.Equal(t, models.TierSimulated, first.Tiers[models.FieldLegalName])
	assert.GreaterOrEqual(t, first.CreditScore, 300)
	assert.LessOrEqual(t, first.CreditScore, 900)
	assert.NotEmpty(t, first.LegalName)
}

func TestAcquire_SimulatedTier_DifferentPANsDiffer(t *testing.T) {
	verify := &fakeVerify{err: pipeerrors.NewTransportError("identity-verification", errors.New("unreachable"))}
	svc := NewService(verify, goodReport(), setupSnapshots(t), logger.Nop())

	a, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)
	b, err := svc.Acquire(context.Background(), "ZYXWV9876K", "")
	require.NoError(t, err)

	// Not a hard guarantee per PAN pair, but these two differ under FNV-1a.
	assert.NotEqual(t, a.CreditScore, b.CreditScore)
}

func TestAcquire_MalformedResponseTriggersFallback(t *testing.T) {
	verify := &fakeVerify{err: pipeerrors.NewMalformedResponseError("identity-verification", "body is not a JSON document")}
	svc := NewService(verify, goodReport(), setupSnapshots(t), logger.Nop())

	e, err := svc.Acquire(context.Background(), "ABCDE1234F", "")
	require.NoError(t, err)
	assert.Equal(t, models.TierSimulated, e.Source.Tier)
	assert.Equal(t, "MALFORMED_RESPONSE", e.Source.DegradationCause)
}
