package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/infrastructure/database/repository"
	"insafe-lab/pkg/logger"
)

type failingSource struct{ *RegistrySource }

func (failingSource) Lookup(context.Context, string) (*models.VerificationSignal, error) {
	return nil, errors.New("portal timeout")
}

func (failingSource) Refresh(context.Context) error { return errors.New("portal down") }

func newVerification(t *testing.T) (*VerificationService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	sources := []Verifier{
		NewCyberCrimePortalSource(),
		NewTelecomBlacklistSource(),
		NewRBIFraudSource(),
		NewCommunitySource(store.Reports()),
	}
	return NewVerificationService(sources, store.Scans(), time.Second, logger.NewNop()), store
}

func TestNormalizeIntelNumber(t *testing.T) {
	tests := map[string]string{
		"9876543210":        "+91-9876543210",
		"+91 98765 43210":   "+91-9876543210",
		"919876543210":      "+91-9876543210",
		"0987654321":        "+91-0987654321",
		"9123456789":        "+91-9123456789",
		"09876543210":       "+91-9876543210",
		"  12345 ":          "12345",
		"+1 (415) 555-0100": "+1 (415) 555-0100",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeIntelNumber(in), in)
	}
}

func TestVerification_RegistryMatches(t *testing.T) {
	svc, _ := newVerification(t)
	ctx := context.Background()

	tests := []struct {
		number     string
		risk       models.Verdict
		confidence int
		fraud      string
	}{
		{"9876543210", models.VerdictDangerous, 95, "Loan Fraud"},
		{"+91-4321098765", models.VerdictDangerous, 85, "Spam Calls"},
		{"91 1098765432", models.VerdictDangerous, 90, "Banking Fraud"},
		{"+91-9999999999", models.VerdictSafe, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			a, err := svc.Check(ctx, tt.number)
			require.NoError(t, err)
			assert.Equal(t, tt.risk, a.RiskLevel)
			assert.Equal(t, tt.confidence, a.Confidence)
			if tt.fraud == "" {
				assert.Empty(t, a.Sources)
				return
			}
			require.Len(t, a.Sources, 1)
			assert.Equal(t, tt.fraud, a.Sources[0].FraudType)
			assert.True(t, a.Sources[0].Verified)
		})
	}
}

func TestVerification_CommunityReports(t *testing.T) {
	svc, store := newVerification(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := store.Reports().Create(ctx, &models.Report{Type: models.ReportTypeFakeCall, Content: "Got a call from 98111 22233 asking for OTP"})
		require.NoError(t, err)
	}

	a, err := svc.Check(ctx, "+91-9811122233")
	require.NoError(t, err)
	require.Len(t, a.Sources, 1)
	assert.Equal(t, 70, a.Confidence)
	assert.Equal(t, models.VerdictSuspicious, a.RiskLevel)
	assert.Equal(t, "Community Reported", a.Sources[0].FraudType)
	assert.Equal(t, 2, a.Sources[0].ReportCount)
	assert.False(t, a.Sources[0].Verified)

	for i := 0; i < 5; i++ {
		_, err := store.Reports().Create(ctx, &models.Report{Type: models.ReportTypeFakeCall, Content: "9811122233"})
		require.NoError(t, err)
	}
	a, err = svc.Check(ctx, "9811122233")
	require.NoError(t, err)
	assert.Equal(t, 85, a.Confidence)
	assert.Equal(t, models.VerdictDangerous, a.RiskLevel)
}

func TestVerification_LookupPhoneRecordsScan(t *testing.T) {
	svc, store := newVerification(t)
	ctx := context.Background()

	a, err := svc.LookupPhone(ctx, "8765432109")
	require.NoError(t, err)
	assert.Equal(t, "+91-8765432109", a.PhoneNumber)

	scans, err := store.Scans().ListByType(ctx, models.ScanTypePhoneIntel, 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "+91-8765432109", scans[0].Content)
	assert.Equal(t, models.VerdictDangerous, scans[0].Verdict)
	assert.Equal(t, []string{"India Cyber Crime Portal: KBC Lottery Scam (890 reports)"}, scans[0].RiskFactors)

	_, err = svc.LookupPhone(ctx, "no digits")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestVerification_FailingSourceIsSkipped(t *testing.T) {
	sources := []Verifier{failingSource{NewRBIFraudSource()}, NewCyberCrimePortalSource()}
	svc := NewVerificationService(sources, nil, time.Second, logger.NewNop())

	a, err := svc.Check(context.Background(), "7654321098")
	require.NoError(t, err)
	assert.Equal(t, 95, a.Confidence)

	assert.Error(t, svc.Refresh(context.Background()))
}

func TestVerification_SignalAndStatus(t *testing.T) {
	svc, _ := newVerification(t)

	sig, sources := svc.Signal(context.Background(), "+91-6543210987")
	assert.True(t, sig.Available)
	assert.Equal(t, models.SignalVerification, sig.Kind)
	assert.Equal(t, 95, sig.Confidence)
	assert.Len(t, sources, 1)

	sig, _ = svc.Signal(context.Background(), "---")
	assert.False(t, sig.Available)

	require.NoError(t, svc.Refresh(context.Background()))
	st := svc.Status()
	assert.True(t, st.IsActive)
	assert.Equal(t, 4, st.SourcesCount)
	assert.Equal(t, 4, st.ActiveSources)
	require.Len(t, st.Sources, 4)
	assert.Equal(t, "cyber-crime-portal", st.Sources[0].ID)
	assert.Equal(t, 10, st.Sources[0].Priority)
	assert.False(t, st.Sources[0].LastSync.IsZero())
}
