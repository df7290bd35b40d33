package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
)

func TestMemoryScans_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	scans := store.Scans()

	for i, v := range []models.Verdict{models.VerdictSafe, models.VerdictDangerous, models.VerdictSuspicious} {
		s, err := scans.Create(ctx, &models.Scan{
			Type:    "sms",
			Content: "message",
			Verdict: v,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), s.ID)
		assert.False(t, s.Timestamp.IsZero())
	}
	_, err := scans.Create(ctx, &models.Scan{Type: "url", Content: "https://x.in", Verdict: models.VerdictSafe})
	require.NoError(t, err)

	recent, err := scans.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(4), recent[0].ID)
	assert.Equal(t, int64(3), recent[1].ID)

	sms, err := scans.ListByType(ctx, "sms", 0)
	require.NoError(t, err)
	assert.Len(t, sms, 3)

	got, err := scans.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictDangerous, got.Verdict)

	_, err = scans.GetByID(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryScans_Stats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	fixed := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	st, err := store.Scans().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStats{}, *st)

	for _, v := range []models.Verdict{models.VerdictSafe, models.VerdictDangerous, models.VerdictSuspicious} {
		_, err := store.Scans().Create(ctx, &models.Scan{Type: "sms", Verdict: v})
		require.NoError(t, err)
	}

	st, err = store.Scans().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalScans)
	assert.Equal(t, 2, st.ScamsBlocked)
	assert.Equal(t, 3, st.TodayScans)
	assert.Equal(t, 67, st.Accuracy)
}

func TestMemoryReports_SearchByDigits(t *testing.T) {
	ctx := context.Background()
	reports := NewMemoryStore().Reports()

	_, err := reports.Create(ctx, &models.Report{Type: models.ReportTypeFakeCall, Content: "+91 98765-43210 called me"})
	require.NoError(t, err)
	_, err = reports.Create(ctx, &models.Report{Type: models.ReportTypePhishing, Content: "https://bad.example"})
	require.NoError(t, err)

	found, err := reports.SearchByDigits(ctx, "9876543210", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.ReportTypeFakeCall, found[0].Type)
	assert.False(t, found[0].Verified)

	none, err := reports.SearchByDigits(ctx, "no digits", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	phishing, err := reports.ListByType(ctx, models.ReportTypePhishing, 10)
	require.NoError(t, err)
	assert.Len(t, phishing, 1)
}

func TestMemoryPatterns_CreateIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	patterns := NewMemoryStore().Patterns()

	p := models.ScamPattern{ID: "custom-1", Category: models.CategoryGeneral, Pattern: "gift card", Weight: 20}
	require.NoError(t, patterns.Create(ctx, p))
	p.Weight = 90
	require.NoError(t, patterns.Create(ctx, p))

	all, err := patterns.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 20, all[0].Weight)
}
