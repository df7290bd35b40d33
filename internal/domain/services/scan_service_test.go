package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/config"
	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/internal/infrastructure/database/repository"
	"insafe-lab/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishScan(ctx context.Context, res *models.ScanResult) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockPublisher) PublishRetrain(ctx context.Context, status models.LearningStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *mockPublisher) PublishReport(ctx context.Context, rep *models.Report) error {
	return m.Called(ctx, rep).Error(0)
}

type countingCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (c *countingCounter) IncrScanCounter(_ context.Context, ct string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[ct]++
	return c.counts[ct], nil
}

type failingScans struct {
	ScanStore
}

func (failingScans) Create(context.Context, *models.Scan) (*models.Scan, error) {
	return nil, errors.New("connection refused")
}

type scanFixture struct {
	svc       *ScanService
	store     *repository.MemoryStore
	detector  *ai.Detector
	learning  *LearningService
	publisher *mockPublisher
	counter   *countingCounter
	metrics   *Metrics
}

func newScanFixture(t *testing.T, policy ai.Policy, classifierURL string) *scanFixture {
	t.Helper()
	log := logger.NewNop()

	cfg := ai.DefaultDetectorConfig()
	cfg.Policy = policy
	detector := ai.NewDetector(cfg, log)

	store := repository.NewMemoryStore()
	publisher := &mockPublisher{}
	metrics := NewMetrics(prometheus.NewRegistry())
	counter := &countingCounter{}
	learning := NewLearningService(detector, true, publisher, metrics, log)

	verifier := NewVerificationService([]Verifier{
		NewCyberCrimePortalSource(),
		NewCommunitySource(store.Reports()),
	}, store.Scans(), time.Second, log)

	classifier := NewClassifier(config.ClassifierConfig{Enabled: classifierURL != "", URL: classifierURL}, nil, log)

	svc := NewScanService(detector, store.Scans(), ScanServiceDeps{
		Classifier: classifier,
		Verifier:   verifier,
		Learning:   learning,
		Publisher:  publisher,
		Counter:    counter,
		Metrics:    metrics,
	}, log)

	return &scanFixture{
		svc:       svc,
		store:     store,
		detector:  detector,
		learning:  learning,
		publisher: publisher,
		counter:   counter,
		metrics:   metrics,
	}
}

func TestScanService_BlendsClassifier(t *testing.T) {
	var calls atomic.Int32
	srv := classifierServer(t, []string{"safe", "phishing", "malware", "scam"}, []float64{0.05, 0.9, 0.03, 0.02}, &calls)
	defer srv.Close()

	f := newScanFixture(t, ai.DefaultPolicy(), srv.URL)
	f.publisher.On("PublishScan", mock.Anything, mock.AnythingOfType("*models.ScanResult")).Return(nil)

	res, err := f.svc.Scan(context.Background(), ScanRequest{
		Type:      models.ContentTypeURL,
		Content:   "https://sbi.co.in",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	f.learning.Wait()

	assert.Equal(t, 45, res.Confidence)
	assert.Equal(t, models.VerdictSuspicious, res.Verdict)
	assert.NotZero(t, res.ID)
	assert.NotNil(t, res.RiskFactors)
	require.NotNil(t, res.IPAddress)
	assert.Equal(t, "10.0.0.1", *res.IPAddress)
	assert.NotEmpty(t, res.LearningID)

	_, ok := f.detector.Engine().Example(res.LearningID)
	assert.True(t, ok)

	stored, err := f.svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://sbi.co.in", stored.Content)

	assert.Equal(t, int64(1), f.counter.counts["url"])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.scansTotal.WithLabelValues("url", "suspicious")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.learnTotal.WithLabelValues("url", "true")))
	f.publisher.AssertNumberOfCalls(t, "PublishScan", 1)
}

func TestScanService_ClassifierDownStillScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newScanFixture(t, ai.DefaultPolicy(), srv.URL)
	f.publisher.On("PublishScan", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	res, err := f.svc.Scan(context.Background(), ScanRequest{
		Type:    models.ContentTypeSMS,
		Content: "Congratulations! You've won ₹25 lakh in KBC lottery. Click link to claim: bit.ly/kbc-winner",
	})
	require.NoError(t, err)
	f.learning.Wait()

	assert.Equal(t, models.VerdictDangerous, res.Verdict)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.signalUnavailable.WithLabelValues("external")))
}

func TestScanService_PhoneUsesVerification(t *testing.T) {
	policy, err := ai.NewPolicy([]string{"rule", "verification"}, 0, 0)
	require.NoError(t, err)

	f := newScanFixture(t, policy, "")
	f.publisher.On("PublishScan", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Scan(context.Background(), ScanRequest{
		Type:    models.ContentTypePhone,
		Content: "+91-9876543210",
	})
	require.NoError(t, err)
	f.learning.Wait()

	assert.Equal(t, 83, res.Confidence)
	assert.Equal(t, models.VerdictDangerous, res.Verdict)
	require.Len(t, res.Verification, 1)
	assert.Equal(t, "Loan Fraud", res.Verification[0].FraudType)
}

func TestScanService_APKStoresAppName(t *testing.T) {
	f := newScanFixture(t, ai.DefaultPolicy(), "")
	f.publisher.On("PublishScan", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Scan(context.Background(), ScanRequest{
		Type:           models.ContentTypeAPK,
		Content:        APKContent("Instant Loan Pro", "READ_SMS\nREAD_CONTACTS"),
		StoredContent:  "Instant Loan Pro",
		ClassifierText: "READ_SMS\nREAD_CONTACTS",
	})
	require.NoError(t, err)
	f.learning.Wait()

	assert.Equal(t, "Instant Loan Pro", res.Content)

	scans, err := f.svc.ByType(context.Background(), "APK", 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "Instant Loan Pro", scans[0].Content)
}

func TestScanService_StoreFailureReturnsUnsavedResult(t *testing.T) {
	f := newScanFixture(t, ai.DefaultPolicy(), "")
	f.publisher.On("PublishScan", mock.Anything, mock.Anything).Return(nil)
	f.svc.scans = failingScans{}

	res, err := f.svc.Scan(context.Background(), ScanRequest{
		Type:    models.ContentTypeQR,
		Content: "upi://pay?pa=scammer@paytm&pn=FakeStore&am=100",
	})
	require.NoError(t, err)
	f.learning.Wait()

	assert.Zero(t, res.ID)
	assert.False(t, res.Timestamp.IsZero())
	assert.Equal(t, models.VerdictSuspicious, res.Verdict)
}

func TestScanService_RejectsInvalidInput(t *testing.T) {
	f := newScanFixture(t, ai.DefaultPolicy(), "")

	_, err := f.svc.Scan(context.Background(), ScanRequest{Type: models.ContentTypeSMS, Content: "  "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Scan(context.Background(), ScanRequest{Type: "fax", Content: "hello"})
	assert.ErrorIs(t, err, models.ErrUnknownContentType)

	_, err = f.svc.ByType(context.Background(), "fax", 10)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	f.publisher.AssertNotCalled(t, "PublishScan", mock.Anything, mock.Anything)
}

func TestScanService_StatsAndPhoneIntelListing(t *testing.T) {
	f := newScanFixture(t, ai.DefaultPolicy(), "")
	f.publisher.On("PublishScan", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	for _, req := range []ScanRequest{
		{Type: models.ContentTypePhone, Content: "+91-9876543210"},
		{Type: models.ContentTypeURL, Content: "https://sbi.co.in"},
	} {
		_, err := f.svc.Scan(ctx, req)
		require.NoError(t, err)
	}
	f.learning.Wait()

	_, err := f.svc.verifier.LookupPhone(ctx, "8765432109")
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalScans)
	assert.Equal(t, 2, stats.ScamsBlocked)
	assert.Equal(t, 3, stats.TodayScans)

	intel, err := f.svc.ByType(ctx, models.ScanTypePhoneIntel, 10)
	require.NoError(t, err)
	assert.Len(t, intel, 1)

	recent, err := f.svc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, models.ScanTypePhoneIntel, recent[0].Type)
}

func TestLearningService_DisabledSkipsLearning(t *testing.T) {
	detector := ai.NewDetector(ai.DefaultDetectorConfig(), logger.NewNop())
	svc := NewLearningService(detector, false, nil, nil, logger.NewNop())

	id := svc.LearnAsync(models.Observation{ContentType: models.ContentTypeSMS, Content: "hi", Verdict: models.VerdictSafe})
	assert.Empty(t, id)
	assert.Zero(t, svc.Status().TotalTrainingData)

	_, err := svc.Predict("", models.ContentTypeSMS)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLearningService_RetrainPublishes(t *testing.T) {
	detector := ai.NewDetector(ai.DefaultDetectorConfig(), logger.NewNop())
	publisher := &mockPublisher{}
	publisher.On("PublishRetrain", mock.Anything, mock.AnythingOfType("models.LearningStatus")).Return(nil)
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewLearningService(detector, true, publisher, metrics, logger.NewNop())

	for i := 0; i < 10; i++ {
		res := svc.Learn(models.Observation{
			ContentType: models.ContentTypeSMS,
			Content:     "urgent kyc update required",
			Verdict:     models.VerdictDangerous,
			Confidence:  80,
		})
		require.True(t, res.Success)
	}

	assert.Equal(t, 1, svc.Status().RetrainCount)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.retrainsTotal))
	publisher.AssertNumberOfCalls(t, "PublishRetrain", 1)

	assert.True(t, svc.Retrain())
	assert.Equal(t, 2, svc.Status().RetrainCount)
}
