package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/pkg/logger"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func (l *fakeLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

func TestScheduler_RunNow(t *testing.T) {
	locker := &fakeLocker{}
	metrics := NewMetrics(prometheus.NewRegistry())
	s := NewScheduler(locker, metrics, logger.NewNop())

	runs := 0
	s.Register("tick", time.Minute, func(context.Context) error {
		runs++
		return nil
	})

	job, err := s.RunNow(context.Background(), "tick")
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	assert.True(t, job.Result.Success)
	assert.Equal(t, []string{"tick"}, locker.released)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.jobRuns.WithLabelValues("tick", "completed")))

	got, ok := s.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, JobStatusCompleted, got.Status)

	// not started, so nothing is rescheduled
	assert.Empty(t, s.ListPendingJobs())
}

func TestScheduler_LockHeldSkipsJob(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{"tick": true}}
	s := NewScheduler(locker, nil, logger.NewNop())

	ran := false
	s.Register("tick", time.Minute, func(context.Context) error {
		ran = true
		return nil
	})

	job, err := s.RunNow(context.Background(), "tick")
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, JobStatusSkipped, job.Status)
}

func TestScheduler_FailuresAndPanics(t *testing.T) {
	s := NewScheduler(nil, nil, logger.NewNop())
	s.Register("broken", time.Minute, func(context.Context) error { return errors.New("source offline") })
	s.Register("panics", time.Minute, func(context.Context) error { panic("boom") })

	job, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "source offline", job.Result.Error)

	job, err = s.RunNow(context.Background(), "panics")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.Result.Error, "boom")

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	stats := s.Stats()
	assert.Equal(t, 2, stats.RegisteredJobs)
	assert.Equal(t, 2, stats.FailedJobs)
}

func TestScheduler_CancelPendingJob(t *testing.T) {
	s := NewScheduler(nil, nil, logger.NewNop())
	s.Register("tick", time.Minute, func(context.Context) error { return nil })

	job, err := s.ScheduleNow("tick")
	require.NoError(t, err)
	assert.Len(t, s.ListPendingJobs(), 1)

	assert.True(t, s.CancelJob(job.ID))
	assert.False(t, s.CancelJob(job.ID))
	assert.Empty(t, s.ListPendingJobs())
}

func TestScheduler_StartProcessesDueJobs(t *testing.T) {
	s := NewScheduler(nil, nil, logger.NewNop())
	s.tick = 10 * time.Millisecond

	done := make(chan struct{}, 1)
	s.Register("tick", time.Hour, func(context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Stats().Running }, time.Second, 5*time.Millisecond)
	_, err := s.ScheduleNow("tick")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	// a one-off run leaves only the periodic occurrence queued
	require.Eventually(t, func() bool { return s.Stats().CompletedJobs == 1 }, time.Second, 5*time.Millisecond)
	pending := s.ListPendingJobs()
	require.Len(t, pending, 1)
	assert.False(t, pending[0].Manual)

	s.Stop()
	assert.False(t, s.Stats().Running)
}

func TestScheduler_RepeatedRunNowKeepsOnePeriodicChain(t *testing.T) {
	s := NewScheduler(nil, nil, logger.NewNop())

	runs := 0
	s.Register("refresh", time.Hour, func(context.Context) error {
		runs++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()
	require.Eventually(t, func() bool { return len(s.ListPendingJobs()) == 1 }, time.Second, 5*time.Millisecond)
	periodic := s.ListPendingJobs()[0]

	for i := 0; i < 3; i++ {
		job, err := s.RunNow(context.Background(), "refresh")
		require.NoError(t, err)
		assert.True(t, job.Manual)
		assert.Equal(t, JobStatusCompleted, job.Status)
	}
	assert.Equal(t, 3, runs)

	pending := s.ListPendingJobs()
	require.Len(t, pending, 1)
	assert.Equal(t, periodic.ID, pending[0].ID)
	assert.False(t, pending[0].Manual)

	s.Stop()
}

func TestScheduler_DefaultJobs(t *testing.T) {
	detector := ai.NewDetector(ai.DefaultDetectorConfig(), logger.NewNop())
	learning := NewLearningService(detector, true, nil, nil, logger.NewNop())
	verification := NewVerificationService([]Verifier{NewRBIFraudSource()}, nil, time.Second, logger.NewNop())

	s := NewScheduler(nil, nil, logger.NewNop())
	s.RegisterDefaultJobs(learning, verification, time.Hour, time.Hour)
	assert.Equal(t, 2, s.Stats().RegisteredJobs)

	job, err := s.RunNow(context.Background(), JobRefreshVerification)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.False(t, verification.Status().Sources[0].LastSync.IsZero())

	job, err = s.RunNow(context.Background(), JobRetrainModels)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Zero(t, learning.Status().RetrainCount)

	disabled := NewScheduler(nil, nil, logger.NewNop())
	disabled.RegisterDefaultJobs(NewLearningService(detector, false, nil, nil, logger.NewNop()), nil, time.Hour, time.Hour)
	assert.Zero(t, disabled.Stats().RegisteredJobs)
}
