package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

// Scheduled job names
const (
	JobRetrainModels       = "retrain-models"
	JobRefreshVerification = "refresh-verification-sources"
)

// SchedulerJob represents one scheduled execution of a periodic job
type SchedulerJob struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	ExecuteAt   time.Time  `json:"executeAt"`
	Status      JobStatus  `json:"status"`
	Manual      bool       `json:"manual"` // one-off run, never rescheduled
	Result      *JobResult `json:"result,omitempty"`
}

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

// JobResult holds the result of a job execution
type JobResult struct {
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completedAt"`
}

// JobFunc is the body of a periodic job
type JobFunc func(ctx context.Context) error

type periodicJob struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// Scheduler runs registered periodic jobs. When a Locker is configured only
// one instance executes a given job at a time.
type Scheduler struct {
	locker  Locker
	metrics *Metrics
	logger  *logger.Logger
	tick    time.Duration
	history time.Duration

	mu       sync.RWMutex
	periodic map[string]periodicJob
	jobs     map[uuid.UUID]*SchedulerJob
	running  bool
	stopCh   chan struct{}
}

// NewScheduler creates a new Scheduler. locker and metrics may be nil.
func NewScheduler(locker Locker, metrics *Metrics, log *logger.Logger) *Scheduler {
	return &Scheduler{
		locker:   locker,
		metrics:  metrics,
		logger:   log.WithComponent("scheduler"),
		tick:     10 * time.Second,
		history:  time.Hour,
		periodic: make(map[string]periodicJob),
		jobs:     make(map[uuid.UUID]*SchedulerJob),
		stopCh:   make(chan struct{}),
	}
}

// Register adds a periodic job. Registering a name twice replaces the job.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic[name] = periodicJob{name: name, interval: interval, run: fn}
}

// RegisterDefaultJobs wires the retraining and verification refresh jobs.
// Either service may be nil.
func (s *Scheduler) RegisterDefaultJobs(learning *LearningService, verification *VerificationService, retrainEvery, refreshEvery time.Duration) {
	if learning != nil && learning.Enabled() && retrainEvery > 0 {
		s.Register(JobRetrainModels, retrainEvery, func(context.Context) error {
			if learning.RetrainIfDue() {
				s.logger.Info().Msg("scheduled retrain ran")
			}
			return nil
		})
	}
	if verification != nil && refreshEvery > 0 {
		s.Register(JobRefreshVerification, refreshEvery, verification.Refresh)
	}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.logger.Info().Msg("scheduler started")
	s.scheduleAll()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.processJobs(ctx)
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.stopCh)
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scheduleAll() {
	s.mu.RLock()
	names := make([]string, 0, len(s.periodic))
	intervals := make(map[string]time.Duration, len(s.periodic))
	for name, j := range s.periodic {
		names = append(names, name)
		intervals[name] = j.interval
	}
	s.mu.RUnlock()

	sort.Strings(names)
	for _, name := range names {
		s.schedule(name, time.Now().Add(intervals[name]), false)
	}
	s.logger.Info().Int("jobs", len(names)).Msg("periodic jobs scheduled")
}

func (s *Scheduler) schedule(name string, executeAt time.Time, manual bool) *SchedulerJob {
	job := &SchedulerJob{
		ID:          uuid.New(),
		Name:        name,
		ScheduledAt: time.Now(),
		ExecuteAt:   executeAt,
		Status:      JobStatusPending,
		Manual:      manual,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.logger.Debug().
		Str("job_id", job.ID.String()).
		Str("job", name).
		Time("execute_at", executeAt).
		Msg("job scheduled")

	return job
}

// ScheduleNow queues a one-off run of a registered job for the next tick
func (s *Scheduler) ScheduleNow(name string) (*SchedulerJob, error) {
	s.mu.RLock()
	_, ok := s.periodic[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: job %q", models.ErrNotFound, name)
	}
	return s.schedule(name, time.Now(), true), nil
}

// RunNow executes a registered job immediately and returns its result. The
// periodic schedule of the job is left as it was.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*SchedulerJob, error) {
	job, err := s.ScheduleNow(name)
	if err != nil {
		return nil, err
	}
	s.executeJob(ctx, job)
	return s.snapshot(job), nil
}

// GetJob returns a job by ID
func (s *Scheduler) GetJob(id uuid.UUID) (*SchedulerJob, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.snapshot(job), true
}

// ListPendingJobs returns all pending jobs
func (s *Scheduler) ListPendingJobs() []*SchedulerJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]*SchedulerJob, 0)
	for _, job := range s.jobs {
		if job.Status == JobStatusPending {
			cp := *job
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ExecuteAt.Before(pending[j].ExecuteAt) })
	return pending
}

// CancelJob cancels a pending job
func (s *Scheduler) CancelJob(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusPending {
		return false
	}

	job.Status = JobStatusSkipped
	return true
}

func (s *Scheduler) snapshot(job *SchedulerJob) *SchedulerJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *job
	return &cp
}

// processJobs runs due jobs and prunes old finished ones
func (s *Scheduler) processJobs(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*SchedulerJob
	for id, job := range s.jobs {
		switch {
		case job.Status == JobStatusPending && !job.ExecuteAt.After(now):
			due = append(due, job)
		case job.Result != nil && now.Sub(job.Result.CompletedAt) > s.history,
			job.Status == JobStatusSkipped && now.Sub(job.ExecuteAt) > s.history:
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.executeJob(ctx, job)
	}
}

// executeJob executes a single job and schedules its next run
func (s *Scheduler) executeJob(ctx context.Context, job *SchedulerJob) {
	s.mu.Lock()
	pj, ok := s.periodic[job.Name]
	if !ok || job.Status != JobStatusPending {
		s.mu.Unlock()
		return
	}
	job.Status = JobStatusRunning
	s.mu.Unlock()

	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, job.Name, 10*time.Minute)
		if err != nil || !acquired {
			s.logger.Warn().Err(err).Str("job", job.Name).Msg("could not acquire lock, skipping")
			s.finish(job, JobStatusSkipped, &JobResult{CompletedAt: time.Now()})
			s.reschedule(job, pj)
			return
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), job.Name); err != nil {
				s.logger.Warn().Err(err).Str("job", job.Name).Msg("failed to release lock")
			}
		}()
	}

	start := time.Now()
	s.logger.Debug().Str("job_id", job.ID.String()).Str("job", job.Name).Msg("executing job")

	err := runRecovered(ctx, pj.run)

	result := &JobResult{
		Success:     err == nil,
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
	}
	status := JobStatusCompleted
	if err != nil {
		status = JobStatusFailed
		result.Error = err.Error()
	}
	s.finish(job, status, result)
	s.reschedule(job, pj)

	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Warn().Err(err)
	}
	ev.Str("job_id", job.ID.String()).
		Str("job", job.Name).
		Bool("success", result.Success).
		Dur("duration", result.Duration).
		Msg("job completed")
}

func (s *Scheduler) finish(job *SchedulerJob, status JobStatus, result *JobResult) {
	s.mu.Lock()
	job.Status = status
	job.Result = result
	s.mu.Unlock()
	s.metrics.ObserveJob(job.Name, status)
}

func (s *Scheduler) reschedule(job *SchedulerJob, pj periodicJob) {
	if job.Manual {
		return
	}
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if running && pj.interval > 0 {
		s.schedule(pj.name, time.Now().Add(pj.interval), false)
	}
}

func runRecovered(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SchedulerStats{
		Running:        s.running,
		RegisteredJobs: len(s.periodic),
		TotalJobs:      len(s.jobs),
	}

	for _, job := range s.jobs {
		switch job.Status {
		case JobStatusPending:
			stats.PendingJobs++
		case JobStatusRunning:
			stats.RunningJobs++
		case JobStatusCompleted:
			stats.CompletedJobs++
		case JobStatusFailed:
			stats.FailedJobs++
		}
	}

	return stats
}

// SchedulerStats holds scheduler statistics
type SchedulerStats struct {
	Running        bool `json:"running"`
	RegisteredJobs int  `json:"registeredJobs"`
	TotalJobs      int  `json:"totalJobs"`
	PendingJobs    int  `json:"pendingJobs"`
	RunningJobs    int  `json:"runningJobs"`
	CompletedJobs  int  `json:"completedJobs"`
	FailedJobs     int  `json:"failedJobs"`
}
