package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sellusgenie-backend/pkg/logger"
)

var (
	ErrSchedulerNotStarted = errors.New("scheduler not started")
	ErrJobAlreadyQueued    = errors.New("job already queued or running")
	ErrSchedulerStopping   = errors.New("scheduler is shutting down")
)

type Config struct {
	WorkerCount int
	QueueSize   int
}

// Job is a unit of maintenance work such as a widget upgrade sweep.
type Job struct {
	Name       string
	Run        func(ctx context.Context) error
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

type queuedJob struct {
	Job
	attempt int
	unique  bool
}

// Scheduler runs jobs on a fixed pool of workers fed by a bounded queue.
type Scheduler struct {
	cfg Config

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	active  map[string]struct{}

	queue   chan queuedJob
	workers sync.WaitGroup
}

var (
	metricsOnce    sync.Once
	jobRunsTotal   *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobLastSuccess *prometheus.GaugeVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sellusgenie",
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Background job executions by outcome",
		}, []string{"job", "status"})

		jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sellusgenie",
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job executions",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"})

		jobLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sellusgenie",
			Subsystem: "background",
			Name:      "job_last_success_timestamp",
			Help:      "Unix time of the last successful run of a job",
		}, []string{"job"})
	})
}

func NewScheduler(cfg Config) *Scheduler {
	initMetrics()

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}

	return &Scheduler{
		cfg:    cfg,
		queue:  make(chan queuedJob, cfg.QueueSize),
		active: make(map[string]struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	for i := 0; i < s.cfg.WorkerCount; i++ {
		s.workers.Add(1)
		go s.work()
	}
}

func (s *Scheduler) work() {
	defer s.workers.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case job := <-s.queue:
			s.process(job)
		}
	}
}

func (s *Scheduler) process(job queuedJob) {
	err := s.run(job)
	if err != nil && job.attempt <= job.MaxRetries && !errors.Is(err, context.Canceled) {
		if s.wait(job.Backoff) {
			job.attempt++
			if s.push(job) {
				return
			}
		}
	}
	s.finish(job, err)
}

func (s *Scheduler) wait(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Scheduler) run(job queuedJob) (err error) {
	start := time.Now()
	status := "success"

	ctx := s.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		switch {
		case err == nil:
			jobLastSuccess.WithLabelValues(job.Name).SetToCurrentTime()
		case errors.Is(err, context.Canceled):
			status = "canceled"
		default:
			status = "failure"
			logger.Error(err, "Background job failed", map[string]interface{}{"job": job.Name, "attempt": job.attempt})
		}
		jobDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
		jobRunsTotal.WithLabelValues(job.Name, status).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return job.Run(ctx)
}

func (s *Scheduler) push(job queuedJob) bool {
	select {
	case <-s.ctx.Done():
		return false
	case s.queue <- job:
		return true
	}
}

func (s *Scheduler) finish(job queuedJob, err error) {
	if job.unique {
		s.mu.Lock()
		delete(s.active, job.Name)
		s.mu.Unlock()
	}

	fields := map[string]interface{}{"job": job.Name, "attempt": job.attempt}
	switch {
	case err == nil:
		logger.Info("Background job completed", fields)
	case errors.Is(err, context.Canceled):
		logger.Warn("Background job canceled", fields)
	}
}

// Schedule queues a job. It blocks while the queue is full.
func (s *Scheduler) Schedule(job Job) error {
	return s.schedule(job, false)
}

// ScheduleUnique queues a job unless one with the same name is still queued
// or running.
func (s *Scheduler) ScheduleUnique(job Job) error {
	return s.schedule(job, true)
}

func (s *Scheduler) schedule(job Job, unique bool) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job name and runner are required")
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrSchedulerNotStarted
	}
	if unique {
		if _, exists := s.active[job.Name]; exists {
			s.mu.Unlock()
			return ErrJobAlreadyQueued
		}
		s.active[job.Name] = struct{}{}
	}
	s.mu.Unlock()

	if !s.push(queuedJob{Job: job, attempt: 1, unique: unique}) {
		if unique {
			s.mu.Lock()
			delete(s.active, job.Name)
			s.mu.Unlock()
		}
		return ErrSchedulerStopping
	}
	return nil
}

// Shutdown cancels running jobs and waits for the workers to exit.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) ActiveJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
