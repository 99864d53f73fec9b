package background

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"sellusgenie-backend/pkg/logger"
)

// Trigger enqueues jobs on the scheduler following cron expressions.
type Trigger struct {
	cron      *cron.Cron
	scheduler *Scheduler
}

func NewTrigger(scheduler *Scheduler) *Trigger {
	return &Trigger{
		cron:      cron.New(),
		scheduler: scheduler,
	}
}

// Every registers job under a standard five-field cron spec or a descriptor
// such as "@daily". An empty spec registers nothing.
func (t *Trigger) Every(spec string, job Job) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}

	_, err := t.cron.AddFunc(spec, func() {
		err := t.scheduler.ScheduleUnique(job)
		switch {
		case err == nil:
		case errors.Is(err, ErrJobAlreadyQueued):
			logger.Warn("Skipping cron tick, previous run still active", map[string]interface{}{"job": job.Name})
		default:
			logger.Error(err, "Failed to enqueue cron job", map[string]interface{}{"job": job.Name})
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, job.Name, err)
	}

	logger.Info("Cron job registered", map[string]interface{}{"job": job.Name, "schedule": spec})
	return nil
}

func (t *Trigger) Len() int {
	return len(t.cron.Entries())
}

func (t *Trigger) Start() {
	t.cron.Start()
}

// Stop stops scheduling new ticks. Jobs already handed to the scheduler keep
// running until the scheduler shuts down.
func (t *Trigger) Stop() {
	<-t.cron.Stop().Done()
}
