package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Func is the body of a periodic job. ctx is cancelled once the job's
// timeout elapses or the scheduler stops.
type Func func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       Func
	timer    *time.Timer
}

// Scheduler runs named periodic jobs. A job's next run is only scheduled
// after its current run returned or timed out, so runs of the same job
// never overlap.
type Scheduler struct {
	lock    sync.Mutex
	jobs    map[string]*job
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	running sync.WaitGroup
}

// NewScheduler returns an empty Scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules fn to run every interval. A run exceeding timeout
// is abandoned and the job is rescheduled.
func (s *Scheduler) Register(name string, interval, timeout time.Duration, fn Func) error {
	if interval <= 0 {
		return errors.Errorf("job %s: interval must be positive", name)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.stopped {
		return errors.Errorf("job %s: scheduler is stopped", name)
	}
	if _, ok := s.jobs[name]; ok {
		return errors.Errorf("job %s is already registered", name)
	}

	j := &job{name: name, interval: interval, timeout: timeout, fn: fn}
	s.jobs[name] = j
	s.scheduleLocked(j)
	log.Debugf("Registered job %s every %s", name, interval)
	return nil
}

// Unregister stops future runs of the named job. A run in progress is
// not interrupted.
func (s *Scheduler) Unregister(name string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return
	}
	j.timer.Stop()
	delete(s.jobs, name)
}

// Stop cancels all jobs and waits for runs in progress to return
func (s *Scheduler) Stop() {
	s.lock.Lock()
	if s.stopped {
		s.lock.Unlock()
		return
	}
	s.stopped = true
	for _, j := range s.jobs {
		j.timer.Stop()
	}
	s.lock.Unlock()

	s.cancel()
	s.running.Wait()
}

// This function MUST be called with the scheduler lock held
func (s *Scheduler) scheduleLocked(j *job) {
	j.timer = spawnAfter("job-"+j.name, j.interval, func() {
		s.lock.Lock()
		if s.stopped || s.jobs[j.name] != j {
			s.lock.Unlock()
			return
		}
		s.running.Add(1)
		s.lock.Unlock()

		s.runOnce(j)
		s.running.Done()

		s.lock.Lock()
		defer s.lock.Unlock()
		if s.stopped || s.jobs[j.name] != j {
			return
		}
		s.scheduleLocked(j)
	})
}

func (s *Scheduler) runOnce(j *job) {
	ctx := s.ctx
	var cancel context.CancelFunc
	if j.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	result := make(chan error, 1)
	spawn("job-run-"+j.name, func() {
		result <- j.fn(ctx)
	})

	select {
	case err := <-result:
		if err != nil {
			log.Warnf("Job %s failed: %s", j.name, err)
		}
	case <-ctx.Done():
		log.Warnf("Job %s did not finish: %s", j.name, ctx.Err())
	}
}
