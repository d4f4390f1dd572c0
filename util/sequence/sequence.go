package sequence

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrStopped is returned for jobs added after the sequence was stopped
var ErrStopped = errors.New("sequence is stopped")

type job struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// Sequence runs jobs one at a time, in the order they were added, on a
// single worker goroutine. Callers wait on their own job rather than
// holding a lock, so queued work keeps strict FIFO order.
type Sequence struct {
	name string

	lock    sync.Mutex
	queue   []*job
	wakeup  chan struct{}
	quit    chan struct{}
	stopped bool
	done    chan struct{}
}

// New creates a Sequence and starts its worker
func New(name string) *Sequence {
	s := &Sequence{
		name:   name,
		wakeup: make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	spawn("sequence-"+name, s.run)
	return s
}

// AddAndWait queues fn and blocks until it ran, returning its error. If
// ctx is cancelled before fn started, fn is skipped and ctx's error is
// returned. A job that already started always runs to completion.
func (s *Sequence) AddAndWait(ctx context.Context, fn func() error) error {
	j := &job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	s.lock.Lock()
	if s.stopped {
		s.lock.Unlock()
		return errors.Wrapf(ErrStopped, "sequence %s", s.name)
	}
	s.queue = append(s.queue, j)
	s.lock.Unlock()

	select {
	case s.wakeup <- struct{}{}:
	default:
	}

	return <-j.result
}

// Len returns the number of jobs waiting to run
func (s *Sequence) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.queue)
}

// Stop stops accepting jobs, lets the worker drain the queued ones and
// waits for it to exit
func (s *Sequence) Stop() {
	s.lock.Lock()
	if s.stopped {
		s.lock.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	s.lock.Unlock()

	close(s.quit)
	<-s.done
}

func (s *Sequence) run() {
	defer close(s.done)
	for {
		j, ok := s.next()
		if ok {
			s.execute(j)
			continue
		}

		select {
		case <-s.wakeup:
		case <-s.quit:
			for {
				j, ok := s.next()
				if !ok {
					return
				}
				s.execute(j)
			}
		}
	}
}

func (s *Sequence) next() (*job, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	j := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return j, true
}

func (s *Sequence) execute(j *job) {
	if err := j.ctx.Err(); err != nil {
		log.Debugf("Skipping cancelled job in sequence %s", s.name)
		j.result <- err
		return
	}
	j.result <- j.fn()
}
