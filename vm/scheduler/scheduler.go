// Package scheduler implements the cooperative run loop spec §5 describes:
// a FIFO ready queue of coroutines, run one at a time to completion,
// suspension, or failure, with newly-spawned coroutines enqueued at the
// back.
//
// Grounded on hive/tx.Manager's small state-machine shape (Begin/Commit-
// style named transitions guarded by a single bool, no internal
// goroutines or locking — the scheduler is explicitly single-threaded per
// spec §5) adapted from one hive's transaction lifecycle to one context's
// coroutine lifecycle, and on the intrusive-linked-list technique
// package heap's object list and package handle's Scope/GlobalTable both
// use for O(1) enqueue.
package scheduler

import (
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

// Runner executes one coroutine until it finishes, suspends, or fails.
// Implemented by *interp.Interpreter; kept as an interface here so
// package scheduler never imports package interp (the same cycle-avoidance
// reasoning as registry.Initializer).
type Runner interface {
	Run(co *objects.Coroutine) (value.Value, error)
}

// Scheduler owns the ready queue and tracks whichever coroutine is
// currently executing, implementing gc.CoroutineSource so the collector
// can root both (spec §4.6).
type Scheduler struct {
	head, tail *objects.Coroutine
	count      int
	current    *objects.Coroutine
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Enqueue appends co to the back of the ready queue (spec §5 "newly
// spawned coroutines are appended to the end of the ready queue").
func (s *Scheduler) Enqueue(co *objects.Coroutine) {
	co.SetNext(nil)
	if s.tail != nil {
		s.tail.SetNext(co)
	} else {
		s.head = co
	}
	s.tail = co
	s.count++
}

// Dequeue removes and returns the coroutine at the front of the ready
// queue, or nil if empty.
func (s *Scheduler) Dequeue() *objects.Coroutine {
	co := s.head
	if co == nil {
		return nil
	}
	s.head = co.Next()
	if s.head == nil {
		s.tail = nil
	}
	co.SetNext(nil)
	s.count--
	return co
}

// Len reports the number of coroutines currently waiting to run.
func (s *Scheduler) Len() int { return s.count }

// Current returns the coroutine presently executing, or nil between
// steps (implements gc.CoroutineSource).
func (s *Scheduler) Current() *objects.Coroutine { return s.current }

// WalkReady calls f with every coroutine still sitting in the ready queue
// (implements gc.CoroutineSource; Current is reported separately since it
// has already been dequeued by the time a collection runs mid-step).
func (s *Scheduler) WalkReady(f func(*objects.Coroutine)) {
	for cur := s.head; cur != nil; cur = cur.Next() {
		f(cur)
	}
}

// RunUntilIdle dequeues and runs coroutines one at a time until the ready
// queue empties, re-enqueueing any that voluntarily yield back to Ready
// (spec §5's scheduling contract) rather than blocking on Waiting or
// reaching Done. Native-async suspensions leave their coroutine off the
// queue entirely until the host fulfills its ResumeToken and requeues it.
func (s *Scheduler) RunUntilIdle(run Runner) error {
	for {
		co := s.Dequeue()
		if co == nil {
			return nil
		}
		s.current = co
		_, err := run.Run(co)
		s.current = nil
		if err != nil {
			return err
		}
		if co.State == objects.CoroutineReady {
			s.Enqueue(co)
		}
	}
}
