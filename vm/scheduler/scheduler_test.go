package scheduler_test

import (
	"testing"

	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/scheduler"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

// fakeRunner advances each coroutine through a pre-scripted sequence of
// states each time Run is called on it, without touching a real stack —
// enough to exercise the scheduler's queue discipline in isolation from
// package interp.
type fakeRunner struct {
	calls    int
	sequence map[*objects.Coroutine][]objects.CoroutineState
}

func (r *fakeRunner) Run(co *objects.Coroutine) (value.Value, error) {
	r.calls++
	seq := r.sequence[co]
	if len(seq) == 0 {
		co.State = objects.CoroutineDone
		return value.Null, nil
	}
	co.State = seq[0]
	r.sequence[co] = seq[1:]
	if co.State == objects.CoroutineDone {
		co.Finish(value.Null)
	}
	return value.Null, nil
}

func newCoroutine() *objects.Coroutine {
	return &objects.Coroutine{State: objects.CoroutineReady}
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	s := scheduler.New()
	a, b, c := newCoroutine(), newCoroutine(), newCoroutine()
	s.Enqueue(a)
	s.Enqueue(b)
	s.Enqueue(c)
	require.Equal(t, 3, s.Len())
	require.Same(t, a, s.Dequeue())
	require.Same(t, b, s.Dequeue())
	require.Same(t, c, s.Dequeue())
	require.Nil(t, s.Dequeue())
	require.Equal(t, 0, s.Len())
}

func TestRunUntilIdleRequeuesReadyCoroutines(t *testing.T) {
	s := scheduler.New()
	co := newCoroutine()
	runner := &fakeRunner{sequence: map[*objects.Coroutine][]objects.CoroutineState{
		co: {objects.CoroutineReady, objects.CoroutineReady, objects.CoroutineDone},
	}}
	s.Enqueue(co)
	err := s.RunUntilIdle(runner)
	require.NoError(t, err)
	require.Equal(t, 3, runner.calls)
	require.Equal(t, 0, s.Len())
	require.Equal(t, objects.CoroutineDone, co.State)
}

func TestRunUntilIdleLeavesWaitingCoroutinesOffQueue(t *testing.T) {
	s := scheduler.New()
	co := newCoroutine()
	runner := &fakeRunner{sequence: map[*objects.Coroutine][]objects.CoroutineState{
		co: {objects.CoroutineWaiting},
	}}
	s.Enqueue(co)
	err := s.RunUntilIdle(runner)
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())
	require.Equal(t, objects.CoroutineWaiting, co.State)

	// A later ResumeToken fulfillment re-enqueues it explicitly.
	s.Enqueue(co)
	require.Equal(t, 1, s.Len())
}

func TestWalkReadyVisitsQueuedCoroutinesOnly(t *testing.T) {
	s := scheduler.New()
	a, b := newCoroutine(), newCoroutine()
	s.Enqueue(a)
	s.Enqueue(b)

	var seen []*objects.Coroutine
	s.WalkReady(func(co *objects.Coroutine) { seen = append(seen, co) })
	require.Equal(t, []*objects.Coroutine{a, b}, seen)
	require.Nil(t, s.Current())
}
