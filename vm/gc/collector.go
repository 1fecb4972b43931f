package gc

import (
	"github.com/emberlang/ember/vm/handle"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

// Trigger identifies why a collection ran (spec §4.6).
type Trigger int

const (
	Automatic Trigger = iota
	AllocFailure
	Forced
)

func (t Trigger) String() string {
	switch t {
	case Automatic:
		return "automatic"
	case AllocFailure:
		return "alloc_failure"
	case Forced:
		return "forced"
	default:
		return "unknown"
	}
}

// ModuleSource lets the collector walk the module registry's root set
// without importing package registry directly (accepting the interface
// instead of the concrete type avoids a gc↔registry build-order
// dependency and keeps gc independently testable).
type ModuleSource interface {
	WalkModules(func(*objects.Module))
}

// CoroutineSource lets the collector walk the scheduler's ready queue and
// currently-running coroutine, for the same reason as ModuleSource.
type CoroutineSource interface {
	WalkReady(func(*objects.Coroutine))
	Current() *objects.Coroutine
}

// Roots bundles every root set spec §4.6's mark phase enumerates.
type Roots struct {
	// Scope is the innermost currently-open handle scope; its Parent
	// chain is walked up to the top-level scope.
	Scope *handle.Scope

	Globals   *handle.GlobalTable
	Modules   ModuleSource
	Scheduler CoroutineSource

	// Constants holds the context's true/false/null/undefined singletons.
	Constants []value.Value

	InternStrings func(func(*objects.String))
	InternSymbols func(func(*objects.Symbol))
}

// Collector runs spec §4.6's mark-and-sweep cycle over one Heap.
type Collector struct{}

// New creates a Collector. Collectors are stateless between cycles; a
// single instance may be reused across an arbitrary number of
// collections.
func New() *Collector { return &Collector{} }

// Stats reports what the most recent Collect call did.
type Stats struct {
	Trigger    Trigger
	Collected  int
	Survivors  int
	SurvivingBytes uintptr
	NewThreshold   uintptr
}

// Collect runs one full mark-and-sweep cycle: mark every object
// transitively reachable from roots, then sweep the heap's object list,
// finalizing and unlinking everything left unmarked. It must only be
// called while no interpreter frame is mid-instruction (spec §4.6
// "Ordering guarantees").
func (c *Collector) Collect(h *heap.Heap, roots Roots, trigger Trigger) Stats {
	var worklist []*heap.Header
	mark := func(hdr *heap.Header) {
		if hdr == nil || hdr.Marked() {
			return
		}
		hdr.Mark()
		worklist = append(worklist, hdr)
	}

	if roots.Scope != nil {
		for s := roots.Scope; s != nil; s = s.Parent() {
			s.Walk(func(v value.Value) { markValue(v, mark) })
		}
	}
	if roots.Globals != nil {
		roots.Globals.Walk(func(v value.Value) { markValue(v, mark) })
	}
	if roots.Modules != nil {
		roots.Modules.WalkModules(func(m *objects.Module) { mark(&m.Header) })
	}
	if roots.Scheduler != nil {
		roots.Scheduler.WalkReady(func(co *objects.Coroutine) { mark(&co.Header) })
		if cur := roots.Scheduler.Current(); cur != nil {
			mark(&cur.Header)
		}
	}
	for _, v := range roots.Constants {
		markValue(v, mark)
	}
	if roots.InternStrings != nil {
		roots.InternStrings(func(s *objects.String) { mark(&s.Header) })
	}
	if roots.InternSymbols != nil {
		roots.InternSymbols(func(s *objects.Symbol) { mark(&s.Header) })
	}

	for len(worklist) > 0 {
		hdr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		walkChildren(hdr, mark)
	}

	var survivingBytes uintptr
	survivors := 0
	collected := 0
	h.IterateObjects(func(hdr *heap.Header) {
		if hdr.Marked() {
			hdr.Unmark()
			survivingBytes += hdr.Size()
			survivors++
			return
		}
		if hdr.Finalize != nil {
			hdr.Finalize()
		}
		h.Unlink(hdr)
		collected++
	})

	prev := h.Threshold()
	var next uintptr
	if survivingBytes*3 < prev*2 {
		next = heap.NextPowerOfTwo(survivingBytes)
	} else {
		next = prev
		if p := heap.NextPowerOfTwo(survivingBytes); p > next {
			next = p
		}
	}
	h.SetThreshold(next)

	return Stats{
		Trigger:        trigger,
		Collected:      collected,
		Survivors:      survivors,
		SurvivingBytes: survivingBytes,
		NewThreshold:   next,
	}
}
