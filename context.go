package ember

import (
	"github.com/emberlang/ember/vm/bytecode"
	"github.com/emberlang/ember/vm/diag"
	"github.com/emberlang/ember/vm/gc"
	"github.com/emberlang/ember/vm/handle"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/interp"
	"github.com/emberlang/ember/vm/loader"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/registry"
	"github.com/emberlang/ember/vm/scheduler"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Config collects the tunables a Context needs at construction, mirroring
// hive/builder's Options struct: a plain value type with sane zero-value
// fallbacks, never required in full by every caller.
type Config struct {
	// InitialHeapThreshold is the byte count the heap may grow to before
	// its first automatic collection (spec §4.6).
	InitialHeapThreshold uintptr

	// Diag forwards to diag.Init; the zero value keeps diagnostics
	// silent.
	Diag diag.Options
}

const defaultHeapThreshold = 1 << 20 // 1 MiB

// DefaultConfig returns spec's recommended defaults.
func DefaultConfig() Config {
	return Config{InitialHeapThreshold: defaultHeapThreshold}
}

// Context bundles every subsystem spec §3-§5 names into the one object a
// host embeds: heap, type table, intern tables, handle roots, module
// registry, scheduler, and interpreter. Grounded on hive/builder's
// top-level Builder, which owns and wires together its subordinate
// writer/index/dirty-tracker components the same way.
type Context struct {
	Heap     *heap.Heap
	Types    *types.Table
	Strings  *intern.Strings
	Symbols  *intern.Symbols
	Globals  *handle.GlobalTable
	Registry *registry.Registry
	Sched    *scheduler.Scheduler
	Interp   *interp.Interpreter
	gc       *gc.Collector

	loaderTypes loader.Types
}

// NewContext assembles a fresh Context from cfg, wiring the registry's
// run-once module initializer to the interpreter's RunFunction method (so
// package registry never has to import package interp). Async native
// calls are resumed through CompleteAsync.
func NewContext(cfg Config) *Context {
	threshold := cfg.InitialHeapThreshold
	if threshold == 0 {
		threshold = defaultHeapThreshold
	}
	diag.Init(cfg.Diag)

	h := heap.New(threshold)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))
	syms := intern.NewSymbols(h, tbl.Of(types.KindSymbol))
	globals := handle.NewGlobalTable()
	sched := scheduler.New()

	it := interp.New(h, interp.FromTable(tbl), strs, syms, nil)

	reg := registry.New(func(fn *objects.Function) (value.Value, error) {
		return it.RunFunction(fn)
	})
	it.Registry = reg

	return &Context{
		Heap:        h,
		Types:       tbl,
		Strings:     strs,
		Symbols:     syms,
		Globals:     globals,
		Registry:    reg,
		Sched:       sched,
		Interp:      it,
		gc:          gc.New(),
		loaderTypes: loader.FromTable(tbl),
	}
}

// AddModule decodes raw bytecode, materializes it onto the heap, and
// registers it under its own name (spec §4.7/§4.8). The returned module
// is not yet resolved; resolution happens lazily the first time it (or an
// importer of it) is looked up, or eagerly via ResolveModule.
func (c *Context) AddModule(raw []byte) (*objects.Module, error) {
	decoded, err := bytecode.Decode(raw)
	if err != nil {
		return nil, err
	}
	m, err := loader.Load(c.Heap, c.loaderTypes, c.Strings, c.Symbols, decoded, c.Interp.Undefined)
	if err != nil {
		return nil, err
	}
	if !c.Registry.AddModule(m) {
		return nil, NewError(KindDuplicateExport, "module %q already registered", decoded.Name)
	}
	return m, nil
}

// Module resolves (initializing on first access) and returns the module
// registered under name.
func (c *Context) Module(name string) (*objects.Module, error) {
	return c.Registry.GetModule(name)
}

// Export resolves module name and returns the current value of its export
// memberName, spawning its own coroutine under the hood if the module's
// initializer has not yet run.
func (c *Context) Export(moduleName, memberName string) (value.Value, error) {
	m, err := c.Module(moduleName)
	if err != nil {
		return value.Value{}, err
	}
	if m == nil {
		return value.Value{}, NewError(KindUnknownModule, "unknown module %q", moduleName)
	}
	nameStr, ok := c.Strings.Lookup([]byte(memberName))
	if !ok {
		return value.Value{}, NewError(KindNameError, "module %q has no export %q", moduleName, memberName)
	}
	sym, ok := c.lookupSymbol(nameStr)
	if !ok {
		return value.Value{}, NewError(KindNameError, "module %q has no export %q", moduleName, memberName)
	}
	v, ok := m.Export(sym)
	if !ok {
		return value.Value{}, NewError(KindNameError, "module %q has no export %q", moduleName, memberName)
	}
	return v, nil
}

func (c *Context) lookupSymbol(name *objects.String) (*objects.Symbol, bool) {
	var found *objects.Symbol
	c.Symbols.Walk(func(s *objects.Symbol) {
		if s.Name == name {
			found = s
		}
	})
	return found, found != nil
}

// Spawn wraps fn in a fresh coroutine with its arguments pre-pushed onto a
// new stack, ready for the scheduler.
func (c *Context) Spawn(fn *objects.Function, args []value.Value) (*objects.Coroutine, error) {
	stack := objects.NewCoroutineStack(c.Heap, c.Interp.T.CoroutineStack)
	if err := stack.PushValue(value.FromHeap(&fn.Header)); err != nil {
		return nil, err
	}
	for _, a := range args {
		if err := stack.PushValue(a); err != nil {
			return nil, err
		}
	}
	if err := stack.PushFrame(fn.Template, fn.Closure, 0, 0); err != nil {
		return nil, err
	}
	for i := 0; i < fn.Template.Locals; i++ {
		if err := stack.PushValue(value.Null); err != nil {
			return nil, err
		}
	}
	co := objects.NewCoroutine(c.Heap, c.Interp.T.Coroutine, stack)
	return co, nil
}

// Run spawns fn as a coroutine, enqueues it, and drives the scheduler
// until the ready queue empties, returning fn's result if it ran to
// completion without suspending.
func (c *Context) Run(fn *objects.Function, args []value.Value) (value.Value, error) {
	co, err := c.Spawn(fn, args)
	if err != nil {
		return value.Value{}, err
	}
	c.Sched.Enqueue(co)
	if err := c.Sched.RunUntilIdle(c.Interp); err != nil {
		return value.Value{}, err
	}
	if co.State == objects.CoroutineDone {
		return co.Result, co.Err
	}
	return value.Value{}, nil
}

// CompleteAsync is how the host notifies the context that an outstanding
// ResumeToken has been fulfilled: it re-enters the interpreter and, if
// the coroutine is ready to keep running rather than done, hands it back
// to the scheduler's queue.
func (c *Context) CompleteAsync(token *objects.ResumeToken) error {
	co := token.Coroutine
	_, err := c.Interp.Resume(co, token.Result(), token.Err())
	if err != nil {
		return err
	}
	if co.State == objects.CoroutineReady {
		c.Sched.Enqueue(co)
		return c.Sched.RunUntilIdle(c.Interp)
	}
	return nil
}

// CollectGarbage runs one forced mark-and-sweep cycle (spec §4.6,
// test hook per SPEC_FULL §10.4): useful for tests that need a
// deterministic collection point rather than waiting on the heap's
// automatic threshold.
func (c *Context) CollectGarbage(scope *handle.Scope) gc.Stats {
	roots := gc.Roots{
		Scope:         scope,
		Globals:       c.Globals,
		Modules:       c.Registry,
		Scheduler:     c.Sched,
		Constants:     []value.Value{c.Interp.Null, c.Interp.True, c.Interp.False, c.Interp.Undefined},
		InternStrings: c.Strings.Walk,
		InternSymbols: c.Symbols.Walk,
	}
	return c.gc.Collect(c.Heap, roots, gc.Forced)
}

// CollectIfNeeded runs an automatic collection when the heap's byte count
// has crossed its threshold (spec §4.6's triggering condition), a no-op
// otherwise. Nothing in the interpreter calls it: a collection happens
// only when a caller invokes this method or CollectGarbage.
func (c *Context) CollectIfNeeded(scope *handle.Scope) (gc.Stats, bool) {
	if !c.Heap.ShouldCollect() {
		return gc.Stats{}, false
	}
	roots := gc.Roots{
		Scope:         scope,
		Globals:       c.Globals,
		Modules:       c.Registry,
		Scheduler:     c.Sched,
		Constants:     []value.Value{c.Interp.Null, c.Interp.True, c.Interp.False, c.Interp.Undefined},
		InternStrings: c.Strings.Walk,
		InternSymbols: c.Symbols.Walk,
	}
	return c.gc.Collect(c.Heap, roots, gc.Automatic), true
}
