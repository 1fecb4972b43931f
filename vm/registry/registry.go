// Package registry implements the module registry (spec §4.8): an owned
// name→Module map plus resolve_module's import-wiring and
// run-once-initializer algorithm.
//
// Grounded on hive/index (name-keyed lookup table) composed with
// hive/link's dependency-graph walk, adapted from resolving subkey links
// on disk to resolving UnresolvedImport placeholders in memory. The
// recursive "resolve B before returning to A" shape of spec §4.8 step 2 is
// rewritten as an explicit stack per spec's own instruction ("arranged as
// an explicit stack to avoid host-stack recursion"), the same technique
// hive/walker's index builder uses to flatten a tree walk.
package registry

import (
	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

// Initializer runs a module's init function to completion, returning its
// result or any error the coroutine it executes under unwinds with. Wired
// in by the context so this package never needs to import the
// interpreter.
type Initializer func(fn *objects.Function) (value.Value, error)

// Registry is the module registry's live state.
type Registry struct {
	byName  map[string]*objects.Module
	order   []string
	runInit Initializer
}

// New creates an empty registry. runInit is used to invoke a module's
// init function during resolution; it may be nil only for tests that
// register modules with no initializer.
func New(runInit Initializer) *Registry {
	return &Registry{byName: make(map[string]*objects.Module), runInit: runInit}
}

// AddModule registers m under its own name, returning false if a module
// with that name is already present (spec §4.8 "returns false if a module
// with that name is already present").
func (r *Registry) AddModule(m *objects.Module) bool {
	name := m.Name.String()
	if _, exists := r.byName[name]; exists {
		return false
	}
	r.byName[name] = m
	r.order = append(r.order, name)
	return true
}

// GetModule resolves and returns the module registered under name.
// (nil, nil) means "not registered" (spec's Option::None); a non-nil error
// means resolution failed partway through.
func (r *Registry) GetModule(name string) (*objects.Module, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, nil
	}
	if err := r.ResolveModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WalkModules calls f with every registered module, resolved or not, so
// the collector can mark them as roots (implements gc.ModuleSource).
func (r *Registry) WalkModules(f func(*objects.Module)) {
	for _, name := range r.order {
		f(r.byName[name])
	}
}

type resolveFrame struct {
	module *objects.Module
	idx    int
}

// ResolveModule runs spec §4.8's resolve_module: idempotent no-op if
// already initialized, otherwise walks m's members replacing
// UnresolvedImport placeholders with their target modules (recursively
// resolving those first), then runs m's initializer exactly once.
//
// Import cycles are detected and rejected with ImportCycle (spec §9's
// recommended policy (a)): when module A is mid-resolution and one of its
// (possibly transitive) imports asks for A again, A is found still on the
// in-progress stack and not yet initialized.
func (r *Registry) ResolveModule(start *objects.Module) error {
	if start.Initialized {
		return nil
	}

	inProgress := map[*objects.Module]bool{start: true}
	stack := []*resolveFrame{{module: start}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.idx >= top.module.Members.Len() {
			if err := r.runInitializer(top.module); err != nil {
				return err
			}
			top.module.Initialized = true
			delete(inProgress, top.module)
			stack = stack[:len(stack)-1]
			continue
		}

		v, _ := top.module.Members.Get(top.idx)
		hdr, isHeap := v.HeapPtr()
		if !isHeap {
			top.idx++
			continue
		}
		imp, isImport := hdr.Payload.(*objects.UnresolvedImport)
		if !isImport {
			top.idx++
			continue
		}

		name := imp.ModuleName.String()
		target, ok := r.byName[name]
		if !ok {
			return ember.NewError(ember.KindUnknownModule, "unknown module %q", name)
		}
		if target.Initialized {
			top.module.Members.Set(top.idx, value.FromHeap(&target.Header))
			top.idx++
			continue
		}
		if inProgress[target] {
			return ember.NewError(ember.KindImportCycle, "import cycle detected resolving %q", name)
		}

		inProgress[target] = true
		stack = append(stack, &resolveFrame{module: target})
	}

	return nil
}

func (r *Registry) runInitializer(m *objects.Module) error {
	if m.InitIndex == objects.InvalidIndex {
		return nil
	}
	initVal, ok := m.Members.Get(m.InitIndex)
	if !ok {
		return ember.NewError(ember.KindModuleFormat, "module %q: init index out of range", m.Name.String())
	}
	hdr, isHeap := initVal.HeapPtr()
	if !isHeap {
		return ember.NewError(ember.KindModuleFormat, "module %q: init member is not callable", m.Name.String())
	}
	fn, ok := hdr.Payload.(*objects.Function)
	if !ok {
		return ember.NewError(ember.KindModuleFormat, "module %q: init member is not a Function", m.Name.String())
	}
	if r.runInit == nil {
		return ember.NewError(ember.KindModuleFormat, "module %q: has an initializer but no run_init is configured", m.Name.String())
	}
	_, err := r.runInit(fn)
	return err
}
