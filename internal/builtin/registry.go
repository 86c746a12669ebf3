// Package builtin provides a registry for self-registering host functions.
// Each builtin package uses init() to register its functions, enabling clean
// separation of concerns: the VM core knows nothing about the builtin set,
// and installing a registry into a State is one call.
package builtin

import (
	"sort"
	"sync"

	glog "github.com/zboralski/galua/internal/log"
	"github.com/zboralski/galua/internal/vm"
)

// Def defines a builtin with its global name and implementation.
type Def struct {
	Name     string   // Global name (e.g. "print", "tostring")
	Aliases  []string // Alternative global names
	Fn       vm.GoFunc
	Category string // For logging and traces: "base", "io", ...
}

// Registry holds all registered builtin definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Def // global name -> definition

	// OnCall observes every builtin invocation, feeding the trace
	// collector when the CLI runs with --debug.
	OnCall func(category, name, detail string)
}

// DefaultRegistry is the global registry used by init() functions.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new builtin registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds a builtin definition to the registry.
// Called from init() functions in builtin packages.
func (r *Registry) Register(def Def) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs[def.Name] = &def
	for _, alias := range def.Aliases {
		r.defs[alias] = &def
	}

	if Debug && glog.L != nil {
		glog.L.Debug("registered builtin")
	}
}

// RegisterFunc is a convenience method to register a simple builtin.
func (r *Registry) RegisterFunc(category, name string, fn vm.GoFunc, aliases ...string) {
	r.Register(Def{
		Name:     name,
		Aliases:  aliases,
		Fn:       fn,
		Category: category,
	})
}

// Install registers every builtin as a global function value in the state.
// Each installed function reports its invocations through the registry's
// OnCall callback. Returns the number installed.
func (r *Registry) Install(st *vm.State) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	installed := 0
	seen := make(map[*Def]bool)

	for name, def := range r.defs {
		if name != def.Name && seen[def] {
			// alias of an already-installed def: still register the name
			st.Register(name, vm.NewGoClosure(name, r.wrap(def)))
			installed++
			continue
		}
		seen[def] = true
		st.Register(name, vm.NewGoClosure(name, r.wrap(def)))
		installed++

		if Debug && glog.L != nil {
			glog.L.BuiltinInstall(def.Category, name)
		}
	}

	return installed
}

// wrap decorates a builtin so every call flows through Log.
func (r *Registry) wrap(def *Def) vm.GoFunc {
	fn := def.Fn
	category, name := def.Category, def.Name
	return func(s *vm.State) int {
		r.Log(category, name, "")
		return fn(s)
	}
}

// Log calls the OnCall callback and logs via zap.
// This is the primary way builtins report their activity.
func (r *Registry) Log(category, name, detail string) {
	r.mu.RLock()
	cb := r.OnCall
	r.mu.RUnlock()

	if cb != nil {
		cb(category, name, detail)
	}

	if glog.L != nil {
		glog.L.BuiltinCall(category, name, detail)
	}
}

// Count returns the number of registered builtins (aliases included).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// List returns all registered builtin names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Debug enables verbose logging during registration and installation.
var Debug = false

// Convenience functions for the default registry

// Register adds a builtin to the default registry.
func Register(def Def) {
	DefaultRegistry.Register(def)
}

// RegisterFunc adds a simple builtin to the default registry.
func RegisterFunc(category, name string, fn vm.GoFunc, aliases ...string) {
	DefaultRegistry.RegisterFunc(category, name, fn, aliases...)
}

// Install installs the default registry into a state.
func Install(st *vm.State) int {
	return DefaultRegistry.Install(st)
}
