package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh, uninitialized engine instance.
type Factory func() Engine

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an engine available under name. It panics on a duplicate
// or nil registration, matching database/sql driver semantics: both are
// programmer errors at init time.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("engine: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for engine " + name)
	}
	registry[name] = factory
}

// New returns a fresh instance of the named engine.
func New(name string) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered engine names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
