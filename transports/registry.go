package transports

import (
	"fmt"
	"sort"
	"sync"

	"github.com/petal-labs/giga/core"
)

// Factory creates a transport from a shared Config.
type Factory func(cfg Config) core.Transport

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a transport factory to the registry.
// It is typically called from a transport's init() function.
// Registering the same name twice overwrites the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a transport factory by name, or nil if it is not registered.
func Get(name string) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// Create builds a transport by name. Defaults are applied to cfg first.
func Create(name string, cfg Config) (core.Transport, error) {
	factory := Get(name)
	if factory == nil {
		return nil, fmt.Errorf("unknown transport: %s (available: %v)", name, List())
	}
	return factory(cfg.WithDefaults()), nil
}

// List returns the names of all registered transports in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a transport with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
