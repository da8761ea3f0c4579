package bridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

const registryLogPrefix = "bridge:registry"

// HandlerFunc executes one command against host state and returns a plain
// result value or an error. Handlers run only on the tick pump goroutine, so
// they may read and mutate host state without additional locking. Handlers
// never write to sockets; the envelope contract is applied by the dispatcher.
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// HandlerRegistry maps command type names to handlers. The mapping is
// established at startup, before the listener starts; lookups are read-only
// afterwards. Names match exactly and case-sensitively.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewHandlerRegistry creates an empty HandlerRegistry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a command type name to a handler. Registering an empty name,
// a nil handler, or a name that is already taken is an error.
func (r *HandlerRegistry) Register(name string, handler HandlerFunc) error {
	if name == "" {
		return fmt.Errorf("%s - command name must not be empty", registryLogPrefix)
	}
	if handler == nil {
		return fmt.Errorf("%s - handler for %s must not be nil", registryLogPrefix, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%s - command %s is already registered", registryLogPrefix, name)
	}
	r.handlers[name] = handler
	return nil
}

// Lookup returns the handler registered under name, if any.
func (r *HandlerRegistry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered command names, sorted.
func (r *HandlerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
