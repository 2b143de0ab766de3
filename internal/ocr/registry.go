package ocr

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds OCR engines in registration order. Registration order
// is recognition order: the first engine that produces text wins, so
// register the preferred engine first.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
	logger  *slog.Logger
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an engine under its name. Re-registering a name
// replaces the engine but keeps its position.
func (r *Registry) Register(engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := engine.Name()
	if _, ok := r.engines[name]; !ok {
		r.order = append(r.order, name)
	}
	r.engines[name] = engine
	if r.logger != nil {
		r.logger.Info("registered OCR engine", "name", name)
	}
}

// Unregister removes an engine by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[name]; !ok {
		return
	}
	delete(r.engines, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.logger != nil {
		r.logger.Info("unregistered OCR engine", "name", name)
	}
}

// Get returns an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("OCR engine not found: %s", name)
	}
	return engine, nil
}

// Has checks if an engine is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.engines[name]
	return ok
}

// List returns registered engine names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Engines returns registered engines in registration order.
func (r *Registry) Engines() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engines := make([]Engine, 0, len(r.order))
	for _, name := range r.order {
		engines = append(engines, r.engines[name])
	}
	return engines
}
