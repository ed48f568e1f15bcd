package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/config"
)

// ErrUnknownScript is returned by Lookup for a name nobody registered.
var ErrUnknownScript = errors.New("unknown script")

// Factory builds an engine. It must not allocate browser or file resources;
// those belong to Run.
type Factory func(cfg *config.Config, logger *zap.Logger) schemas.Engine

// Registry maps script names to engine factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry holds every engine this binary ships.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(DamcoTrackingName, NewDamcoTracking)
	return r
}

func (r *Registry) Register(name string, f Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || f == nil {
		return errors.New("script name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("script %q is already registered", name)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for name, or an error wrapping ErrUnknownScript.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScript, name, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Names returns the registered script names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
