package generator

import (
	"sort"
	"sync"

	"github.com/syssam/loom"
)

// Factory constructs a fresh generator instance against a context.
type Factory func(*Context) (*Generator, error)

// descriptor associates a registered name with its factory and the
// qualified stub name used by the emitters.
type descriptor struct {
	factory  Factory
	stubName string
}

// registry is the process-wide name-to-factory table. The lock guards
// table access only; it is never held across a factory invocation.
type registry struct {
	mu        sync.Mutex
	factories map[string]descriptor
}

var defaultRegistry = &registry{factories: make(map[string]descriptor)}

// RegisterOption customizes a registration.
type RegisterOption func(*descriptor)

// WithStubName sets the dot-qualified stub name ("pkg.sub.Class") the
// emitters use for the wrapper's namespaces and class name. It
// defaults to the registered name.
func WithStubName(stubName string) RegisterOption {
	return func(d *descriptor) { d.stubName = stubName }
}

// Register adds a named factory to the process-wide table. The name
// must be a valid identifier and must not already be registered.
// Generator declarations call this at process startup.
func Register(name string, factory Factory, opts ...RegisterOption) error {
	if !loom.ValidName(name) {
		return loom.NewNameError(name, "invalid generator name")
	}
	d := descriptor{factory: factory, stubName: name}
	for _, opt := range opts {
		opt(&d)
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.factories[name]; ok {
		return loom.NewDuplicateNameError(name, "duplicate generator name")
	}
	defaultRegistry.factories[name] = d
	return nil
}

// Unregister removes a named factory. It fails if the name is absent.
func Unregister(name string) error {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	if _, ok := defaultRegistry.factories[name]; !ok {
		return loom.NewNotFoundError(name, knownLocked())
	}
	delete(defaultRegistry.factories, name)
	return nil
}

// Create looks up a factory by name and constructs an instance bound
// to ctx. An unknown name fails with an error enumerating every
// registered generator. The factory runs outside the registry lock.
func Create(name string, ctx *Context) (*Generator, error) {
	defaultRegistry.mu.Lock()
	d, ok := defaultRegistry.factories[name]
	known := knownLocked()
	defaultRegistry.mu.Unlock()
	if !ok {
		return nil, loom.NewNotFoundError(name, known)
	}
	g, err := d.factory(ctx)
	if err != nil {
		return nil, err
	}
	if g == nil {
		panic("generator: internal: factory for " + name + " returned nil")
	}
	if err := g.setNames(name, d.stubName); err != nil {
		return nil, err
	}
	return g, nil
}

// Enumerate returns every registered name, sorted.
func Enumerate() []string {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	return knownLocked()
}

// Reset clears the table. Intended for tests.
func Reset() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.factories = make(map[string]descriptor)
}

// knownLocked returns the sorted registered names. Callers must hold
// the registry lock.
func knownLocked() []string {
	names := make([]string, 0, len(defaultRegistry.factories))
	for n := range defaultRegistry.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
