package generator

import (
	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// Context carries the build-wide state one generator instance is
// created against: the target, scheduling flags, and the collections
// shared across every instance of one logical compilation request (the
// value tracker and the externs map).
type Context struct {
	target        loom.Target
	autoSchedule  bool
	machineParams string

	tracker *ValueTracker
	externs map[string]pipeline.ExternSource
}

// NewContext returns a fresh context for the given target with its own
// shared tracker and externs collection.
func NewContext(target loom.Target) *Context {
	return &Context{
		target:        target,
		machineParams: defaultMachineParams,
		tracker:       NewValueTracker(),
		externs:       make(map[string]pipeline.ExternSource),
	}
}

// ForTarget returns a context for another target that shares this
// context's tracker and externs collection. Use it to spawn the
// per-target instances of one multi-target request.
func (c *Context) ForTarget(target loom.Target) *Context {
	return &Context{
		target:        target,
		autoSchedule:  c.autoSchedule,
		machineParams: c.machineParams,
		tracker:       c.tracker,
		externs:       c.externs,
	}
}

// WithAutoSchedule toggles automatic scheduling for instances created
// against the context.
func (c *Context) WithAutoSchedule(on bool) *Context {
	c.autoSchedule = on
	return c
}

// Target returns the context target.
func (c *Context) Target() loom.Target { return c.target }

// AutoSchedule reports whether automatic scheduling was requested.
func (c *Context) AutoSchedule() bool { return c.autoSchedule }

// Tracker returns the shared cross-build consistency tracker.
func (c *Context) Tracker() *ValueTracker { return c.tracker }

// AddExtern registers an extern definition to be appended to every
// module built under this context.
func (c *Context) AddExtern(e pipeline.ExternSource) {
	c.externs[e.Name] = e
}
