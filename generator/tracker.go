package generator

import (
	"fmt"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// defaultMaxUniqueValues allows one legitimate "unconstrained to
// constrained" refinement per position before hard failure.
const defaultMaxUniqueValues = 2

// ValueTracker detects incompatible constraint tuples recorded under
// one parameter name across repeated builds, e.g. one build per
// target. It is shared by reference across every instance spawned from
// one logical compilation request; callers parallelizing across
// targets must serialize access themselves.
type ValueTracker struct {
	max     int
	history map[string][][]pipeline.Expr
}

// NewValueTracker returns a tracker with the default distinct-value limit.
func NewValueTracker() *ValueTracker {
	return NewValueTrackerWithLimit(defaultMaxUniqueValues)
}

// NewValueTrackerWithLimit returns a tracker permitting at most max
// distinct values per tuple position.
func NewValueTrackerWithLimit(max int) *ValueTracker {
	return &ValueTracker{max: max, history: make(map[string][][]pipeline.Expr)}
}

// TrackValues records a constraint tuple for name. The first call for
// a name seeds its history; later calls must carry a tuple of the same
// length (a length change is a structural defect, not data drift, and
// panics). Each position's new value is compared against the most
// recently recorded one; provably equal values are dropped, distinct
// ones are appended, and exceeding the limit fails with every distinct
// value seen at that position.
func (t *ValueTracker) TrackValues(name string, values []pipeline.Expr) error {
	history, ok := t.history[name]
	if !ok {
		history = make([][]pipeline.Expr, len(values))
		for i, v := range values {
			history[i] = []pipeline.Expr{v}
		}
		t.history[name] = history
		return nil
	}

	if len(history) != len(values) {
		panic(fmt.Sprintf("generator: internal: expected values of size %d but saw size %d for name %q",
			len(history), len(values), name))
	}

	// For each position, see if we have a new unique value.
	for i, newval := range values {
		oldval := history[i][len(history[i])-1]
		if pipeline.ProveEqual(oldval, newval) {
			continue
		}
		history[i] = append(history[i], newval)
		if len(history[i]) > t.max {
			seen := make([]string, len(history[i]))
			for j, v := range history[i] {
				seen[j] = v.String()
			}
			return loom.NewDriftError(name, i, t.max, seen)
		}
	}
	t.history[name] = history
	return nil
}
