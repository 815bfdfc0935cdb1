package generator

import (
	"fmt"

	"github.com/syssam/loom"
)

// Phase tracks how far a generator instance has advanced through its
// lifecycle. Phases are strictly monotonic; the only permitted skip is
// Created directly to GenerateCalled, for generators that bind their
// inputs implicitly.
type Phase uint8

const (
	// Created means the instance exists but nothing has been bound.
	Created Phase = iota
	// InputsSet means the inputs were bound through SetInputs.
	InputsSet
	// GenerateCalled means the generate step has run.
	GenerateCalled
	// ScheduleCalled means the schedule step has run.
	ScheduleCalled
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Created:
		return "Created"
	case InputsSet:
		return "InputsSet"
	case GenerateCalled:
		return "GenerateCalled"
	case ScheduleCalled:
		return "ScheduleCalled"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// checkMinPhase fails unless the instance has reached want.
func (g *Generator) checkMinPhase(op string, want Phase) error {
	if g.phase < want {
		return loom.NewPhaseError(op, g.phase.String(), "at least "+want.String())
	}
	return nil
}

// checkExactPhase fails unless the instance is exactly at want.
func (g *Generator) checkExactPhase(op string, want Phase) error {
	if g.phase != want {
		return loom.NewPhaseError(op, g.phase.String(), "exactly "+want.String())
	}
	return nil
}

// advancePhase moves the instance forward by one declared transition.
func (g *Generator) advancePhase(next Phase) error {
	switch next {
	case Created:
		panic("generator: internal: cannot advance to Created")
	case InputsSet:
		if g.phase != Created {
			return loom.NewPhaseError("set inputs", g.phase.String(), Created.String())
		}
	case GenerateCalled:
		// Skipping InputsSet is allowed for implicitly bound inputs.
		if g.phase != Created && g.phase != InputsSet {
			return loom.NewPhaseError("generate", g.phase.String(), Created.String()+" or "+InputsSet.String())
		}
	case ScheduleCalled:
		if g.phase != GenerateCalled {
			return loom.NewPhaseError("schedule", g.phase.String(), GenerateCalled.String())
		}
	}
	g.phase = next
	return nil
}
