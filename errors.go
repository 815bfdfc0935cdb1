package loom

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for user-facing validation failures.
// Internal-contract violations are never returned as errors; they
// panic, because they indicate a defect in the framework or in how a
// generator's declarations were assembled.
var (
	// ErrInvalidName is returned when a declared name is not a valid identifier.
	ErrInvalidName = errors.New("loom: invalid name")

	// ErrDuplicateName is returned when a name is declared or registered twice.
	ErrDuplicateName = errors.New("loom: duplicate name")

	// ErrNotFound is returned when a requested generator does not exist.
	ErrNotFound = errors.New("loom: generator not found")

	// ErrWrongPhase is returned when an operation is attempted outside
	// the phase that permits it.
	ErrWrongPhase = errors.New("loom: operation not permitted in this phase")

	// ErrUnspecified is returned when a lazily-resolved property (array
	// size, type, dimensions) is read before it was set or inferred.
	ErrUnspecified = errors.New("loom: property unspecified")

	// ErrMismatch is returned when an observed value conflicts with a
	// property that was already fixed.
	ErrMismatch = errors.New("loom: property mismatch")

	// ErrMixedDeclarations is returned when legacy pipeline params are
	// combined with modern inputs or outputs on one generator.
	ErrMixedDeclarations = errors.New("loom: mixed declaration styles")

	// ErrConstraintDrift is returned when a named parameter accumulates
	// more distinct constraint values across builds than permitted.
	ErrConstraintDrift = errors.New("loom: constraint drift")

	// ErrUnknownParam is returned when a configuration value names a
	// param the generator does not declare.
	ErrUnknownParam = errors.New("loom: unknown param")
)

// NameError reports an invalid or duplicate declared name.
type NameError struct {
	name   string
	reason string
	dup    bool
}

// Error returns the error string.
func (e *NameError) Error() string {
	return fmt.Sprintf("loom: %s: %q", e.reason, e.name)
}

// Is reports whether the target matches the sentinel for this error.
func (e *NameError) Is(err error) bool {
	if e.dup {
		return err == ErrDuplicateName
	}
	return err == ErrInvalidName
}

// Name returns the offending name.
func (e *NameError) Name() string { return e.name }

// NewNameError returns a NameError for an invalid identifier.
func NewNameError(name, reason string) *NameError {
	return &NameError{name: name, reason: reason}
}

// NewDuplicateNameError returns a NameError for a name declared twice.
func NewDuplicateNameError(name, reason string) *NameError {
	return &NameError{name: name, reason: reason, dup: true}
}

// IsInvalidName returns true if the error reports an invalid identifier.
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsDuplicateName returns true if the error reports a duplicated name.
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// NotFoundError reports a generator-name lookup failure. It carries
// every currently registered name so callers can present alternatives.
type NotFoundError struct {
	name  string
	known []string
}

// Error returns the error string, enumerating the known generators.
func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loom: generator not found: %s", e.name)
	if len(e.known) == 0 {
		b.WriteString("; no generators are registered")
		return b.String()
	}
	b.WriteString("; did you mean one of:")
	for _, n := range e.known {
		b.WriteString(" ")
		b.WriteString(n)
	}
	return b.String()
}

// Is reports whether the target matches ErrNotFound.
func (e *NotFoundError) Is(err error) bool { return err == ErrNotFound }

// Name returns the name that was looked up.
func (e *NotFoundError) Name() string { return e.name }

// Known returns the names that were registered at lookup time.
func (e *NotFoundError) Known() []string { return e.known }

// NewNotFoundError returns a NotFoundError for the given lookup.
func NewNotFoundError(name string, known []string) *NotFoundError {
	return &NotFoundError{name: name, known: known}
}

// IsNotFound returns true if the error is a generator-lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PhaseError reports an operation attempted outside its permitted phase.
type PhaseError struct {
	op      string
	current string
	want    string
}

// Error returns the error string.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("loom: cannot %s in phase %s (requires %s)", e.op, e.current, e.want)
}

// Is reports whether the target matches ErrWrongPhase.
func (e *PhaseError) Is(err error) bool { return err == ErrWrongPhase }

// NewPhaseError returns a PhaseError for op attempted during current.
func NewPhaseError(op, current, want string) *PhaseError {
	return &PhaseError{op: op, current: current, want: want}
}

// IsWrongPhase returns true if the error reports a phase-order violation.
func IsWrongPhase(err error) bool {
	return errors.Is(err, ErrWrongPhase)
}

// UnspecifiedError reports a read of an array size, type, or dimension
// count that was never set and could not be inferred. Hint names the
// synthetic param that would fix the property.
type UnspecifiedError struct {
	entity   string
	property string
	hint     string
}

// Error returns the error string.
func (e *UnspecifiedError) Error() string {
	s := fmt.Sprintf("loom: %s is unspecified for %s", e.property, e.entity)
	if e.hint != "" {
		s += fmt.Sprintf("; you may need to set %q", e.hint)
	}
	return s
}

// Is reports whether the target matches ErrUnspecified.
func (e *UnspecifiedError) Is(err error) bool { return err == ErrUnspecified }

// NewUnspecifiedError returns an UnspecifiedError for the given property.
func NewUnspecifiedError(entity, property, hint string) *UnspecifiedError {
	return &UnspecifiedError{entity: entity, property: property, hint: hint}
}

// IsUnspecified returns true if the error reports an unresolved property.
func IsUnspecified(err error) bool {
	return errors.Is(err, ErrUnspecified)
}

// MismatchError reports an observed value conflicting with a fixed
// property, naming both values.
type MismatchError struct {
	entity   string
	property string
	expected string
	actual   string
}

// Error returns the error string.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("loom: %s mismatch for %s: expected %s, saw %s",
		e.property, e.entity, e.expected, e.actual)
}

// Is reports whether the target matches ErrMismatch.
func (e *MismatchError) Is(err error) bool { return err == ErrMismatch }

// Expected returns the fixed value.
func (e *MismatchError) Expected() string { return e.expected }

// Actual returns the conflicting observed value.
func (e *MismatchError) Actual() string { return e.actual }

// NewMismatchError returns a MismatchError naming both values.
func NewMismatchError(entity, property, expected, actual string) *MismatchError {
	return &MismatchError{entity: entity, property: property, expected: expected, actual: actual}
}

// IsMismatch returns true if the error reports a fixed-property conflict.
func IsMismatch(err error) bool {
	return errors.Is(err, ErrMismatch)
}

// DriftError reports a named parameter that accumulated more distinct
// constraint values across builds than the tracker permits.
type DriftError struct {
	name     string
	position int
	max      int
	values   []string
}

// Error returns the error string, listing every distinct value seen.
func (e *DriftError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loom: saw too many unique values for %s[%d]; expected a maximum of %d:",
		e.name, e.position, e.max)
	for _, v := range e.values {
		b.WriteString("\n    ")
		b.WriteString(v)
	}
	return b.String()
}

// Is reports whether the target matches ErrConstraintDrift.
func (e *DriftError) Is(err error) bool { return err == ErrConstraintDrift }

// Values returns every distinct value recorded at the position.
func (e *DriftError) Values() []string { return e.values }

// NewDriftError returns a DriftError for the given parameter position.
func NewDriftError(name string, position, max int, values []string) *DriftError {
	return &DriftError{name: name, position: position, max: max, values: values}
}

// IsConstraintDrift returns true if the error reports constraint drift.
func IsConstraintDrift(err error) bool {
	return errors.Is(err, ErrConstraintDrift)
}

// UnknownParamError reports a configuration value addressed to a param
// the generator does not declare.
type UnknownParamError struct {
	generator string
	param     string
}

// Error returns the error string.
func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("loom: generator %s has no param named %q", e.generator, e.param)
}

// Is reports whether the target matches ErrUnknownParam.
func (e *UnknownParamError) Is(err error) bool { return err == ErrUnknownParam }

// NewUnknownParamError returns an UnknownParamError.
func NewUnknownParamError(generator, param string) *UnknownParamError {
	return &UnknownParamError{generator: generator, param: param}
}

// IsUnknownParam returns true if the error reports an unknown param name.
func IsUnknownParam(err error) bool {
	return errors.Is(err, ErrUnknownParam)
}
