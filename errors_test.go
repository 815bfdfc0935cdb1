package loom_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/loom"
)

func TestNameError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := loom.NewNameError("_x", "invalid name")
		assert.Equal(t, `loom: invalid name: "_x"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := loom.NewNameError("1a", "invalid name")
		assert.True(t, errors.Is(err, loom.ErrInvalidName))
		assert.False(t, errors.Is(err, loom.ErrDuplicateName))
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := loom.NewDuplicateNameError("gp0", "duplicate name")
		assert.True(t, errors.Is(err, loom.ErrDuplicateName))
		assert.False(t, errors.Is(err, loom.ErrInvalidName))
		assert.True(t, loom.IsDuplicateName(err))
	})

	t.Run("IsInvalidName", func(t *testing.T) {
		err := loom.NewNameError("a__b", "invalid name")
		assert.True(t, loom.IsInvalidName(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, loom.IsInvalidName(wrapped))

		// Sentinel error
		assert.True(t, loom.IsInvalidName(loom.ErrInvalidName))

		// Non-matching error
		assert.False(t, loom.IsInvalidName(errors.New("other error")))
		assert.False(t, loom.IsInvalidName(nil))
	})
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := loom.NewNotFoundError("blur", []string{"brighten", "sharpen"})
		assert.Equal(t, "loom: generator not found: blur; did you mean one of: brighten sharpen", err.Error())
	})

	t.Run("NoneRegistered", func(t *testing.T) {
		err := loom.NewNotFoundError("blur", nil)
		assert.Equal(t, "loom: generator not found: blur; no generators are registered", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := loom.NewNotFoundError("blur", nil)
		assert.True(t, errors.Is(err, loom.ErrNotFound))
		assert.True(t, loom.IsNotFound(err))
		assert.Equal(t, "blur", err.Name())
	})
}

func TestPhaseError(t *testing.T) {
	err := loom.NewPhaseError("schedule", "Created", "GenerateCalled")
	assert.Equal(t, "loom: cannot schedule in phase Created (requires GenerateCalled)", err.Error())
	assert.True(t, errors.Is(err, loom.ErrWrongPhase))
	assert.True(t, loom.IsWrongPhase(err))
	assert.False(t, loom.IsWrongPhase(errors.New("other")))
}

func TestUnspecifiedError(t *testing.T) {
	t.Run("WithHint", func(t *testing.T) {
		err := loom.NewUnspecifiedError("input", "type", "input.type")
		assert.Equal(t, `loom: type is unspecified for input; you may need to set "input.type"`, err.Error())
		assert.True(t, loom.IsUnspecified(err))
	})

	t.Run("WithoutHint", func(t *testing.T) {
		err := loom.NewUnspecifiedError("output_0", "value", "")
		assert.Equal(t, "loom: value is unspecified for output_0", err.Error())
	})
}

func TestMismatchError(t *testing.T) {
	err := loom.NewMismatchError("output", "type", "int32", "float64")
	assert.Equal(t, "loom: type mismatch for output: expected int32, saw float64", err.Error())
	assert.True(t, errors.Is(err, loom.ErrMismatch))
	assert.True(t, loom.IsMismatch(err))
	assert.Equal(t, "int32", err.Expected())
	assert.Equal(t, "float64", err.Actual())
}

func TestDriftError(t *testing.T) {
	err := loom.NewDriftError("buf", 2, 2, []string{"32", "96", "4"})
	assert.Equal(t, "loom: saw too many unique values for buf[2]; expected a maximum of 2:\n    32\n    96\n    4", err.Error())
	assert.True(t, errors.Is(err, loom.ErrConstraintDrift))
	assert.True(t, loom.IsConstraintDrift(err))
	assert.Len(t, err.Values(), 3)
}

func TestUnknownParamError(t *testing.T) {
	err := loom.NewUnknownParamError("brighten", "gp9")
	assert.Equal(t, `loom: generator brighten has no param named "gp9"`, err.Error())
	assert.True(t, errors.Is(err, loom.ErrUnknownParam))
	assert.True(t, loom.IsUnknownParam(err))
}
