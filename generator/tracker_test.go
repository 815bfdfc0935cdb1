package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/loom"
	"github.com/syssam/loom/generator"
	"github.com/syssam/loom/pipeline"
)

func TestTrackValues(t *testing.T) {
	t.Run("RepeatedEqualValues", func(t *testing.T) {
		tr := generator.NewValueTracker()
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(5)}))
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(5)}))
		// Still only one recorded value, so two more distinct ones fit.
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(6)}))
	})

	t.Run("ThirdDistinctValueFails", func(t *testing.T) {
		tr := generator.NewValueTracker()
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(5)}))
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(6)}))
		err := tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(7)})
		require.Error(t, err)
		assert.True(t, loom.IsConstraintDrift(err))
		assert.Contains(t, err.Error(), "5")
		assert.Contains(t, err.Error(), "6")
		assert.Contains(t, err.Error(), "7")
	})

	t.Run("UndefinedToDefinedRefinement", func(t *testing.T) {
		tr := generator.NewValueTracker()
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{{}}))
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(32)}))
		err := tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(64)})
		assert.True(t, loom.IsConstraintDrift(err))
	})

	t.Run("ProvablyEqualFolds", func(t *testing.T) {
		tr := generator.NewValueTracker()
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(4)}))
		sum := pipeline.Add(pipeline.Const(2), pipeline.Const(2))
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{sum}))
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(8)}))
	})

	t.Run("PerPositionHistories", func(t *testing.T) {
		tr := generator.NewValueTracker()
		two := []pipeline.Expr{pipeline.Const(1), pipeline.Const(2)}
		require.NoError(t, tr.TrackValues("img", two))
		require.NoError(t, tr.TrackValues("img", []pipeline.Expr{pipeline.Const(1), pipeline.Const(3)}))
		err := tr.TrackValues("img", []pipeline.Expr{pipeline.Const(1), pipeline.Const(4)})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "img[0]")
		assert.Contains(t, err.Error(), "img[1]")
	})

	t.Run("LengthMismatchPanics", func(t *testing.T) {
		tr := generator.NewValueTracker()
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(1)}))
		assert.Panics(t, func() {
			_ = tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(1), pipeline.Const(2)})
		})
	})

	t.Run("CustomLimit", func(t *testing.T) {
		tr := generator.NewValueTrackerWithLimit(1)
		require.NoError(t, tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(1)}))
		err := tr.TrackValues("buf", []pipeline.Expr{pipeline.Const(2)})
		assert.True(t, loom.IsConstraintDrift(err))
	})
}
