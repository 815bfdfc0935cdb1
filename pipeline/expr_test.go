package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

func TestExprDefined(t *testing.T) {
	var undef pipeline.Expr
	assert.False(t, undef.Defined())
	assert.True(t, pipeline.Const(1).Defined())
}

func TestExprString(t *testing.T) {
	assert.Equal(t, "(undefined)", pipeline.Expr{}.String())
	assert.Equal(t, "42", pipeline.Const(42).String())
	assert.Equal(t, "true", pipeline.BoolConst(true).String())
	assert.Equal(t, "1.5", pipeline.Const(1.5).String())

	x := pipeline.Var("x")
	assert.Equal(t, "(x + 2)", pipeline.Add(x, pipeline.Const(2)).String())
	assert.Equal(t, "(x*3)", pipeline.Mul(x, pipeline.Const(3)).String())
}

func TestProveEqual(t *testing.T) {
	t.Run("BothUndefined", func(t *testing.T) {
		assert.True(t, pipeline.ProveEqual(pipeline.Expr{}, pipeline.Expr{}))
	})

	t.Run("OneUndefined", func(t *testing.T) {
		assert.False(t, pipeline.ProveEqual(pipeline.Expr{}, pipeline.Const(0)))
		assert.False(t, pipeline.ProveEqual(pipeline.Const(0), pipeline.Expr{}))
	})

	t.Run("Constants", func(t *testing.T) {
		assert.True(t, pipeline.ProveEqual(pipeline.Const(5), pipeline.Const(5)))
		assert.False(t, pipeline.ProveEqual(pipeline.Const(5), pipeline.Const(6)))
	})

	t.Run("Folded", func(t *testing.T) {
		sum := pipeline.Add(pipeline.Const(2), pipeline.Const(3))
		assert.True(t, pipeline.ProveEqual(sum, pipeline.Const(5)))
	})

	t.Run("TypeMatters", func(t *testing.T) {
		a := pipeline.IntConst(loom.Int(32), 1)
		b := pipeline.IntConst(loom.Int(64), 1)
		assert.False(t, pipeline.ProveEqual(a, b))
	})

	t.Run("ParamsByIdentity", func(t *testing.T) {
		p := pipeline.NewParameter(loom.Int(32), false, 0, "p")
		q := pipeline.NewParameter(loom.Int(32), false, 0, "p")
		assert.True(t, pipeline.ProveEqual(pipeline.ParamRef(p), pipeline.ParamRef(p)))
		assert.False(t, pipeline.ProveEqual(pipeline.ParamRef(p), pipeline.ParamRef(q)))
	})
}

func TestConstraints(t *testing.T) {
	t.Run("Scalar", func(t *testing.T) {
		p := pipeline.NewParameter(loom.Int(32), false, 0, "gp")
		p.SetMinValue(pipeline.Const(0))
		values := pipeline.Constraints(p)
		// Alignment, min, max.
		require.Len(t, values, 3)
		assert.Equal(t, "1", values[0].String())
		assert.Equal(t, "0", values[1].String())
		assert.False(t, values[2].Defined())
	})

	t.Run("Buffer", func(t *testing.T) {
		p := pipeline.NewParameter(loom.UInt(8), true, 2, "img")
		p.SetHostAlignment(32)
		p.SetExtentConstraint(0, pipeline.Const(128))
		values := pipeline.Constraints(p)
		// Alignment plus min/extent/stride per dimension.
		require.Len(t, values, 7)
		assert.Equal(t, "32", values[0].String())
		assert.Equal(t, "128", values[2].String())
	})
}

func TestFuncDefine(t *testing.T) {
	f := pipeline.NewFunc("f")
	assert.False(t, f.Defined())

	x := pipeline.Var("x")
	require.NoError(t, f.Define([]string{"x"}, pipeline.Add(x, pipeline.Const(1))))
	assert.True(t, f.Defined())
	assert.Equal(t, 1, f.Dimensions())
	assert.Equal(t, 1, f.Outputs())
	assert.Equal(t, []loom.Type{loom.Int(32)}, f.OutputTypes())

	t.Run("Redefine", func(t *testing.T) {
		assert.Error(t, f.Define([]string{"x"}, x))
	})

	t.Run("UndefinedValue", func(t *testing.T) {
		g := pipeline.NewFunc("g")
		assert.Error(t, g.Define([]string{"x"}, pipeline.Expr{}))
	})
}

func TestRealize(t *testing.T) {
	t.Run("OneDim", func(t *testing.T) {
		f := pipeline.NewFunc("iota")
		x := pipeline.Var("x")
		require.NoError(t, f.Define([]string{"x"}, pipeline.Mul(x, pipeline.Const(2))))

		p, err := pipeline.NewPipeline([]*pipeline.Func{f})
		require.NoError(t, err)
		bufs, err := p.Realize([]int{4})
		require.NoError(t, err)
		require.Len(t, bufs, 1)
		for i := 0; i < 4; i++ {
			assert.Equal(t, int64(2*i), bufs[0].Int(i))
		}
	})

	t.Run("TwoDim", func(t *testing.T) {
		f := pipeline.NewFunc("grid")
		x, y := pipeline.Var("x"), pipeline.Var("y")
		require.NoError(t, f.Define([]string{"x", "y"}, pipeline.Add(x, pipeline.Mul(y, pipeline.Const(10)))))

		p, err := pipeline.NewPipeline([]*pipeline.Func{f})
		require.NoError(t, err)
		bufs, err := p.Realize([]int{3, 2})
		require.NoError(t, err)
		assert.Equal(t, int64(11), bufs[0].Int(1, 1))
	})

	t.Run("ScalarParam", func(t *testing.T) {
		offset := pipeline.NewParameter(loom.Int(32), false, 0, "offset")
		offset.SetScalar(pipeline.Const(7))
		f := pipeline.NewFunc("shift")
		x := pipeline.Var("x")
		require.NoError(t, f.Define([]string{"x"}, pipeline.Add(x, pipeline.ParamRef(offset))))

		p, err := pipeline.NewPipeline([]*pipeline.Func{f})
		require.NoError(t, err)
		bufs, err := p.Realize([]int{2})
		require.NoError(t, err)
		assert.Equal(t, int64(8), bufs[0].Int(1))
	})

	t.Run("UnboundParam", func(t *testing.T) {
		v := pipeline.NewParameter(loom.Int(32), false, 0, "v")
		f := pipeline.NewFunc("h")
		require.NoError(t, f.Define(nil, pipeline.ParamRef(v)))
		p, err := pipeline.NewPipeline([]*pipeline.Func{f})
		require.NoError(t, err)
		_, err = p.Realize(nil)
		assert.ErrorContains(t, err, "no bound value")
	})

	t.Run("BufferParam", func(t *testing.T) {
		buf := pipeline.NewBuffer(loom.Int(32), []int{3})
		src := pipeline.NewParameter(loom.Int(32), true, 1, "src")
		src.SetBuffer(buf)
		wrapped := pipeline.ParamFunc(src, "src")

		f := pipeline.NewFunc("copy")
		x := pipeline.Var("x")
		require.NoError(t, f.Define([]string{"x"}, pipeline.Call(wrapped, x)))
		p, err := pipeline.NewPipeline([]*pipeline.Func{f})
		require.NoError(t, err)
		bufs, err := p.Realize([]int{3})
		require.NoError(t, err)
		assert.Equal(t, int64(0), bufs[0].Int(0))
	})
}
