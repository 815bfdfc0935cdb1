package build_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/loom"
	"github.com/syssam/loom/compiler/build"
	"github.com/syssam/loom/generator"
	"github.com/syssam/loom/pipeline"
)

func registerScaler(t *testing.T) {
	t.Helper()
	generator.Reset()
	t.Cleanup(generator.Reset)
	require.NoError(t, generator.Register("scaler", func(ctx *generator.Context) (*generator.Generator, error) {
		g := generator.New(ctx)
		factor := generator.NewIntParam(g, "factor", 1)
		in := generator.NewInput(g, "input", generator.KindScalar, generator.WithType(loom.Int(32)))
		out := generator.NewOutput(g, "output", generator.KindFunction,
			generator.WithType(loom.Int(32)), generator.WithDims(1))
		g.OnGenerate(func() error {
			scaled := pipeline.Mul(in.Expr(), pipeline.IntConst(loom.Int(32), factor.Int64()))
			return out.Define([]string{"x"}, scaled)
		})
		return g, nil
	}))
}

func parseTarget(t *testing.T, s string) loom.Target {
	t.Helper()
	target, err := loom.ParseTarget(s)
	require.NoError(t, err)
	return target
}

func TestCompile(t *testing.T) {
	registerScaler(t)
	dir := t.TempDir()

	targets := []loom.Target{
		parseTarget(t, "x86-64-linux"),
		parseTarget(t, "x86-64-linux-avx2"),
	}
	req := build.Request{
		Generator:    "scaler",
		FunctionName: "scale_by",
		Targets:      targets,
		Params:       map[string]string{"factor": "3"},
		ModulePaths: []string{
			filepath.Join(dir, "scaler-x86.mod"),
			filepath.Join(dir, "scaler-avx2.mod"),
		},
		WrapperPath:  filepath.Join(dir, "scaler.go"),
		MetadataPath: filepath.Join(dir, "scaler.yaml"),
	}
	require.NoError(t, build.Compile(context.Background(), req))

	for i, path := range req.ModulePaths {
		mod, err := pipeline.LoadModule(path)
		require.NoError(t, err)
		assert.Equal(t, "scale_by", mod.Name())
		assert.Equal(t, targets[i].String(), mod.Target().String())
		require.NotEmpty(t, mod.Functions())
		assert.Equal(t, "scale_by", mod.Functions()[0].Name)
	}

	wrapper, err := os.ReadFile(req.WrapperPath)
	require.NoError(t, err)
	assert.Contains(t, string(wrapper), "package scaler")

	meta, err := os.ReadFile(req.MetadataPath)
	require.NoError(t, err)
	assert.Contains(t, string(meta), "name: scaler")
}

func TestCompileDefaultsFunctionName(t *testing.T) {
	registerScaler(t)
	dir := t.TempDir()

	req := build.Request{
		Generator:   "scaler",
		Targets:     []loom.Target{parseTarget(t, "x86-64-linux")},
		ModulePaths: []string{filepath.Join(dir, "scaler.mod")},
	}
	require.NoError(t, build.Compile(context.Background(), req))

	mod, err := pipeline.LoadModule(req.ModulePaths[0])
	require.NoError(t, err)
	assert.Equal(t, "scaler", mod.Name())
}

func TestCompileUnknownGenerator(t *testing.T) {
	generator.Reset()
	t.Cleanup(generator.Reset)

	err := build.Compile(context.Background(), build.Request{
		Generator: "nope",
		Targets:   []loom.Target{parseTarget(t, "x86-64-linux")},
	})
	require.Error(t, err)
	assert.True(t, loom.IsNotFound(err))
}

func TestRequestValidation(t *testing.T) {
	registerScaler(t)
	target := parseTarget(t, "x86-64-linux")

	t.Run("missing generator", func(t *testing.T) {
		err := build.Compile(context.Background(), build.Request{Targets: []loom.Target{target}})
		require.ErrorContains(t, err, "no generator name")
	})
	t.Run("bad function name", func(t *testing.T) {
		err := build.Compile(context.Background(), build.Request{
			Generator:    "scaler",
			FunctionName: "_bad",
			Targets:      []loom.Target{target},
		})
		require.Error(t, err)
		assert.True(t, loom.IsInvalidName(err))
	})
	t.Run("no targets", func(t *testing.T) {
		err := build.Compile(context.Background(), build.Request{Generator: "scaler"})
		require.ErrorContains(t, err, "no targets")
	})
	t.Run("path count mismatch", func(t *testing.T) {
		err := build.Compile(context.Background(), build.Request{
			Generator:   "scaler",
			Targets:     []loom.Target{target},
			ModulePaths: []string{"a.mod", "b.mod"},
		})
		require.ErrorContains(t, err, "module paths")
	})
}

func TestCompileCancelledContext(t *testing.T) {
	registerScaler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := build.Compile(ctx, build.Request{
		Generator: "scaler",
		Targets:   []loom.Target{parseTarget(t, "x86-64-linux")},
	})
	require.ErrorIs(t, err, context.Canceled)
}
