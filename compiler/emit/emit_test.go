package emit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/loom"
	"github.com/syssam/loom/compiler/emit"
	"github.com/syssam/loom/generator"
	"github.com/syssam/loom/pipeline"
)

func adderFactory(ctx *generator.Context) (*generator.Generator, error) {
	g := generator.New(ctx)
	gp0 := generator.NewIntParam(g, "gp0", 0)
	generator.NewBoolParam(g, "vectorize", true)
	in := generator.NewInput(g, "input", generator.KindScalar, generator.WithType(loom.Int(32)))
	out := generator.NewOutput(g, "output", generator.KindFunction,
		generator.WithType(loom.Int(32)), generator.WithDims(1))
	g.OnGenerate(func() error {
		sum := pipeline.Add(in.Expr(), pipeline.IntConst(loom.Int(32), gp0.Int64()))
		return out.Define([]string{"x"}, sum)
	})
	return g, nil
}

func newAdder(t *testing.T) *generator.Generator {
	t.Helper()
	generator.Reset()
	t.Cleanup(generator.Reset)
	require.NoError(t, generator.Register("adder", adderFactory, generator.WithStubName("samples.Adder")))
	g, err := generator.Create("adder", generator.NewContext(loom.HostTarget()))
	require.NoError(t, err)
	return g
}

func TestDescribe(t *testing.T) {
	g := newAdder(t)
	d, err := emit.Describe(g)
	require.NoError(t, err)

	assert.Equal(t, "adder", d.Name)
	assert.Equal(t, "samples.Adder", d.StubName)
	assert.Equal(t, "Adder", d.ClassName)
	assert.Equal(t, []string{"samples"}, d.Namespaces)

	// Context params (target, auto_schedule, machine_params) and
	// synthetics are filtered.
	require.Len(t, d.Params, 2)
	assert.Equal(t, "gp0", d.Params[0].Name)
	assert.Equal(t, "0", d.Params[0].Default)
	assert.Equal(t, "int64", d.Params[0].GoType)
	assert.Equal(t, "vectorize", d.Params[1].Name)
	assert.Equal(t, "true", d.Params[1].Default)

	require.Len(t, d.Inputs, 1)
	assert.Equal(t, generator.KindScalar, d.Inputs[0].Kind)
	assert.Equal(t, 0, d.Inputs[0].Dims)

	require.Len(t, d.Outputs, 1)
	assert.Equal(t, 1, d.Outputs[0].Dims)
	assert.Equal(t, []loom.Type{loom.Int(32)}, d.Outputs[0].Types)
	assert.True(t, d.AllFuncOutputs())
}

func TestWrapper(t *testing.T) {
	g := newAdder(t)
	src, err := emit.Wrapper(g)
	require.NoError(t, err)

	code := string(src)
	assert.Contains(t, code, "package samples")
	assert.Contains(t, code, "type Params struct")
	assert.Contains(t, code, "Gp0 int64")
	assert.Contains(t, code, "Vectorize bool")
	assert.Contains(t, code, "type Inputs struct")
	assert.Contains(t, code, "Input int32")
	assert.Contains(t, code, "generator.ConstValues(i.Input)")
	assert.Contains(t, code, "type Outputs struct")
	assert.Contains(t, code, "func Generate(")
	assert.Contains(t, code, `"adder"`)
	// Sole function-kind output gets the direct accessor.
	assert.Contains(t, code, "func (o Outputs) Func()")
	// All-func outputs get pipeline/realize wrappers.
	assert.Contains(t, code, "func (o Outputs) Realize(")
}

func TestWrapperUnresolvedScalarInput(t *testing.T) {
	generator.Reset()
	t.Cleanup(generator.Reset)
	require.NoError(t, generator.Register("shift", func(ctx *generator.Context) (*generator.Generator, error) {
		g := generator.New(ctx)
		in := generator.NewInput(g, "amount", generator.KindScalar)
		out := generator.NewOutput(g, "output", generator.KindFunction,
			generator.WithType(loom.Int(32)), generator.WithDims(1))
		g.OnGenerate(func() error {
			x := pipeline.Var("x")
			return out.Define([]string{"x"}, pipeline.Add(x, in.Expr()))
		})
		return g, nil
	}))
	g, err := generator.Create("shift", generator.NewContext(loom.HostTarget()))
	require.NoError(t, err)

	src, err := emit.Wrapper(g)
	require.NoError(t, err)
	code := string(src)

	// An input without a resolved element type is exposed as an
	// expression and wrapped with the expression constructor. Wrapping
	// it as a Go constant would reject every value at runtime.
	assert.Contains(t, code, "Amount pipeline.Expr")
	assert.Contains(t, code, "generator.ScalarValues(i.Amount)")
	assert.NotContains(t, code, "generator.ConstValues(i.Amount)")
}

func TestWrapperPlaceholderWithoutOutputs(t *testing.T) {
	generator.Reset()
	t.Cleanup(generator.Reset)
	require.NoError(t, generator.Register("legacy", func(ctx *generator.Context) (*generator.Generator, error) {
		g := generator.New(ctx)
		gain := generator.NewPipelineParam(g, "gain", loom.Int(32))
		g.OnBuild(func() (*pipeline.Pipeline, error) {
			f := pipeline.NewFunc("out")
			if err := f.Define(nil, gain.Expr()); err != nil {
				return nil, err
			}
			return pipeline.NewPipeline([]*pipeline.Func{f})
		})
		return g, nil
	}))
	g, err := generator.Create("legacy", generator.NewContext(loom.HostTarget()))
	require.NoError(t, err)

	src, err := emit.Wrapper(g)
	require.NoError(t, err)
	assert.Contains(t, string(src), "declares no outputs")
	assert.NotContains(t, string(src), "type Params struct")
}

func TestMetadata(t *testing.T) {
	g := newAdder(t)
	data, err := emit.Metadata(g)
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Content, 1)
	root := doc.Content[0]
	require.Equal(t, yaml.MappingNode, root.Kind)

	keys := make([]string, 0, len(root.Content)/2)
	byKey := make(map[string]*yaml.Node)
	for i := 0; i < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
		byKey[root.Content[i].Value] = root.Content[i+1]
	}
	assert.Equal(t, []string{
		"name", "stub-name", "class-name", "namespaces", "params",
		"inputs", "outputs", "outputs-all-funcs", "input-info", "output-info",
	}, keys)

	assert.Equal(t, "adder", byKey["name"].Value)
	assert.Equal(t, "samples.Adder", byKey["stub-name"].Value)
	assert.Equal(t, "Adder", byKey["class-name"].Value)
	assert.Equal(t, "true", byKey["outputs-all-funcs"].Value)

	params := byKey["params"]
	require.Len(t, params.Content, 2)
	var first map[string]any
	require.NoError(t, params.Content[0].Decode(&first))
	assert.Equal(t, "gp0", first["name"])
	assert.Equal(t, "0", first["default"])
	assert.Equal(t, "", first["type-decls"])
	assert.Equal(t, false, first["is-synthetic"])

	// The scalar input omits rank, dimensions, and the output carries
	// its resolved dimensionality and types.
	var input map[string]any
	require.NoError(t, byKey["inputs"].Content[0].Decode(&input))
	assert.Equal(t, "scalar", input["io-kind"])
	assert.NotContains(t, input, "rank")
	assert.NotContains(t, input, "dimensions")

	var output map[string]any
	require.NoError(t, byKey["outputs"].Content[0].Decode(&output))
	assert.Equal(t, "function", output["io-kind"])
	assert.Equal(t, 1, output["dimensions"])
	assert.Equal(t, []any{"int32"}, output["types"])

	t.Run("EmptyNamespaces", func(t *testing.T) {
		// The key is part of the document contract even when the stub
		// name carries no namespaces.
		require.NoError(t, generator.Register("plain", adderFactory))
		g, err := generator.Create("plain", generator.NewContext(loom.HostTarget()))
		require.NoError(t, err)

		data, err := emit.Metadata(g)
		require.NoError(t, err)
		assert.Contains(t, string(data), "namespaces: []")
	})
}

func TestEmissionIsIdempotent(t *testing.T) {
	g := newAdder(t)

	w1, err := emit.Wrapper(g)
	require.NoError(t, err)
	w2, err := emit.Wrapper(g)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)

	m1, err := emit.Metadata(g)
	require.NoError(t, err)
	m2, err := emit.Metadata(g)
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestWriteArtifacts(t *testing.T) {
	g := newAdder(t)
	dir := t.TempDir()

	wrapperPath := filepath.Join(dir, "gen", "adder.go")
	require.NoError(t, emit.WriteWrapper(g, wrapperPath))
	src, err := os.ReadFile(wrapperPath)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package samples")

	metaPath := filepath.Join(dir, "adder.yaml")
	require.NoError(t, emit.WriteMetadata(g, metaPath))
	meta, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	assert.Contains(t, string(meta), "stub-name: samples.Adder")
}
