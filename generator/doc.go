// Package generator is the authoring and validation core of the loom
// AOT compiler: the named-factory registry, the per-instance phase
// state machine, the declared-member schema with its lazy
// type/dimension/array-size inference, and the cross-build consistency
// tracker shared across the per-target instances of one compilation
// request.
//
// A generator author writes a factory that declares params, inputs,
// and outputs against a fresh instance and attaches a generate (and
// optionally schedule) function:
//
//	generator.Register("iota_plus", func(ctx *generator.Context) (*generator.Generator, error) {
//		g := generator.New(ctx)
//		offset := generator.NewIntParam(g, "offset", 0)
//		out := generator.NewOutput(g, "out", generator.KindFunction, generator.WithType(loom.Int(32)), generator.WithDims(1))
//		g.OnGenerate(func() error {
//			x := pipeline.Var("x")
//			return out.Define([]string{"x"}, pipeline.Add(x, pipeline.Const(int32(offset.Int64()))))
//		})
//		return g, nil
//	})
//
// The external build layer then creates instances by name and drives
// them through SetParamValues, SetInputs, and BuildModule.
package generator
