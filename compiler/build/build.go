// Package build drives generator compilation for an external front
// end: one generator instance per requested target, built in parallel,
// all sharing one consistency tracker so incompatible buffer
// constraints across specializations are caught at build time.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/loom"
	"github.com/syssam/loom/compiler/emit"
	"github.com/syssam/loom/generator"
	"github.com/syssam/loom/pipeline"
)

// Request describes one logical compilation: a registered generator,
// the function name to compile as, the targets to specialize for, and
// caller-computed output paths. Path and extension computation belongs
// to the front end, not here.
type Request struct {
	Generator    string
	FunctionName string
	Targets      []loom.Target
	Params       map[string]string
	AutoSchedule bool

	// ModulePaths holds one output path per target. Empty skips
	// module serialization.
	ModulePaths []string

	// WrapperPath and MetadataPath receive the schema artifacts,
	// emitted from the first target's instance. Empty skips them.
	WrapperPath  string
	MetadataPath string

	// Workers caps build parallelism. Zero means GOMAXPROCS.
	Workers int
}

func (r *Request) validate() error {
	if r.Generator == "" {
		return fmt.Errorf("build: no generator name")
	}
	if r.FunctionName != "" && !loom.ValidName(r.FunctionName) {
		return loom.NewNameError(r.FunctionName, "invalid function name")
	}
	if len(r.Targets) == 0 {
		return fmt.Errorf("build: no targets for generator %s", r.Generator)
	}
	if len(r.ModulePaths) != 0 && len(r.ModulePaths) != len(r.Targets) {
		return fmt.Errorf("build: %d module paths for %d targets", len(r.ModulePaths), len(r.Targets))
	}
	return nil
}

// Compile runs one compilation request: it creates and builds one
// instance per target in parallel, with instance builds serialized
// around the shared tracker, then emits the wrapper and metadata from
// the first target's instance.
func Compile(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	functionName := req.FunctionName
	if functionName == "" {
		functionName = req.Generator
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	base := generator.NewContext(req.Targets[0]).WithAutoSchedule(req.AutoSchedule)

	// The shared tracker is not internally synchronized; instance
	// builds take the lock, module serialization does not.
	var mu sync.Mutex
	instances := make([]*generator.Generator, len(req.Targets))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, target := range req.Targets {
		i, target := i, target
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			mu.Lock()
			mod, err := buildOne(base.ForTarget(target), &req, functionName, &instances[i])
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("build %s for %s: %w", req.Generator, target, err)
			}
			if len(req.ModulePaths) > 0 {
				if err := mod.Compile(req.ModulePaths[i]); err != nil {
					return fmt.Errorf("build %s for %s: %w", req.Generator, target, err)
				}
			}
			slog.Debug("build: compiled target", "generator", req.Generator, "target", target.String())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if req.WrapperPath != "" {
		if err := emit.WriteWrapper(instances[0], req.WrapperPath); err != nil {
			return err
		}
	}
	if req.MetadataPath != "" {
		if err := emit.WriteMetadata(instances[0], req.MetadataPath); err != nil {
			return err
		}
	}
	return nil
}

func buildOne(gctx *generator.Context, req *Request, functionName string, slot **generator.Generator) (*pipeline.Module, error) {
	g, err := generator.Create(req.Generator, gctx)
	if err != nil {
		return nil, err
	}
	if len(req.Params) > 0 {
		if err := g.SetParamValues(req.Params); err != nil {
			return nil, err
		}
	}
	mod, err := g.BuildModule(functionName)
	if err != nil {
		return nil, err
	}
	*slot = g
	return mod, nil
}
