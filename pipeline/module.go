package pipeline

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/loom"
)

// Argument describes one runtime argument of a compiled function.
type Argument struct {
	Name       string `msgpack:"name"`
	Buffer     bool   `msgpack:"buffer"`
	Type       string `msgpack:"type"`
	Dimensions int    `msgpack:"dimensions"`
	Default    string `msgpack:"default,omitempty"`
	Min        string `msgpack:"min,omitempty"`
	Max        string `msgpack:"max,omitempty"`
}

// FunctionInfo describes one public function of a module, including
// the metadata names of its outputs.
type FunctionInfo struct {
	Name      string     `msgpack:"name"`
	Arguments []Argument `msgpack:"arguments"`
	Outputs   []string   `msgpack:"outputs"`
}

// ExternSource is an externally supplied definition appended to a
// module verbatim.
type ExternSource struct {
	Name   string `msgpack:"name"`
	Source string `msgpack:"source"`
}

// Module is the compiled form of a pipeline: its public functions plus
// any appended extern definitions, bound to one target.
type Module struct {
	name      string
	target    loom.Target
	functions []FunctionInfo
	externs   []ExternSource
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Target returns the target the module was compiled for.
func (m *Module) Target() loom.Target { return m.target }

// Functions returns the module's public functions.
func (m *Module) Functions() []FunctionInfo { return m.functions }

// AppendExtern appends an externally supplied definition.
func (m *Module) AppendExtern(e ExternSource) {
	m.externs = append(m.externs, e)
}

// Externs returns the appended extern definitions.
func (m *Module) Externs() []ExternSource { return m.externs }

// RemapMetadataName renames an output in the module metadata. Unknown
// names are ignored, matching the behavior of renaming tuple suffixes
// that were never materialized.
func (m *Module) RemapMetadataName(from, to string) {
	for fi := range m.functions {
		for oi, name := range m.functions[fi].Outputs {
			if name == from {
				m.functions[fi].Outputs[oi] = to
			}
		}
	}
}

// moduleEnvelope is the serialized artifact layout.
type moduleEnvelope struct {
	Name      string         `msgpack:"name"`
	Target    string         `msgpack:"target"`
	Functions []FunctionInfo `msgpack:"functions"`
	Externs   []ExternSource `msgpack:"externs,omitempty"`
}

// Compile writes the module artifact to path. A failed write may leave
// a partial artifact behind; callers treat any error as "discard and
// rebuild".
func (m *Module) Compile(path string) error {
	data, err := msgpack.Marshal(moduleEnvelope{
		Name:      m.name,
		Target:    m.target.String(),
		Functions: m.functions,
		Externs:   m.externs,
	})
	if err != nil {
		return fmt.Errorf("pipeline: encode module %q: %w", m.name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: write module %q: %w", m.name, err)
	}
	slog.Debug("module compiled", "module", m.name, "target", m.target.String(), "path", path, "bytes", len(data))
	return nil
}

// LoadModule reads a module artifact back from path.
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read module: %w", err)
	}
	var env moduleEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("pipeline: decode module: %w", err)
	}
	m := &Module{name: env.Name, functions: env.Functions, externs: env.Externs}
	if env.Target != "" {
		t, err := loom.ParseTarget(env.Target)
		if err != nil {
			return nil, err
		}
		m.target = t
	}
	return m, nil
}
