package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/syssam/loom/generator"
)

// WriteWrapper renders the Go wrapper for g, runs it through goimports
// formatting, and writes it to path.
func WriteWrapper(g *generator.Generator, path string) error {
	src, err := Wrapper(g)
	if err != nil {
		return err
	}
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		return fmt.Errorf("format %s: %w", path, err)
	}
	return writeFile(path, formatted)
}

// WriteMetadata renders the metadata document for g and writes it to
// path.
func WriteMetadata(g *generator.Generator, path string) error {
	doc, err := Metadata(g)
	if err != nil {
		return err
	}
	return writeFile(path, doc)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Debug("emit: wrote artifact", "path", path, "bytes", len(data))
	return nil
}
