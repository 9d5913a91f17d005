package docs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/modcheck/internal/ir"
)

// Writer writes rendered documentation to a directory.
//
// Layout:
//
//	components.<ext>       all modules and their dependencies
//	module-<name>.<ext>    one diagram per module
//	index.md               textual module index
type Writer struct {
	Dir     string
	Diagram Format
}

// Write renders model and writes every file, returning the paths written in
// order.
func (w *Writer) Write(model *ir.Model) ([]string, error) {
	if w.Diagram != FormatPlantUML && w.Diagram != FormatMermaid {
		return nil, fmt.Errorf("diagram format must be plantuml or mermaid, got %q", w.Diagram)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(w.Dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	ext := w.Diagram.Extension()
	all, err := Render(model, w.Diagram)
	if err != nil {
		return nil, err
	}
	if err := write("components."+ext, all); err != nil {
		return nil, err
	}

	for _, m := range model.Modules {
		data, err := RenderModule(model, m.Name, w.Diagram)
		if err != nil {
			return nil, err
		}
		if err := write(fmt.Sprintf("module-%s.%s", m.Name, ext), data); err != nil {
			return nil, err
		}
	}

	index, err := Render(model, FormatMarkdown)
	if err != nil {
		return nil, err
	}
	if err := write("index.md", index); err != nil {
		return nil, err
	}
	return written, nil
}
