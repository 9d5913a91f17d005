package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// Format names a rendering of the model.
type Format string

const (
	FormatPlantUML Format = "plantuml"
	FormatMermaid  Format = "mermaid"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPlantUML, FormatMermaid, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown documentation format %q (want plantuml, mermaid, markdown or json)", s)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatPlantUML:
		return "puml"
	case FormatMermaid:
		return "mmd"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// Render renders the whole model.
func Render(model *ir.Model, format Format) ([]byte, error) {
	switch format {
	case FormatPlantUML:
		return plantUML(model.Root, model.Modules, model.Edges), nil
	case FormatMermaid:
		return mermaid(model.Modules, model.Edges), nil
	case FormatMarkdown:
		return markdown(model), nil
	case FormatJSON:
		data, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("rendering model: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown documentation format %q", format)
	}
}

// RenderModule renders the diagram of one module and its direct dependencies.
func RenderModule(model *ir.Model, name string, format Format) ([]byte, error) {
	summary, ok := model.Summary(name)
	if !ok {
		return nil, fmt.Errorf("module %q not in model", name)
	}

	modules := []ir.ModuleSummary{*summary}
	var edges []ir.ModuleEdge
	for _, dep := range summary.DependsOn {
		if target, ok := model.Summary(dep.Module); ok {
			modules = append(modules, *target)
		}
		edges = append(edges, ir.ModuleEdge{From: summary.Name, To: dep.Module, References: dep.References})
	}

	switch format {
	case FormatPlantUML:
		return plantUML(summary.DisplayName, modules, edges), nil
	case FormatMermaid:
		return mermaid(modules, edges), nil
	default:
		return nil, fmt.Errorf("format %q has no per-module diagram", format)
	}
}

func plantUML(title string, modules []ir.ModuleSummary, edges []ir.ModuleEdge) []byte {
	var b bytes.Buffer
	b.WriteString("@startuml\n")
	fmt.Fprintf(&b, "title %s\n\n", title)
	for _, m := range modules {
		fmt.Fprintf(&b, "component %q as %s\n", m.DisplayName, alias(m.Name))
	}
	if len(edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "%s --> %s : uses (%d)\n", alias(e.From), alias(e.To), e.References)
	}
	b.WriteString("@enduml\n")
	return b.Bytes()
}

func mermaid(modules []ir.ModuleSummary, edges []ir.ModuleEdge) []byte {
	var b bytes.Buffer
	b.WriteString("flowchart LR\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "    %s[%q]\n", alias(m.Name), m.DisplayName)
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "    %s -->|%d| %s\n", alias(e.From), e.References, alias(e.To))
	}
	return b.Bytes()
}

func markdown(model *ir.Model) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n", model.Root)
	for _, m := range model.Modules {
		fmt.Fprintf(&b, "\n## %s\n\n", m.DisplayName)
		fmt.Fprintf(&b, "- Base package: `%s`\n", m.BasePackage)
		fmt.Fprintf(&b, "- Exposed: %s\n", codeList(m.Exposed))
		fmt.Fprintf(&b, "- Internal: %s\n", codeList(m.Internal))
		if len(m.DependsOn) == 0 {
			b.WriteString("- Depends on: none\n")
			continue
		}
		deps := make([]string, len(m.DependsOn))
		for i, d := range m.DependsOn {
			deps[i] = fmt.Sprintf("%s (%d)", d.Module, d.References)
		}
		fmt.Fprintf(&b, "- Depends on: %s\n", strings.Join(deps, ", "))
	}
	return b.Bytes()
}

func codeList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

// alias makes a diagram identifier out of a module name.
func alias(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
