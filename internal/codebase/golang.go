package codebase

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// GoSeparator is the package path separator for Go import paths.
const GoSeparator = "/"

// loadMode is the minimum needed to resolve identifiers to their packages.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// GoOptions controls LoadGo.
type GoOptions struct {
	// Dir is the directory go list runs in (module root).
	Dir string

	// Patterns are package patterns; defaults to "./...".
	Patterns []string

	// Root overrides the root namespace; defaults to the main module path.
	Root string

	// Tests includes _test.go files.
	Tests bool
}

// LoadGo builds a Codebase from Go source.
//
// Every top-level declaration (type, func, method, var, const) is a member.
// Its references are the package-level objects it uses from other packages,
// in source order, deduplicated per member. Packages keep go list order.
func LoadGo(ctx context.Context, opts GoOptions) (*Codebase, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
		Tests:   opts.Tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading go packages: %w", err)
	}

	var loadErrs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, fmt.Errorf("%s: %s", p.PkgPath, e.Msg))
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("loading go packages: %w", errors.Join(loadErrs...))
	}

	root := opts.Root
	if root == "" {
		for _, p := range pkgs {
			if p.Module != nil {
				root = p.Module.Path
				break
			}
		}
	}
	if root == "" {
		return nil, fmt.Errorf("loading go packages: cannot determine root, no module found in %q", opts.Dir)
	}

	cb := &Codebase{Root: root, Separator: GoSeparator}
	seen := make(map[string]bool)
	for _, p := range pkgs {
		// With Tests set, go list reports test variants under the same path.
		if seen[p.PkgPath] || p.Types == nil {
			continue
		}
		seen[p.PkgPath] = true
		cb.Packages = append(cb.Packages, Package{
			Path:  p.PkgPath,
			Types: members(p),
		})
	}
	return cb, nil
}

// members collects the top-level declarations of a package with the foreign
// objects each one uses.
func members(p *packages.Package) []Type {
	var out []Type
	for _, file := range p.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				out = append(out, Type{
					Name: funcName(d),
					Refs: foreignRefs(p, d),
				})
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					for _, name := range specNames(spec) {
						out = append(out, Type{
							Name: name,
							Refs: foreignRefs(p, spec),
						})
					}
				}
			}
		}
	}
	return out
}

func funcName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name
	}
	return receiverName(d.Recv.List[0].Type) + "." + d.Name.Name
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return "_"
	}
}

func specNames(spec ast.Spec) []string {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return []string{s.Name.Name}
	case *ast.ValueSpec:
		names := make([]string, 0, len(s.Names))
		for _, n := range s.Names {
			if n.Name != "_" {
				names = append(names, n.Name)
			}
		}
		return names
	default:
		return nil
	}
}

// foreignRefs lists objects from other packages used inside node.
func foreignRefs(p *packages.Package, node ast.Node) []string {
	var refs []string
	seen := make(map[string]bool)
	ast.Inspect(node, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		obj := p.TypesInfo.Uses[ident]
		if obj == nil || obj.Pkg() == nil || obj.Pkg() == p.Types {
			return true
		}
		if _, isPkg := obj.(*types.PkgName); isPkg {
			return true
		}
		ref := Qualify(obj.Pkg().Path(), obj.Name())
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
		return true
	})
	return refs
}
