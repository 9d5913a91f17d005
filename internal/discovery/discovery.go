// Package discovery partitions a codebase's root namespace into modules.
//
// Every immediate child package of the root is a module. Each package below a
// module that declares at least one type becomes a unit, classified as
// EXPOSED or INTERNAL. Modules and units keep the order in which their
// packages were first read; nothing is sorted.
package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/ir"
)

// DefaultInternalSegments are the sub-package names treated as internal.
var DefaultInternalSegments = []string{"internal", "impl"}

// Options controls module discovery.
type Options struct {
	// InternalSegments marks a package INTERNAL when any path segment below
	// its module base matches.
	InternalSegments []string

	// DefaultScope applies to packages no other rule classifies.
	// Empty means EXPOSED.
	DefaultScope ir.Scope

	// Declarations carry declared module metadata, keyed by module name.
	Declarations []ir.Declaration
}

// DefaultOptions returns the conventional discovery settings.
func DefaultOptions() Options {
	return Options{
		InternalSegments: slices.Clone(DefaultInternalSegments),
		DefaultScope:     ir.ScopeExposed,
	}
}

// pending collects a module's packages before classification.
type pending struct {
	name     string
	base     string
	packages []codebase.Package
}

// Discover builds the module graph for cb.
//
// The root package itself and packages outside the root are skipped.
// Packages without types produce no unit, but still establish their module.
func Discover(cb *codebase.Codebase, opts Options) (*ir.Graph, error) {
	root := strings.TrimSpace(cb.Root)
	if root == "" {
		return nil, &DiscoveryError{Code: ErrCodeEmptyRoot, Message: "codebase has no root namespace"}
	}
	sep := cb.Sep()

	var modules []*pending
	byName := make(map[string]*pending)
	byFold := make(map[string]string)

	for _, pkg := range cb.Packages {
		name, ok := ir.ChildSegment(root, sep, pkg.Path)
		if !ok {
			continue
		}
		m, exists := byName[name]
		if !exists {
			folded := strings.ToLower(name)
			if other, clash := byFold[folded]; clash {
				return nil, &DiscoveryError{
					Code:    ErrCodeAmbiguousModule,
					Message: fmt.Sprintf("module %q collides with %q (names differ only by case)", name, other),
					Path:    pkg.Path,
				}
			}
			byFold[folded] = name
			m = &pending{name: name, base: root + sep + name}
			byName[name] = m
			modules = append(modules, m)
		}
		if len(pkg.Types) > 0 {
			m.packages = append(m.packages, pkg)
		}
	}

	if len(modules) == 0 {
		return nil, &DiscoveryError{
			Code:    ErrCodeNoModules,
			Message: "root has no child packages, nothing to verify",
			Path:    root,
		}
	}

	decls, err := indexDeclarations(opts.Declarations, byName)
	if err != nil {
		return nil, err
	}

	out := make([]ir.Module, len(modules))
	var units []ir.Unit
	for i, p := range modules {
		id := ir.ModuleID(i)
		mod := ir.Module{
			ID:          id,
			Name:        p.name,
			DisplayName: p.name,
			BasePackage: p.base,
			Exposed:     []string{},
			Internal:    []string{},
		}
		decl, declared := decls[p.name]
		if declared {
			if decl.DisplayName != "" {
				mod.DisplayName = decl.DisplayName
			}
			if decl.AllowedDependencies != nil {
				mod.AllowedDependencies = slices.Clone(decl.AllowedDependencies)
			}
		}

		c := newClassifier(p.base, sep, decls, p.name, opts)
		for _, pkg := range p.packages {
			scope := c.classify(pkg.Path)
			units = append(units, newUnit(pkg, id, scope))
			if scope == ir.ScopeInternal {
				mod.Internal = append(mod.Internal, pkg.Path)
			} else {
				mod.Exposed = append(mod.Exposed, pkg.Path)
			}
		}
		out[i] = mod
	}

	return ir.NewGraph(root, sep, out, units), nil
}

// indexDeclarations maps declarations by module name and checks that every
// name they mention was discovered.
func indexDeclarations(decls []ir.Declaration, modules map[string]*pending) (map[string]ir.Declaration, error) {
	out := make(map[string]ir.Declaration, len(decls))
	for _, d := range decls {
		if _, ok := modules[d.Name]; !ok {
			return nil, &DiscoveryError{
				Code:    ErrCodeUnknownDeclared,
				Message: fmt.Sprintf("declared module %q was not found under the root", d.Name),
				Path:    d.Name,
			}
		}
		for _, dep := range d.AllowedDependencies {
			if _, ok := modules[dep]; !ok {
				return nil, &DiscoveryError{
					Code:    ErrCodeUnknownAllowed,
					Message: fmt.Sprintf("module %q allows dependency on unknown module %q", d.Name, dep),
					Path:    d.Name,
				}
			}
		}
		out[d.Name] = d
	}
	return out, nil
}

func newUnit(pkg codebase.Package, module ir.ModuleID, scope ir.Scope) ir.Unit {
	u := ir.Unit{
		Path:   pkg.Path,
		Module: module,
		Scope:  scope,
		Types:  make([]string, 0, len(pkg.Types)),
	}
	for _, t := range pkg.Types {
		u.Types = append(u.Types, t.Name)
		for _, ref := range t.Refs {
			u.Refs = append(u.Refs, ir.TypeRef{From: t.Name, To: ref})
		}
	}
	return u
}

// normalizePaths rewrites declared sub-paths to use the codebase separator.
// Declarations may be written with either "." or "/".
func normalizePaths(paths []string, sep string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		p = strings.ReplaceAll(p, "/", sep)
		out[i] = strings.ReplaceAll(p, ".", sep)
	}
	return out
}
