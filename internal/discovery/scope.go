package discovery

import (
	"slices"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// classifier assigns a scope to packages of one module.
//
// Rules, first match wins:
//  1. the module base package is EXPOSED
//  2. the most specific declared exposed or internal sub-path
//  3. a path segment listed in internalSegs makes the package INTERNAL
//  4. defaultScope
type classifier struct {
	base         string
	sep          string
	exposed      []string
	internal     []string
	internalSegs []string
	defaultScope ir.Scope
}

func newClassifier(base, sep string, decls map[string]ir.Declaration, name string, opts Options) classifier {
	c := classifier{
		base:         base,
		sep:          sep,
		internalSegs: opts.InternalSegments,
		defaultScope: opts.DefaultScope,
	}
	if c.internalSegs == nil {
		c.internalSegs = DefaultInternalSegments
	}
	if c.defaultScope == "" {
		c.defaultScope = ir.ScopeExposed
	}
	if d, ok := decls[name]; ok {
		c.exposed = normalizePaths(d.Exposed, sep)
		c.internal = normalizePaths(d.Internal, sep)
	}
	return c
}

func (c classifier) classify(pkg string) ir.Scope {
	rel, ok := ir.RelativePath(c.base, c.sep, pkg)
	if !ok || rel == "" {
		return ir.ScopeExposed
	}

	bestLen := -1
	var best ir.Scope
	for _, p := range c.exposed {
		if c.covers(p, rel) && len(p) > bestLen {
			bestLen, best = len(p), ir.ScopeExposed
		}
	}
	for _, p := range c.internal {
		if c.covers(p, rel) && len(p) > bestLen {
			bestLen, best = len(p), ir.ScopeInternal
		}
	}
	if bestLen >= 0 {
		return best
	}

	for _, seg := range strings.Split(rel, c.sep) {
		if slices.Contains(c.internalSegs, seg) {
			return ir.ScopeInternal
		}
	}
	return c.defaultScope
}

// covers reports whether the declared sub-path is rel or one of its parents.
func (c classifier) covers(declared, rel string) bool {
	return rel == declared || strings.HasPrefix(rel, declared+c.sep)
}

// Resolver maps any package path under the root to its module and scope,
// including packages that produced no unit. It applies the same rules as
// Discover.
type Resolver struct {
	g           *ir.Graph
	classifiers []classifier
}

// NewResolver builds a resolver for a graph produced by Discover with opts.
func NewResolver(g *ir.Graph, opts Options) *Resolver {
	decls := make(map[string]ir.Declaration, len(opts.Declarations))
	for _, d := range opts.Declarations {
		decls[d.Name] = d
	}
	r := &Resolver{g: g, classifiers: make([]classifier, len(g.Modules))}
	for i, m := range g.Modules {
		r.classifiers[i] = newClassifier(m.BasePackage, g.Separator, decls, m.Name, opts)
	}
	return r
}

// Resolve returns the owning module and scope of pkg. The last result is
// false for the root package and for packages outside the root.
func (r *Resolver) Resolve(pkg string) (ir.ModuleID, ir.Scope, bool) {
	if u, ok := r.g.UnitByPath(pkg); ok {
		return u.Module, u.Scope, true
	}
	id := r.g.ModuleOf(pkg)
	if id == ir.NoModule {
		return ir.NoModule, "", false
	}
	return id, r.classifiers[id].classify(pkg), true
}
