package codebase

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// DefaultSeparator is the package path separator for YAML descriptions.
const DefaultSeparator = "."

// Codebase is the structural description of one codebase.
type Codebase struct {
	Root      string    `yaml:"root" json:"root"`
	Separator string    `yaml:"separator,omitempty" json:"separator,omitempty"`
	Packages  []Package `yaml:"packages" json:"packages"`
}

// Package is a single package (namespace) and its member types.
type Package struct {
	Path  string `yaml:"path" json:"path"`
	Types []Type `yaml:"types,omitempty" json:"types,omitempty"`
}

// Type is a declared member with its outgoing references in declaration order.
type Type struct {
	Name string   `yaml:"name" json:"name"`
	Refs []string `yaml:"refs,omitempty" json:"refs,omitempty"`
}

// Sep returns the separator, defaulting to DefaultSeparator.
func (c *Codebase) Sep() string {
	if c.Separator == "" {
		return DefaultSeparator
	}
	return c.Separator
}

// Validate checks the description for structural problems.
func (c *Codebase) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("codebase root is required")
	}
	seen := make(map[string]bool, len(c.Packages))
	for i, pkg := range c.Packages {
		if strings.TrimSpace(pkg.Path) == "" {
			return fmt.Errorf("packages[%d]: path is required", i)
		}
		if seen[pkg.Path] {
			return fmt.Errorf("packages[%d]: duplicate package %q", i, pkg.Path)
		}
		seen[pkg.Path] = true
		for j, typ := range pkg.Types {
			if strings.TrimSpace(typ.Name) == "" {
				return fmt.Errorf("packages[%d].types[%d]: name is required", i, j)
			}
		}
	}
	return nil
}

// Shuffle returns a copy with the package order permuted by seed.
// Package contents are left untouched.
func (c *Codebase) Shuffle(seed uint64) *Codebase {
	out := &Codebase{
		Root:      c.Root,
		Separator: c.Separator,
		Packages:  slices.Clone(c.Packages),
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out.Packages), func(i, j int) {
		out.Packages[i], out.Packages[j] = out.Packages[j], out.Packages[i]
	})
	return out
}

// Qualify joins a package path and a type name into a reference.
func Qualify(pkg, name string) string {
	return pkg + "." + name
}

// Builder assembles a Codebase in call order.
type Builder struct {
	cb    *Codebase
	index map[string]int
}

// New starts a codebase rooted at root.
func New(root string) *Builder {
	return &Builder{
		cb:    &Codebase{Root: root, Separator: DefaultSeparator},
		index: make(map[string]int),
	}
}

// Separator sets the package path separator.
func (b *Builder) Separator(sep string) *Builder {
	b.cb.Separator = sep
	return b
}

// Package declares a package, keeping its first position if already present.
func (b *Builder) Package(path string) *Builder {
	b.pkg(path)
	return b
}

// Type adds a type to a package, declaring the package on first use.
func (b *Builder) Type(pkg, name string, refs ...string) *Builder {
	p := b.pkg(pkg)
	p.Types = append(p.Types, Type{Name: name, Refs: refs})
	return b
}

// Build returns the assembled codebase.
func (b *Builder) Build() *Codebase {
	return b.cb
}

func (b *Builder) pkg(path string) *Package {
	if i, ok := b.index[path]; ok {
		return &b.cb.Packages[i]
	}
	b.index[path] = len(b.cb.Packages)
	b.cb.Packages = append(b.cb.Packages, Package{Path: path})
	return &b.cb.Packages[len(b.cb.Packages)-1]
}
