// Package codebase describes the structure a verification run consumes.
//
// A Codebase is a root namespace plus its packages in the order they were
// read, and per package the declared types with their outgoing type
// references. The verifier does not care how the description was produced:
//
//   - LoadYAML reads a language-neutral description (separator ".")
//   - LoadGo loads a Go module with golang.org/x/tools/go/packages (separator "/")
//   - New returns a Builder for tests and embedding callers
//
// Type references are qualified names: the owning package path, a dot, and
// the type name ("com.shop.billing.core.Invoice" or
// "example.com/shop/billing/core.Invoice").
package codebase
