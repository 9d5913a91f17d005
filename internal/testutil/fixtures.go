// Package testutil provides shared fixtures for modcheck tests.
package testutil

import (
	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/ir"
)

// ShopRoot is the root namespace of the shop fixtures.
const ShopRoot = "com.shop"

// ShopDeclarations declares billing and shipping with an exposed "api" and an
// internal "core" each.
func ShopDeclarations() []ir.Declaration {
	return []ir.Declaration{
		{Name: "billing", DisplayName: "Billing", Exposed: []string{"api"}, Internal: []string{"core"}},
		{Name: "shipping", DisplayName: "Shipping", Exposed: []string{"api"}, Internal: []string{"core"}},
	}
}

// shopBase adds the four shop packages in discovery order billing, shipping.
func shopBase() *codebase.Builder {
	return codebase.New(ShopRoot).
		Type("com.shop", "ShopApplication").
		Type("com.shop.billing.api", "BillingApi").
		Type("com.shop.billing.core", "Invoice").
		Type("com.shop.shipping.api", "ShippingApi").
		Type("com.shop.shipping.core", "Parcel")
}

// CleanShop has one legal dependency: shipping.api uses billing.api.
func CleanShop() *codebase.Codebase {
	return shopBase().
		Type("com.shop.shipping.api", "LabelPrinter", "com.shop.billing.api.BillingApi").
		Build()
}

// BoundaryShop has shipping.api reaching into billing.core.
func BoundaryShop() *codebase.Codebase {
	return shopBase().
		Type("com.shop.shipping.api", "LabelPrinter", "com.shop.billing.core.Invoice").
		Build()
}

// CyclicShop has billing.api and shipping.api referencing each other.
func CyclicShop() *codebase.Codebase {
	return shopBase().
		Type("com.shop.billing.api", "Refunds", "com.shop.shipping.api.ShippingApi").
		Type("com.shop.shipping.api", "LabelPrinter", "com.shop.billing.api.BillingApi").
		Build()
}

// Triangle has modules a, b and c with the single cycle a->b->c->a.
func Triangle() *codebase.Codebase {
	return codebase.New("app").
		Type("app.a", "A", "app.b.B").
		Type("app.b", "B", "app.c.C").
		Type("app.c", "C", "app.a.A").
		Build()
}

// Chain has n modules m0..m(n-1) where each depends on the next and nothing
// depends back.
func Chain(names ...string) *codebase.Codebase {
	b := codebase.New("app")
	for i, name := range names {
		var refs []string
		if i+1 < len(names) {
			refs = []string{"app." + names[i+1] + ".T"}
		}
		b.Type("app."+name, "T", refs...)
	}
	return b.Build()
}
