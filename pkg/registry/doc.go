// Package registry provides a generic, type-safe registry for named items.
// A workflow keeps its rules and the functions referenced by definition
// files in registries; names are listed in registration order.
package registry
