// Package deps turns a go.mod file into dependency records: for each
// requirement, its declared version, the latest version available, whether
// that is an update, and whether the project's sources import it.
//
// # Assembling Records
//
// [Assemble] is the pure core. It takes a parsed [modfile.File], a usage
// predicate and anything that can resolve latest versions in bulk:
//
//	f, _ := modfile.Read(".")
//	paths, _ := imports.Scan(".")
//	records := deps.Assemble(ctx, f, deps.NewImports(paths).Uses, resolver)
//
// Records come back in go.mod order.
//
// # Projects
//
// [Project] wraps the whole refresh cycle: read go.mod, scan imports,
// resolve, and return an immutable [Snapshot] with a fresh ID. After
// changing go.mod (for example with go get), call [Project.Invalidate]
// and Load again.
//
// # Usage Matching
//
// [Imports.Uses] matches a requirement against imports by exact path or by
// path prefix in either direction, so sub-package imports count as use of
// their module.
package deps
