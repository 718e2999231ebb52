// Package pkg provides the libraries behind gomodwatch.
//
// # Overview
//
// gomodwatch reads a Go module's go.mod, asks the module proxy and GitHub for
// the newest version of every requirement, and reports which requirements
// have updates and which are no longer imported. The pkg directory is
// organized into three areas:
//
//  1. Domain: [modfile] (go.mod parsing), [semver] (ordering), [imports]
//     (usage scan), [resolve] (memoized latest-version lookups) and [deps]
//     (record assembly and project snapshots)
//  2. Integrations: [integrations], [integrations/goproxy] and
//     [integrations/github] clients on top of the [cache] backends
//  3. Support: [snapshot] (history store and diff), [toolchain] (go get and
//     go mod tidy), [errors], [observability] and [buildinfo]
//
// # Architecture
//
//	go.mod ──► modfile.Parse ─┐
//	                          ├──► deps.Assemble ──► []deps.Record
//	sources ──► imports.Scan ─┤
//	                          │
//	proxy/GitHub ──► resolve.Resolver.CheckUpdates
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gomodwatch/pkg/cache"
//	    "github.com/matzehuels/gomodwatch/pkg/deps"
//	    "github.com/matzehuels/gomodwatch/pkg/integrations/goproxy"
//	    "github.com/matzehuels/gomodwatch/pkg/resolve"
//	)
//
//	proxy := goproxy.NewClient(cache.NewMemoryCache(), time.Hour)
//	r := resolve.New(resolve.Options{}, resolve.NewProxySource(proxy, false))
//
//	snap, err := deps.NewProject(r, deps.ProjectOptions{}).Load(ctx, ".")
//	for _, rec := range snap.Updates() {
//	    fmt.Println(rec.Path, rec.Version, "->", rec.Latest)
//	}
package pkg
