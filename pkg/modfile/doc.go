// Package modfile parses go.mod manifests.
//
// # Overview
//
// [Parse] turns go.mod text into a [File] holding the module path, the go
// and toolchain versions, and the require, replace, exclude and retract
// directives in source order. It is a single forward scan with a small
// block state machine and it never fails: unparseable lines are dropped.
//
// This tolerance is intentional. go.mod files are edited by hand and by the
// go command, and may contain directives this package does not model
// (godebug, tool, ignore). Those must not cause the whole file to be rejected.
//
// # Grammar
//
//	module example.com/foo
//	go 1.21
//
//	require (
//	    github.com/x/y v1.2.3
//	    github.com/a/b v0.1.0 // indirect
//	)
//
//	replace github.com/x/y => ../y
//	exclude github.com/a/b v0.0.9
//	retract [v1.0.0, v1.0.5] // published too early
//
// Single-line directives are only recognised outside a block. Inside a
// block each line is parsed with that block's grammar. A require needs a
// path and a version; a replace needs "=>" with a path on both sides; an
// exclude needs a path and a version; a retract keeps its version or range
// token verbatim and takes a trailing comment as the rationale.
//
// # Reading from disk
//
// [Read] loads go.mod from a directory. A missing file is the only error
// condition callers need to handle specially; test for it with
// errors.Is(err, modfile.ErrNotFound).
package modfile
