// Package pkg provides the libraries behind spyglass, a dump engine for
// arbitrary Go values.
//
// # Overview
//
// A dump walks a value graph with reflection and renders every reachable
// value once, as a tree annotated with types, metadata and a Go expression
// that reaches the value from the root. Cycles and shared values become
// recursion markers. A resource governor bounds nesting, time and memory,
// and a chunk store can move rendered fragments out of the heap while the
// tree is assembled.
//
// # Architecture
//
// The data flow of one dump:
//
//	value
//	  ↓
//	[dump] router (classify, unwrap pointers and interfaces)
//	  ↓          ↘
//	[hive] cycles   [governor] depth, time and memory limits
//	  ↓
//	[analysis] analyzers enumerate children
//	  ↓
//	[codegen] access expressions
//	  ↓
//	[dump.Renderer] fragments → [chunk] store → assembled document
//
// # Quick Start
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/spyglass/pkg/config"
//	    "github.com/matzehuels/spyglass/pkg/dump"
//	    "github.com/matzehuels/spyglass/pkg/render/text"
//	)
//
//	d, err := dump.New(config.Default(), text.New())
//	if err != nil {
//	    return err
//	}
//	res := d.Analyze(context.Background(), cfg, "cfg")
//	fmt.Print(res.Output)
//
// # Main Packages
//
// Engine:
//   - [dump]: the router, sessions, hooks and the [dump.Dumper] entry point
//   - [model]: the per-node description shared by analyzers and renderers
//   - [analysis]: analyzers for containers, objects, callables, handles and namespaces
//   - [hive]: identity tracking for recursion detection
//   - [governor]: depth, time and memory budgets
//   - [codegen]: Go access expressions for nodes
//
// Output:
//   - [render]: shared helpers plus the text, jsontree and dot renderers
//   - [httpdump]: an HTTP handler dumping registered values on request
//
// Infrastructure:
//   - [chunk]: out-of-heap fragment storage with handle resolution
//   - [cache]: scratch backends (memory, file, Redis, MongoDB)
//   - [config]: TOML configuration
//   - [errors]: structured error codes
//   - [observability]: dump and cache hooks for metrics and tracing
//   - [buildinfo]: version information
//
// [dump]: github.com/matzehuels/spyglass/pkg/dump
// [dump.Dumper]: github.com/matzehuels/spyglass/pkg/dump.Dumper
// [dump.Renderer]: github.com/matzehuels/spyglass/pkg/dump.Renderer
// [model]: github.com/matzehuels/spyglass/pkg/model
// [analysis]: github.com/matzehuels/spyglass/pkg/analysis
// [hive]: github.com/matzehuels/spyglass/pkg/hive
// [governor]: github.com/matzehuels/spyglass/pkg/governor
// [codegen]: github.com/matzehuels/spyglass/pkg/codegen
// [render]: github.com/matzehuels/spyglass/pkg/render
// [httpdump]: github.com/matzehuels/spyglass/pkg/httpdump
// [chunk]: github.com/matzehuels/spyglass/pkg/chunk
// [cache]: github.com/matzehuels/spyglass/pkg/cache
// [config]: github.com/matzehuels/spyglass/pkg/config
// [errors]: github.com/matzehuels/spyglass/pkg/errors
// [observability]: github.com/matzehuels/spyglass/pkg/observability
// [buildinfo]: github.com/matzehuels/spyglass/pkg/buildinfo
package pkg
