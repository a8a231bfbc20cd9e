// Package dump is the entry point of the inspection engine.
//
// A [Dumper] is built once from configuration and a [Renderer] and is safe
// for concurrent use. Each call to [Dumper.Analyze] creates a private
// session bundling a resource governor, an identity hive and a chunk store,
// then routes the root value through it:
//
//	d, err := dump.New(config.Default(), text.New())
//	if err != nil {
//		return err
//	}
//	res := d.Analyze(ctx, value, "value")
//	fmt.Println(res.Output)
//
// # Routing
//
// The router unwraps pointers and interfaces, classifies the value and
// dispatches it. Classification order is fixed: callable, container
// (slices, arrays, maps, [analysis.Namespace]), object (structs), handle
// (channels, unsafe pointers), string, float (including complex), integer,
// bool, null. Anything else renders as an empty fragment.
//
// For composites the router checks the identity hive first and renders a
// recursion marker for values already open on the current path. Otherwise it
// enters a nesting level, marks the identity open, asks the governor whether
// to continue and, if so, lets the analyzer enumerate children and recurses.
// Leaving the level and closing the identity are deferred, so they run on
// every exit path.
//
// # Failure policy
//
// Nothing escapes Analyze. Governor refusals become "limit reached"
// placeholders, unreadable fields become failure placeholders, a failing
// chunk backend degrades to in-memory assembly, and a panic anywhere in the
// traversal becomes a visible marker in the output.
package dump
