// Package model defines the node abstraction passed between every part of the
// dump engine.
//
// A [Model] is a typed envelope around one observed value: the value itself
// (as a [reflect.Value] borrowed from the host for the duration of one dump),
// its display name, the [Connector] describing how its parent reaches it, a
// stable DOM id used for recursion markers and chunk lookup, and an ordered
// [Meta] side channel.
//
// # Lifecycle
//
// Analyzers create child models and may fill them in freely. The router then
// stamps traversal bookkeeping (Kind, Level, Seq, generated Code) and hands
// the model to a renderer. From that point on the model must be treated as
// immutable; hooks that want to change it return a [Model.Clone].
//
// # Connectors
//
// Connectors are the syntactic access forms linking a parent to a child:
//
//	ConnectorIndex     v[3]
//	ConnectorKey       v["name"]
//	ConnectorField     v.Name
//	ConnectorMethod    v.Name(ctx, id)
//	ConnectorStatic    pkg.Var       (anchors a new expression)
//	ConnectorConstant  pkg.Const     (anchors a new expression)
//
// The model itself never stores parent links; the connector chain is rebuilt
// from the router's transient path stack when code is generated.
package model
