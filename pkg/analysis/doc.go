// Package analysis enumerates the children of composite values.
//
// Each [Analyzer] declares one [Capability] and turns a routed
// [model.Model] into an ordered list of child models, every child carrying
// the [model.Connector] describing how its parent reaches it. Analyzers never
// consult the resource governor or the identity tracker: the router composes
// those checks around every call, so the safety rules hold no matter how many
// analyzers are registered.
//
// The built-in analyzers are:
//
//   - [ContainerAnalyzer]: slices, arrays and maps. Map entries are sorted
//     deterministically.
//   - [NamespaceAnalyzer]: a [Namespace] of registered package-level
//     variables and constants.
//   - [ObjectAnalyzer]: struct fields in a fixed order, then optionally
//     getters and the method set.
//   - [CallableAnalyzer]: function values.
//   - [HandleAnalyzer]: channels and unsafe pointers.
//
// A failure while reading one child, such as a promoted field behind a nil
// embedded pointer or a getter that panics, becomes a placeholder child with
// a [model.MetaFailure] entry and enumeration continues.
package analysis
