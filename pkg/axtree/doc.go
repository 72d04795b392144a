// Package axtree models accessibility tree snapshots as produced by the
// DevTools protocol (Accessibility.getFullAXTree).
//
// # Overview
//
// A snapshot is a flat list of [Node] values linked by id. Each node has a
// role, an accessible name and a list of state properties; children are
// referenced through ChildIDs in document order. The first node in the list
// is the root. The format carries no explicit root marker, so a producer
// that reorders nodes silently changes the root.
//
// # Values
//
// Roles, names and property values are [Value]s: a protocol type tag plus a
// [Payload]. Payload is a closed set of concrete types, so consumers
// interpret values with a type switch:
//
//	switch p := node.Prop(axtree.PropChecked).(type) {
//	case axtree.Tristate:
//	    // "true", "false" or "mixed"
//	case axtree.Undefined:
//	    // property absent
//	}
//
// # Lookup
//
// [NewIndex] builds an id lookup used by the narration engine. Lookups never
// fail loudly: a dangling child id simply reports ok == false so the caller
// can render an inline marker instead of aborting.
//
// # Input
//
// [Parse], [ReadJSON] and [ImportJSON] decode snapshots from bytes, readers
// and files. [Example] returns a bundled snapshot for demos and tests.
package axtree
