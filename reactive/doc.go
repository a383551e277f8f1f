// Package reactive implements a small functional-reactive properties engine:
// values defined as expressions over other values, automatically
// re-evaluated when their dependencies change.
//
// The building blocks are Observable (a multicast emitter), Channel (a
// write-only Observable), State (a derived value with implicit dependency
// tracking and self-reference support), StateChannel (a writable State, aka
// Var), and Binding (a two-way link between two StateChannels).
//
// Propagation is synchronous and depth-first: writing to a Channel or
// replacing a State's expression fires all transitively-dependent listeners
// on the calling goroutine before the call returns.
package reactive
