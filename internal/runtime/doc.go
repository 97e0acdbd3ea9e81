// Package runtime owns the desktop state. A single loop applies reducer
// actions serially, executes the resulting effects, and feeds effect
// failures back into the loop as actions. Everything outside this package
// observes state through the loop, never directly.
package runtime
