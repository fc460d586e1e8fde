// Package history implements the undo/redo stack of the composite editor and
// the commands that keep virtual pins in sync with structural edits of the
// internal node graph.
//
// A command that removes or renames an internal port also removes or
// rewrites its mapping in the same Apply step, and records what it needs to
// restore both on Revert. A pin deleted because its last mapping went away is
// re-created on undo with its original index, name, merge strategy and
// mapping order.
package history
