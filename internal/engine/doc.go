// Package engine exposes the virtual pins of open composites to the rest of
// the editor.
//
// A Manager holds every open composite and offers two groups of calls, each
// taking the composite id explicitly:
//
//   - resolution: FindVirtualPinForPort, AvailableVirtualPins,
//     CompatibleVirtualPins, PinDisplayNumber, VirtualPin, VirtualPins
//   - mutation: CreateVirtualPin, AddMapping, RemoveMapping,
//     SetMergeStrategy, RenameVirtualPin, SetPinDescription, and the
//     synchronization calls used by undoable graph edits (RenameMappedPort,
//     RestoreMapping, DeleteVirtualPin)
//
// Resolution results are copies. Callers must not keep them across a
// mutation; subscribe with Manager.Subscribe and query again on change.
//
// After every successful mutation the manager notifies subscribers and then
// hands the composite definition to the configured Persister.
//
// A Manager is not safe for concurrent use.
package engine
