// Package diagnostic provides structured errors, warnings, and infos
// produced while validating composite definitions.
//
// Key capabilities:
//   - Invariant violations found when loading a persisted composite
//   - Per-pin and per-port subjects so callers can point at the offending entry
//   - Folding all errors into a single error value
package diagnostic
