// Package match ranks the virtual pins an internal port could join.
//
// Pins with a different direction or flow kind are never candidates. The
// remaining pins are scored by how close their name is to the port name
// (normalized Levenshtein similarity) and by how their pin_type relates to
// the port type.
//
// Key functions:
//   - NormalizeName: normalizes pin and port names for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - CompareTypes: classifies two pin_type identifiers
//   - RankPins: ranks the pins a port could be mapped to
package match
