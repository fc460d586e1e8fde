// Package merge evaluates what value a virtual pin exposes when several
// internal ports are mapped to it.
//
// Output pins collapse the values produced by their mapped ports during one
// evaluation tick according to the pin's merge strategy:
//
//   - array: every produced value, in mapped-port order
//   - last:  the most recently produced value; on a tie the port mapped last wins
//   - first: the earliest produced value; on a tie the port mapped first wins
//
// Input pins broadcast the value assigned to them to every mapped port.
package merge
