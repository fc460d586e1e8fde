// Package pin defines the virtual-pin data model of a composite node and the
// invariant-preserving operations on it.
//
// A composite node encapsulates a sub-graph. Its virtual pins are the
// externally visible surface: each pin aggregates one or more ports of the
// internal nodes ("mapped ports").
//
// # Persisted shape
//
//	composite_id: "combo_attack"
//	virtual_pins:
//	  - pin_index: 1
//	    pin_name: Damage
//	    pin_type: float
//	    is_input: false
//	    is_flow: false
//	    description: total damage dealt
//	    merge_strategy: array   # last | first | array, outputs only
//	    mapped_ports:
//	      - {node_id: hit_1, port_name: Out, is_input: false, is_flow: false}
//	      - {node_id: hit_2, port_name: Out, is_input: false, is_flow: false}
//
// The same shape is used for JSON.
//
// # Invariants
//
// Every operation on a Composite either succeeds completely or leaves the
// composite untouched. After any operation:
//
//  1. pin indices are unique and positive
//  2. every pin has at least one mapped port; removing the last one deletes the pin
//  3. a (node_id, port_name) pair is mapped by at most one pin
//  4. every mapped port shares is_input and is_flow with its pin
//
// Pin indices come from a monotonic allocator and are not reused after a pin
// is deleted. Only RestorePin (used by undo) may bring back an old index.
package pin
