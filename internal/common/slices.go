package common

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle returns true if the slice has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Insert returns s with v inserted at position i. Positions past the end append.
func Insert[S ~[]E, E any](s S, i int, v E) S {
	if i < 0 {
		i = 0
	}

	if i >= len(s) {
		return append(s, v)
	}

	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v

	return s
}

// RemoveAt returns s without the element at position i.
func RemoveAt[S ~[]E, E any](s S, i int) S {
	if i < 0 || i >= len(s) {
		return s
	}

	return append(s[:i], s[i+1:]...)
}
