package cmp

// a == b as BiPredicator function
func EqEq[T comparable](a, b T) bool {
	return a == b
}

func SliceEq[T comparable](a []T, b []T) bool {
	return SliceEqWith(a, b, EqEq[T])
}

func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}

	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}

	return true
}

// Check A ⊇ B in some equivarency, ignoring ordering.
//
// Each element of b consumes one equivarent element of a.
func SliceSubsetWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) < len(b) {
		return false
	}

	used := make([]bool, len(a))
OUTER:
	for _, vb := range b {
		for nth, va := range a {
			if used[nth] || !pred(va, vb) {
				continue
			}
			used[nth] = true
			continue OUTER
		}
		return false
	}
	return true
}

// Check a and b have same elements, ignoring ordering.
func SliceEqualUnordered[T comparable](a []T, b []T) bool {
	return len(a) == len(b) && SliceSubsetWith(a, b, EqEq[T])
}
