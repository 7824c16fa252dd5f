package pointer

func Ref[T any](t T) *T {
	return &t
}

func SafeDeref[T any](val *T) T {
	if val == nil {
		return *new(T)
	}
	return *val
}

// Equal reports both are nil, or both point equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Clone returns a pointer to a copy of *val, or nil if val is nil.
func Clone[T any](val *T) *T {
	if val == nil {
		return nil
	}
	return Ref(*val)
}
