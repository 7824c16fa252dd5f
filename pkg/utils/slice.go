package utils

// map each element in sli.
//
// args:
//   - sli : slice of `T`s
//   - mapper : mapping function from T to R
//
// return:
//
//	slice of `R`s.
//	each element indexed `N` is given with `mapper(sli[N])` .
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// Filter returns a new slice of elements satisfying pred, keeping the order.
func Filter[T any](sli []T, pred func(T) bool) []T {
	ret := make([]T, 0, len(sli))
	for _, v := range sli {
		if pred(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// IndexOf returns the index of the first element satisfying pred, or -1.
func IndexOf[T any](sli []T, pred func(T) bool) int {
	for nth, v := range sli {
		if pred(v) {
			return nth
		}
	}
	return -1
}
