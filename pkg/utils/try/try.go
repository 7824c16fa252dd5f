package try

// something have method `Fatal`.
//
// For example: *testing.T, *logrus.Logger
type Fataler interface {
	Fatal(...any)
}

// A pair of value and error, coming from a function call.
//
// It is "ok" when error is nil.
type Result[T any] struct {
	value T
	err   error
}

func To[T any](value T, err error) Result[T] {
	return Result[T]{value: value, err: err}
}

func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		return *new(T), r.err
	}
	return r.value, nil
}

// OrFatal returns the value when ok. Otherwise it calls ftl.Fatal(err).
//
// If ftl has "Helper()" method (like *testing.T), that is called before `Fatal`.
func (r Result[T]) OrFatal(ftl Fataler) T {
	if r.err == nil {
		return r.value
	}
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(r.err)
	return *new(T)
}

func (r Result[T]) OrDefault(d T) T {
	if r.err != nil {
		return d
	}
	return r.value
}

// Then chains a function taking the value, when ok.
func Then[T, R any](r Result[T], next func(T) (R, error)) Result[R] {
	if r.err != nil {
		return Result[R]{err: r.err}
	}
	return To(next(r.value))
}
