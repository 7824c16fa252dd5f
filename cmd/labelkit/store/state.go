package store

import (
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// State is the loading state of a store.
type State int

const (
	// nothing is loaded yet.
	StateIdle State = iota

	// loading is in progress. Previously loaded value, if any, is still visible.
	StateLoading

	// loaded successfully.
	StateReady

	// the last loading failed. Nothing is visible.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrNotReady is returned from mutations issued before the store is loaded.
	ErrNotReady = errors.New("store is not ready")

	// ErrClosed is returned from operations started after Close.
	ErrClosed = errors.New("store is closed")
)

type options struct {
	logger logrus.FieldLogger
}

type Option func(*options) *options

// WithLogger sets a logger of the store.
//
// By default, logs are discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) *options {
		o.logger = logger
		return o
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		o = opt(o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}
	return o
}

// subscribers holds change listeners. It is guarded by the mutex of its owner.
type subscribers[S any] struct {
	next      int
	listeners map[int]func(S)
}

// add registers fn, and returns a function to remove it.
//
// mu should be the mutex guarding s; it is locked by the returned function.
func (s *subscribers[S]) add(mu *sync.Mutex, fn func(S)) func() {
	if s.listeners == nil {
		s.listeners = map[int]func(S){}
	}
	key := s.next
	s.next += 1
	s.listeners[key] = fn

	once := new(sync.Once)
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			delete(s.listeners, key)
		})
	}
}

// listening returns registered listeners, ordered by registration.
func (s *subscribers[S]) listening() []func(S) {
	if len(s.listeners) == 0 {
		return nil
	}
	ret := make([]func(S), 0, len(s.listeners))
	for key := 0; key < s.next; key++ {
		if fn, ok := s.listeners[key]; ok {
			ret = append(ret, fn)
		}
	}
	return ret
}

func (s *subscribers[S]) clear() {
	s.listeners = nil
}

func notify[S any](listeners []func(S), snapshot S) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
