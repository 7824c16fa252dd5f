package commandline

import (
	"io"
	"strings"

	"github.com/youta-t/flarc"
)

// MockCommandline serves fixed flags and args to a task under test.
//
// Nil streams behave as an empty stdin and discarded outputs,
// so tests set only what they read or assert.
type MockCommandline[T any] struct {
	Fullname_ string

	Stdin_  io.Reader
	Stdout_ io.Writer
	Stderr_ io.Writer

	Flags_ T
	Args_  map[string][]string
}

var _ flarc.Commandline[struct{}] = MockCommandline[struct{}]{}

func (m MockCommandline[T]) Fullname() string { return m.Fullname_ }
func (m MockCommandline[T]) Flags() T         { return m.Flags_ }

func (m MockCommandline[T]) Stdin() io.Reader {
	if m.Stdin_ == nil {
		return strings.NewReader("")
	}
	return m.Stdin_
}

func (m MockCommandline[T]) Stdout() io.Writer { return orDiscard(m.Stdout_) }
func (m MockCommandline[T]) Stderr() io.Writer { return orDiscard(m.Stderr_) }

// Args returns positional args. Missing keys read as no values.
func (m MockCommandline[T]) Args() map[string][]string {
	if m.Args_ == nil {
		return map[string][]string{}
	}
	return m.Args_
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
