package errors

import (
	"errors"
	"strings"
)

// CUIError is an error to be read by labelkit users at the terminal.
//
// Error() tells what went wrong and what to do next. Verbose() also
// tells the causes, for --verbose outputs and logs.
type CUIError interface {
	error
	Hint() string
	Verbose() string
}

type explained struct {
	summary string
	hint    string
	cause   error
}

// Explain makes a CUIError with a summary line.
func Explain(summary string, options ...ExplainOption) CUIError {
	e := &explained{summary: summary}
	for _, o := range options {
		o(e)
	}
	return e
}

type ExplainOption func(*explained)

// WithHint sets what users can do next, like "Try `labelkit login` again".
func WithHint(hint string) ExplainOption {
	return func(e *explained) { e.hint = hint }
}

// Because sets the error causing it.
//
// The cause is visible via errors.Is and errors.As.
func Because(cause error) ExplainOption {
	return func(e *explained) { e.cause = cause }
}

func (e *explained) Unwrap() error {
	return e.cause
}

func (e *explained) Hint() string {
	return e.hint
}

func (e *explained) Error() string {
	if e.hint == "" {
		return e.summary
	}
	return e.summary + "\n" + e.hint
}

// Verbose lists causes one per line, outermost first.
func (e *explained) Verbose() string {
	lines := []string{e.Error()}
	for cause := e.cause; cause != nil; cause = errors.Unwrap(cause) {
		if ce, ok := cause.(CUIError); ok {
			lines = append(lines, "caused by: "+ce.Verbose())
			break
		}
		lines = append(lines, "caused by: "+cause.Error())
	}
	return strings.Join(lines, "\n")
}
