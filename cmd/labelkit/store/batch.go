package store

import (
	"fmt"
	"strings"
)

// FileFailure is a failed upload in a batch.
type FileFailure struct {
	// position in the batch
	Index int

	// file name of the upload
	Name string

	Err error
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("#%d (%s): %s", f.Index, f.Name, f.Err)
}

func (f FileFailure) Unwrap() error {
	return f.Err
}

// BatchError reports uploads failed in a batch.
//
// Uploads not listed in Failures have succeeded.
type BatchError struct {
	Total    int
	Failures []FileFailure
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Failures))
	for nth, f := range e.Failures {
		msgs[nth] = f.Error()
	}
	return fmt.Sprintf(
		"%d of %d uploads failed: %s",
		len(e.Failures), e.Total, strings.Join(msgs, "; "),
	)
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for nth, f := range e.Failures {
		errs[nth] = f
	}
	return errs
}
