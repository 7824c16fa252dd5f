//go:build !windows

package open

import "os"

// NewSafeFile creates an empty file readable and writable only by the current user.
//
// An existing file is truncated.
func NewSafeFile(filepath string) (*os.File, error) {
	return os.OpenFile(filepath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, os.FileMode(0600))
}
