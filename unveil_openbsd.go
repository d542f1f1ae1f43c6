// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lti

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Errors returned by LockFilesystem.
const (
	errUnveil      unveilError = "Call 'unveil' failed"
	errUnveilEPERM unveilError = "Call 'unveil' failed: Called after locking"
)

type unveilError string

func (e unveilError) Error() string { return string(e) }

// LockFilesystem removes access to the filesystem from this process.
//
// Launches and visits never touch a file, so nothing is unveiled before locking.
// Call this after anything that reads configuration or certificates.
func LockFilesystem() error {
	switch err := unix.UnveilBlock(); err {
	case nil:
		return nil
	case syscall.EPERM:
		return errUnveilEPERM
	default:
		return errUnveil
	}
}
