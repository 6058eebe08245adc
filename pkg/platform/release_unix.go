// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin

package platform

import "golang.org/x/sys/unix"

// Release returns the kernel release string reported by uname(2), for
// example "6.8.0-45-generic". Returns "" when the syscall fails.
func Release() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return nulTerminated(uts.Release[:])
}

// nulTerminated converts a fixed-size C char buffer to a Go string,
// stopping at the first NUL byte.
func nulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
