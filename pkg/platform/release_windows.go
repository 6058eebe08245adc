// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Release returns the Windows version triple, for example "10.0.22631".
// RtlGetNtVersionNumbers reads the version from the PEB, so the result is
// not subject to manifest-based version lies.
func Release() string {
	major, minor, build := windows.RtlGetNtVersionNumbers()
	return fmt.Sprintf("%d.%d.%d", major, minor, build)
}
