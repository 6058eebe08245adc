// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !darwin && !windows

package platform

// Release returns "" on platforms without a uname-style version source.
func Release() string {
	return ""
}
