// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package contains utilities for handling platform-specific concerns,
// such as operating system naming, kernel release lookup, and the host
// description string recorded alongside installed environments.
package platform
