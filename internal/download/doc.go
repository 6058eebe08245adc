// SPDX-License-Identifier: MPL-2.0

// Package download fetches remote assets (virtualenv.pyz, get-pip.py,
// portable runtime archives) to local files with atomic completion and
// SHA256 verification.
package download
