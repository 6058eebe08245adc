// SPDX-License-Identifier: MPL-2.0

// Package python locates usable Python interpreters: it scans the host PATH
// for compatible installations and, when none qualify, fetches a portable
// runtime archive from the PlatformIO registry as a last resort.
package python
