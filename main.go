// SPDX-License-Identifier: MPL-2.0

// pioinstaller bootstraps the PlatformIO Core virtual environment.
package main

import cmd "github.com/MohammedTaherR/pioinstaller/cmd/pioinstaller"

func main() {
	cmd.Execute()
}
