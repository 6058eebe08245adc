// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EnvironmentBuildFailedId Id = iota + 1
	InterpreterNotFoundId
	StateNotFoundId
	DownloadFailedId
	ConfigLoadFailedId
	PortableRuntimeUnavailableId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	environmentBuildFailedIssue = &Issue{
		id: EnvironmentBuildFailedId,
		mdMsg: `
# Could not create the PIO Core Virtual Environment!

Every known way of building the isolated Python environment failed on this
machine. This usually means the Python installations we found are broken or
too restricted to create virtual environments.

## Things you can try:
- Run with verbose mode to see what each attempt reported:
~~~
$ pioinstaller --verbose create
~~~

- Install a clean Python 3.6+ from https://www.python.org/downloads/
  and retry
- On Debian/Ubuntu, make sure the venv module is present:
~~~
$ sudo apt install python3-venv
~~~

- Remove a half-broken environment directory and retry:
~~~
$ rm -rf ~/.platformio/penv
$ pioinstaller create
~~~

If nothing helps, please report the issue so we can fix it for everyone:
https://github.com/platformio/platformio-core-installer/issues`,
		extLinks: []HttpLink{
			"https://github.com/platformio/platformio-core-installer/issues",
		},
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# No compatible Python interpreter found!

We searched your PATH for a Python 3.6+ interpreter but came up empty.

## Search order:
1. python3 (python3.exe on Windows)
2. python (python.exe on Windows)

## Things you can try:
- Install Python 3.6 or newer from https://www.python.org/downloads/
- Make sure the interpreter is on your PATH:
~~~
$ python3 --version
~~~

- On Windows, enable the "Add python.exe to PATH" option in the installer
- List what the installer can see:
~~~
$ pioinstaller check python
~~~`,
	}

	stateNotFoundIssue = &Issue{
		id: StateNotFoundId,
		mdMsg: `
# No environment state found!

The environment directory has no state.json record, so it was either never
fully installed or the file was removed.

## Things you can try:
- Rebuild the environment from scratch:
~~~
$ pioinstaller create
~~~

- If you keep the environment somewhere custom, point the installer at it:
~~~
$ pioinstaller state --penv-dir /path/to/penv
~~~`,
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

A file needed for the installation could not be fetched.

## Common causes:
- No network connectivity or a captive portal
- A corporate proxy or firewall blocking bootstrap.pypa.io
- An expired system clock breaking TLS validation

## Things you can try:
- Check connectivity to the bootstrap host:
~~~
$ curl -I https://bootstrap.pypa.io/virtualenv/virtualenv.pyz
~~~

- Configure HTTPS_PROXY if you are behind a proxy
- Retry with verbose mode for the exact URL and error:
~~~
$ pioinstaller --verbose create
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the pioinstaller configuration file.

## Configuration file locations:
- Linux: ~/.config/pioinstaller/config.cue
- macOS: ~/Library/Application Support/pioinstaller/config.cue
- Windows: %APPDATA%\pioinstaller\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ pioinstaller config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/pioinstaller/config.cue
~~~

## Example configuration:
~~~cue
core_dir: "/opt/platformio"

urls: {
  virtualenv: "https://mirror.example.com/virtualenv.pyz"
}

ui: {
  verbose: false
}
~~~`,
	}

	portableRuntimeUnavailableIssue = &Issue{
		id: PortableRuntimeUnavailableId,
		mdMsg: `
# No portable Python available for this platform!

All local interpreters failed and there is no prebuilt portable Python
distribution for your operating system and architecture.

## Things you can try:
- Install a system Python 3.6+ and retry:
~~~
$ pioinstaller create
~~~

- Check supported combinations with:
~~~
$ pioinstaller check python
~~~`,
	}

	issues = map[Id]*Issue{
		environmentBuildFailedIssue.Id():     environmentBuildFailedIssue,
		interpreterNotFoundIssue.Id():        interpreterNotFoundIssue,
		stateNotFoundIssue.Id():              stateNotFoundIssue,
		downloadFailedIssue.Id():             downloadFailedIssue,
		configLoadFailedIssue.Id():           configLoadFailedIssue,
		portableRuntimeUnavailableIssue.Id(): portableRuntimeUnavailableIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
