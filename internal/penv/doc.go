// SPDX-License-Identifier: MPL-2.0

// Package penv builds and maintains the PIO Core virtual environment.
//
// The build cascades through an ordered list of construction strategies
// (venv module, virtualenv in several invocation forms, a downloaded
// virtualenv bootstrap) for each candidate interpreter, wiping the target
// directory before every attempt so failed strategies never leak partial
// state into the next one. When every host interpreter is exhausted, a
// portable runtime is fetched and given the same treatment. A successful
// build records its metadata to state.json and upgrades pip inside the
// environment on a best-effort basis.
package penv
