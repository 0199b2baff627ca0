// Package docker provides the container runtime client used by the
// lifecycle controller.
//
// The Runtime interface is the single capability the controller needs:
// compose teardown, compose build-and-start, container queries and
// forceful removal. Two backends implement it:
//   - CLIRuntime drives the docker CLI through an injected CommandRunner,
//     optionally behind a privilege-elevation prefix such as sudo
//   - EngineRuntime keeps compose verbs on the CLI but answers queries and
//     removals through the Docker Engine API, with automatic socket
//     detection (Linux, macOS, Windows)
//
// Failures of either backend are classified into model.CLIError kinds
// (RuntimeUnavailable, PermissionDenied, ...) and keep the exit status of
// the failing command so the CLI can propagate it.
package docker
