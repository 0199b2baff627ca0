// Package model defines the domain types and value objects for the
// composectl CLI.
//
// This package contains pure data structures with no external dependencies.
// The Container Set is owned by the container runtime; the types here
// (ContainerInfo, StopResult, RestartResult) are transient snapshots read
// back from the runtime after each command, never a cache of its state.
//
// The package also defines exit codes (ExitCode), error kinds (ErrorKind)
// and a custom error type (CLIError) that carries both, so a failing
// runtime command can propagate its exit status to the OS process.
package model
