package model

import (
	"errors"
	"fmt"
)

// ExitCode defines the CLI exit codes used when no runtime command exit
// status is available to propagate (for example, Engine API failures or
// configuration errors).
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates invalid configuration or a missing
	// compose file.
	ExitConfigError ExitCode = 2

	// ExitRuntimeUnavailable indicates the container runtime daemon or
	// its socket is not accessible.
	ExitRuntimeUnavailable ExitCode = 3

	// ExitPermissionDenied indicates privilege elevation failed or the
	// runtime rejected the caller.
	ExitPermissionDenied ExitCode = 4

	// ExitPartialTeardown indicates the graceful stop succeeded but the
	// forceful removal of lingering containers failed.
	ExitPartialTeardown ExitCode = 5

	// ExitBuildFailure indicates the build-and-start step failed.
	ExitBuildFailure ExitCode = 6

	// ExitLockTimeout indicates another invocation held the lifecycle
	// lock for longer than the configured timeout.
	ExitLockTimeout ExitCode = 7

	// ExitInterrupted is the conventional status of a process stopped by
	// SIGINT (128 + 2).
	ExitInterrupted ExitCode = 130
)

// ErrorKind classifies a failure for callers and for exit code mapping.
type ErrorKind int

const (
	// KindCommandFailed is any runtime command failure not covered by a
	// more specific kind.
	KindCommandFailed ErrorKind = iota

	// KindRuntimeUnavailable: the runtime daemon/socket cannot be reached.
	KindRuntimeUnavailable

	// KindPermissionDenied: privilege elevation failed or was rejected.
	KindPermissionDenied

	// KindPartialTeardown: stop succeeded, forceful removal failed.
	KindPartialTeardown

	// KindBuildFailure: the rebuild step of the restart flow failed.
	KindBuildFailure

	// KindConfig: configuration could not be loaded or is invalid.
	KindConfig

	// KindLockTimeout: the lifecycle lock could not be acquired in time.
	KindLockTimeout
)

// Sentinel errors, one per kind. CLIError.Is matches them, so callers
// can write errors.Is(err, model.ErrRuntimeUnavailable).
var (
	ErrCommandFailed          = errors.New("runtime command failed")
	ErrRuntimeUnavailable     = errors.New("container runtime unavailable")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrPartialTeardownFailure = errors.New("partial teardown failure")
	ErrBuildFailure           = errors.New("build failure")
	ErrConfig                 = errors.New("invalid configuration")
	ErrLockTimeout            = errors.New("lifecycle lock timeout")
)

// String returns the kind name used in logs and JSON output.
func (k ErrorKind) String() string {
	switch k {
	case KindRuntimeUnavailable:
		return "RuntimeUnavailable"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindPartialTeardown:
		return "PartialTeardownFailure"
	case KindBuildFailure:
		return "BuildFailure"
	case KindConfig:
		return "ConfigError"
	case KindLockTimeout:
		return "LockTimeout"
	default:
		return "CommandFailed"
	}
}

// Sentinel returns the sentinel error for the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindRuntimeUnavailable:
		return ErrRuntimeUnavailable
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindPartialTeardown:
		return ErrPartialTeardownFailure
	case KindBuildFailure:
		return ErrBuildFailure
	case KindConfig:
		return ErrConfig
	case KindLockTimeout:
		return ErrLockTimeout
	default:
		return ErrCommandFailed
	}
}

// ExitCode returns the exit code used for the kind when no process exit
// status is available.
func (k ErrorKind) ExitCode() ExitCode {
	switch k {
	case KindRuntimeUnavailable:
		return ExitRuntimeUnavailable
	case KindPermissionDenied:
		return ExitPermissionDenied
	case KindPartialTeardown:
		return ExitPartialTeardown
	case KindBuildFailure:
		return ExitBuildFailure
	case KindConfig:
		return ExitConfigError
	case KindLockTimeout:
		return ExitLockTimeout
	default:
		return ExitGeneralError
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Code is the exit code to return to the OS. For a failing runtime
	// command this is the command's own exit status.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Output is the raw combined output of the failing command, if any.
	Output string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of this error's kind.
func (e *CLIError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// NewCLIError creates a new CLIError of the given kind, using the kind's
// default exit code.
func NewCLIError(kind ErrorKind, message string) *CLIError {
	return &CLIError{Kind: kind, Code: kind.ExitCode(), Message: message}
}

// WrapCLIError creates a new CLIError of the given kind that wraps an
// existing error.
func WrapCLIError(kind ErrorKind, message string, err error) *CLIError {
	return &CLIError{Kind: kind, Code: kind.ExitCode(), Message: message, Err: err}
}

// WithKind returns a copy of the error re-classified as kind, keeping the
// propagated exit code and output. Errors already classified as
// RuntimeUnavailable or PermissionDenied keep their kind.
func (e *CLIError) WithKind(kind ErrorKind) *CLIError {
	if e.Kind == KindRuntimeUnavailable || e.Kind == KindPermissionDenied {
		return e
	}
	clone := *e
	clone.Kind = kind
	return &clone
}

// ExitCodeOf returns the exit code for err: the CLIError code when err
// wraps one, ExitGeneralError for other errors and ExitSuccess for nil.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Code == ExitSuccess {
			return ExitGeneralError
		}
		return cliErr.Code
	}
	return ExitGeneralError
}
