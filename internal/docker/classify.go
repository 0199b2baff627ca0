package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/composectl/internal/model"
)

// Output fragments that identify a failure class. Matched lowercased.
// Permission markers are checked first: the socket permission error also
// mentions connecting to the daemon.
var (
	permissionMarkers = []string{
		"permission denied",
		"a password is required",
		"is not in the sudoers file",
		"a terminal is required",
		"incorrect password attempt",
	}
	unavailableMarkers = []string{
		"cannot connect to the docker daemon",
		"is the docker daemon running",
		"error during connect",
		"connection refused",
	}
)

// classifyCommandError turns a runner error into a *model.CLIError. The
// exit status of the failed command becomes the error's exit code so the
// CLI can propagate it. privileged reports whether the command ran behind
// a privilege-elevation prefix.
func classifyCommandError(ctx context.Context, step string, err error, privileged bool) *model.CLIError {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		cliErr := model.WrapCLIError(model.KindCommandFailed, step+" interrupted", ctxErr)
		cliErr.Code = model.ExitInterrupted
		return cliErr
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return model.WrapCLIError(model.KindCommandFailed, step+" failed", err)
	}

	if errors.Is(cmdErr.Err, exec.ErrNotFound) || isStartError(cmdErr.Err) {
		kind := model.KindRuntimeUnavailable
		if privileged {
			kind = model.KindPermissionDenied
		}
		cliErr := model.WrapCLIError(kind,
			fmt.Sprintf("%s failed: could not run %q", step, cmdErr.Argv[0]), cmdErr.Err)
		cliErr.Output = cmdErr.Output
		return cliErr
	}

	kind := classifyOutput(cmdErr.Output)
	cliErr := model.WrapCLIError(kind, step+" failed", cmdErr)
	cliErr.Output = cmdErr.Output
	if cmdErr.ExitCode > 0 {
		cliErr.Code = model.ExitCode(cmdErr.ExitCode)
	}
	return cliErr
}

// classifyOutput maps command output to an error kind.
func classifyOutput(output string) model.ErrorKind {
	lower := strings.ToLower(output)
	for _, marker := range permissionMarkers {
		if strings.Contains(lower, marker) {
			return model.KindPermissionDenied
		}
	}
	for _, marker := range unavailableMarkers {
		if strings.Contains(lower, marker) {
			return model.KindRuntimeUnavailable
		}
	}
	return model.KindCommandFailed
}

// isStartError reports whether err came from starting the process rather
// than from its exit status.
func isStartError(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// classifyAPIError maps a Docker Engine API error to a *model.CLIError.
// API failures have no process exit status, so the kind's default exit
// code applies.
func classifyAPIError(ctx context.Context, step string, err error) *model.CLIError {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cliErr := model.WrapCLIError(model.KindCommandFailed, step+" interrupted", ctxErr)
		cliErr.Code = model.ExitInterrupted
		return cliErr
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case client.IsErrConnectionFailed(err), cerrdefs.IsUnavailable(err):
		return model.WrapCLIError(model.KindRuntimeUnavailable, step+" failed", err)
	case cerrdefs.IsPermissionDenied(err), cerrdefs.IsUnauthorized(err):
		return model.WrapCLIError(model.KindPermissionDenied, step+" failed", err)
	}

	kind := classifyOutput(err.Error())
	return model.WrapCLIError(kind, step+" failed", err)
}
