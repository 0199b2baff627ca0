package docker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// CommandRunner defines the interface for executing external commands.
// Implementations run docker commands in the specified directory.
type CommandRunner interface {
	// Run executes a command, streaming its output, and returns the
	// combined stdout and stderr.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// RunOutput executes a command quietly and returns its stdout. Stderr
	// is only surfaced through the returned *CommandError.
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// CommandError describes a command that could not be started or exited
// with a non-zero status.
type CommandError struct {
	// Argv is the full command line, program name first.
	Argv []string

	// ExitCode is the process exit status, or -1 when the process never
	// ran or was killed by a signal.
	ExitCode int

	// Output is the captured output of the command.
	Output string

	// Err is the error returned by os/exec.
	Err error
}

// Error satisfies the error interface.
func (e *CommandError) Error() string {
	return strings.Join(e.Argv, " ") + ": " + e.Err.Error()
}

// Unwrap returns the underlying os/exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	// Stdout and Stderr receive streamed output from Run. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// lockedBuffer is a bytes.Buffer safe for the concurrent writes os/exec
// makes when stdout and stderr are different writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// Run executes a command with output teed to the runner's writers.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var combined lockedBuffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = tee(&combined, r.Stdout)
	cmd.Stderr = tee(&combined, r.Stderr)

	logCommand(dir, name, args)
	err := cmd.Run()
	out := combined.Bytes()
	if err != nil {
		return out, newCommandError(name, args, out, err)
	}
	return out, nil
}

// RunOutput executes a command and returns its stdout.
func (r ExecRunner) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	logCommand(dir, name, args)
	out, err := cmd.Output()
	if err != nil {
		return out, newCommandError(name, args, append(out, stderr.Bytes()...), err)
	}
	return out, nil
}

func tee(buf io.Writer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func logCommand(dir, name string, args []string) {
	logrus.WithFields(logrus.Fields{
		"dir":  dir,
		"argv": strings.Join(append([]string{name}, args...), " "),
	}).Debug("Running runtime command")
}

func newCommandError(name string, args []string, output []byte, err error) *CommandError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &CommandError{
		Argv:     append([]string{name}, args...),
		ExitCode: code,
		Output:   strings.TrimSpace(string(output)),
		Err:      err,
	}
}
