// Package cli implements the cobra-based CLI commands for composectl.
//
// Each subcommand (stop, start_and_stop, status) is defined in its own
// file within this package. This file defines the root command that serves
// as the parent for all subcommands and handles global flags, error output
// and exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/composectl/internal/config"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput controls whether command results are printed as JSON.
	// Step status lines move to stderr so stdout stays machine readable.
	jsonOutput bool

	// verbose lowers the log level to debug, which logs every runtime
	// command line.
	verbose bool
)

// Version, Commit and Date are set at build time via ldflags.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "composectl",
		Short: "Tear down and (re)provision a docker compose service group",
		Long: `composectl drives docker compose through two fixed sequences:

  stop            compose down, then force-remove any container still
                  reported by the runtime
  start_and_stop  compose down, compose up --build --detach, then list
                  the running containers

Invocations for the same compose project are serialized through a lock
file, and the exit code is the exit status of the failing runtime command.`,

		// Errors are printed by Run in text or JSON form.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	config.RegisterFlags(flags)

	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewStartAndStopCommand())
	rootCmd.AddCommand(NewStatusCommand())

	return rootCmd
}

// Execute runs the root command with SIGINT and SIGTERM wired to context
// cancellation and exits with the resulting code. It is the entry point
// called from main.go.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, rootCmd, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes rootCmd, prints any error to stderr and returns the process
// exit code. A failing runtime command yields its own exit status; other
// failures map through their error kind.
func Run(ctx context.Context, rootCmd *cobra.Command, stderr io.Writer) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return int(model.ExitSuccess)
	}

	printError(stderr, err)

	if ctx.Err() != nil {
		return int(model.ExitInterrupted)
	}
	return int(model.ExitCodeOf(err))
}

// errorOutput is the JSON shape of a failure.
type errorOutput struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Output  string `json:"output,omitempty"`
}

// printError writes err in the format selected by --json. The raw output
// of a failing runtime command follows the message in text mode.
func printError(w io.Writer, err error) {
	detail := errorDetail{
		Kind:    model.KindCommandFailed.String(),
		Code:    int(model.ExitCodeOf(err)),
		Message: err.Error(),
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		detail.Kind = cliErr.Kind.String()
		detail.Message = cliErr.Message
		detail.Output = cliErr.Output
		if cliErr.Err != nil {
			detail.Detail = cliErr.Err.Error()
		}
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(errorOutput{Error: detail}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if detail.Detail != "" {
		fmt.Fprintf(w, "Error: %s: %s\n", detail.Message, detail.Detail)
	} else {
		fmt.Fprintf(w, "Error: %s\n", detail.Message)
	}
	if detail.Output != "" {
		fmt.Fprintln(w, detail.Output)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
