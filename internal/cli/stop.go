package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/composectl/internal/lifecycle"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// stopOutput is the JSON result of the stop command.
type stopOutput struct {
	Project string `json:"project"`
	model.StopResult
}

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the declared services and remove lingering containers",
		Long: `Stop all declared compose services, then query the runtime for any
container still present (running or stopped). If none remain, prints
"all container is down". Otherwise every reported container is removed
with a single forceful removal and "containers forcefully removed" is
printed.

With the default scope ("all") the query covers every container on the
host, not only the compose project's.

Examples:
  composectl stop
  composectl stop --sudo --scope project
  composectl stop --json`,

		Args: cobra.NoArgs,

		RunE: runStop,
	}
}

func runStop(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.controller.StopAll(cmd.Context())
	a.finish(lifecycle.OperationStop, result.Summary(), err)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(a.out, stopOutput{Project: a.project.Name, StopResult: result})
	}
	return nil
}
