package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/composectl/internal/lifecycle"
	"github.com/mmr-tortoise/composectl/internal/model"
)

// restartOutput is the JSON result of the start_and_stop command.
type restartOutput struct {
	Project string `json:"project"`
	model.RestartResult
}

// NewStartAndStopCommand creates the "start_and_stop" cobra command.
func NewStartAndStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "start_and_stop",
		Aliases: []string{"restart"},
		Short:   "Rebuild and restart the declared services",
		Long: `Stop all declared compose services, rebuild changed images and start
the services detached (compose up --build --detach), then list the
running containers.

Lingering containers are not force-removed by this command; use "stop"
for that.

Examples:
  composectl start_and_stop
  composectl restart -f compose.yaml -f compose.prod.yaml`,

		Args: cobra.NoArgs,

		RunE: runStartAndStop,
	}
}

func runStartAndStop(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.controller.RestartAll(cmd.Context())
	a.finish(lifecycle.OperationRestart, result.Summary(), err)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(a.out, restartOutput{Project: a.project.Name, RestartResult: result})
	}
	return printContainerTable(a.out, result.Running)
}
