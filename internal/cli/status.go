package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List containers in scope",
		Long: `List the running containers the runtime reports, the same listing
start_and_stop prints after starting the services. --all includes stopped
containers.

Examples:
  composectl status
  composectl status --all --scope project
  composectl status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			containers, err := a.controller.Status(cmd.Context(), all)
			if err != nil {
				return err
			}

			if IsJSONOutput() {
				return printJSON(a.out, containers)
			}
			return printContainerTable(a.out, containers)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include stopped containers")

	return cmd
}
