package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/mmr-tortoise/composectl/internal/model"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printContainerTable writes containers as a borderless table.
func printContainerTable(w io.Writer, containers []model.ContainerInfo) error {
	if len(containers) == 0 {
		_, err := fmt.Fprintln(w, "No containers found.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Container ID", "Name", "Service", "Image", "State", "Status"})

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, c := range containers {
		table.Append([]string{
			c.ShortID(),
			c.ContainerName,
			dash(c.ServiceName),
			dash(c.Image),
			c.State.String(),
			dash(c.Status),
		})
	}

	table.Render()
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
