package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

func newEventsCmd() *cobra.Command {
	var jsonLines bool

	cmd := &cobra.Command{
		Use:   "events <root>",
		Short: "Display the event journal of a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, args, jsonLines)
		},
	}

	cmd.Flags().BoolVar(&jsonLines, "jsonl", false, "Output events as JSON lines")

	return cmd
}

func runEvents(cmd *cobra.Command, args []string, jsonLines bool) error {
	root, err := workspace.ValidateRoot(args[0])
	if err != nil {
		return errors.WorkspaceError("validate", err)
	}

	journal := audit.NewJournal(root)
	recorded, err := journal.Events()
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(recorded) == 0 {
		logInfo("No events recorded in %s", journal.Path())
		return nil
	}

	out := cmd.OutOrStdout()
	if jsonLines {
		for _, e := range recorded {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
		}
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Time", "Type", "Message")
	for _, e := range recorded {
		row := []string{e.Time.Local().Format("2006-01-02 15:04:05.000"), string(e.Kind), e.Message}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render events: %w", err)
		}
	}
	return table.Render()
}
