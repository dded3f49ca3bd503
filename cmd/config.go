package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <root>",
		Short: "Show the resolved runtime options for a workspace",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfig,
	}

	addInputFlags(cmd)

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	overrides, err := inputOverrides(cmd)
	if err != nil {
		return err
	}

	in, err := app.LoadInput(args[0], overrides)
	if err != nil {
		return err
	}
	opts := config.Resolve(in)

	if path := config.FindFile(args[0]); path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Option", "Value")
	for _, row := range optionRows(opts) {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render options: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render options: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return errors.ConfigError("invalid runtime options", err)
	}
	return nil
}

// optionRows flattens opts into option/value pairs
func optionRows(opts config.RuntimeOptions) [][]string {
	mounts := make([]string, 0, len(opts.Mounts))
	for _, m := range opts.Mounts {
		mounts = append(mounts, m.String())
	}

	watch := "off"
	if opts.Watch.Enabled {
		watch = fmt.Sprintf("on (%s, debounce %s)", strings.Join(opts.Watch.Paths, ", "), opts.Watch.Debounce)
	}

	return [][]string{
		{"root", opts.RootDir},
		{"command", opts.Command},
		{"mode", string(opts.Mode)},
		{"exec timeout", opts.Timeout.String()},
		{"exec failure", string(opts.ExecFailure)},
		{"env", strings.Join(opts.EnvList(), " ")},
		{"mounts", strings.Join(mounts, " ")},
		{"watch", watch},
	}
}
