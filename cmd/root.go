package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "forage-runtime",
		Short: "Local sandbox runtime controller",
		Long: `forage-runtime runs one sandbox process over a workspace directory.

It resolves runtime options, starts the sandbox process, runs commands in
its environment, and restarts it when watched files change:
  - Options from forage-runtime.toml/.yaml, flags and FORAGE_RUNTIME_* env
  - Lifecycle events streamed to the terminal
  - Optional hot reload with debounced file watching
  - Optional read-only status and metrics endpoint`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose, jsonOutput, os.Stderr)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newRunCmd(),
		newExecCmd(),
		newConfigCmd(),
		newEventsCmd(),
	)

	return root
}

func Execute() error {
	return rootCmd.Execute()
}
