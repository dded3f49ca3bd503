package cmd

import (
	"fmt"
	"io"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/runtime"
)

func newExecCmd() *cobra.Command {
	var stdin bool

	cmd := &cobra.Command{
		Use:   "exec <root> -- <command>",
		Short: "Start the sandbox, run one command in it, and stop",
		Long: `exec starts the sandbox process, runs the command in its environment,
prints the command output and stops the sandbox again. The exit status
mirrors the command's.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, stdin)
		},
	}

	addInputFlags(cmd)
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Pass standard input to the command")

	return cmd
}

func runExec(cmd *cobra.Command, args []string, withStdin bool) error {
	// Everything after -- is the command
	dash := cmd.ArgsLenAtDash()
	if dash != 1 || len(args) < 2 {
		return errors.ValidationError("usage: forage-runtime exec <root> -- <command>")
	}
	root, execArgs := args[0], args[1:]

	req := runtime.ExecRequest{
		// Construct the command string with all arguments quoted
		Command: shellquote.Join(execArgs...),
	}
	if withStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		req.Stdin = string(data)
	}

	a, err := buildApp(cmd, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx := cmd.Context()
	if err := a.Runtime.Start(ctx); err != nil {
		return err
	}

	resp, err := a.Runtime.Exec(ctx, req)
	if resp != nil {
		fmt.Fprint(cmd.OutOrStdout(), resp.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), resp.Stderr)
	}
	if err != nil {
		return err
	}

	if resp.ExitCode != 0 {
		return errors.New(resp.ExitCode, fmt.Sprintf("%s exited with status %d", execArgs[0], resp.ExitCode))
	}
	return nil
}

