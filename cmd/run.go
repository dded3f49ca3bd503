package cmd

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/server"
)

// shutdownTimeout bounds the stop of the status server and the sandbox
const shutdownTimeout = 15 * time.Second

type runOptions struct {
	listen  string
	journal bool
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run <root>",
		Short: "Run the sandbox process until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, &o)
		},
	}

	addInputFlags(cmd)
	cmd.Flags().StringVar(&o.listen, "listen", "", "Serve /healthz, /status and /metrics on this address")
	cmd.Flags().BoolVar(&o.journal, "journal", false, "Record events to the workspace journal in memory mode")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, o *runOptions) error {
	a, err := buildApp(cmd, args[0], app.WithJournal(o.journal))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsubscribe := a.Runtime.StreamEvents(eventPrinter(cmd.OutOrStdout()))
	defer unsubscribe()

	if err := a.Runtime.Start(ctx); err != nil {
		closeApp(a)
		return err
	}

	st := a.Runtime.Status(ctx)
	logSuccess("Sandbox %s (pid %d) in %s", styleState(st.State), st.Runtime.PID, st.RootDir)
	if a.Journal != nil {
		logInfo("Journal: %s", a.Journal.Path())
	}

	serveErr := make(chan error, 1)
	var srv *server.Server
	if o.listen != "" {
		l, err := net.Listen("tcp", o.listen)
		if err != nil {
			closeApp(a)
			return errors.Wrap(errors.ExitGeneralError, "failed to listen on "+o.listen, err)
		}
		srv = a.StatusServer(o.listen)
		logInfo("Status: http://%s/status", l.Addr())
		go func() { serveErr <- srv.Serve(l) }()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logWarning("status server stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarning("status server shutdown: %v", err)
		}
	}

	if err := a.Close(shutdownCtx); err != nil {
		return err
	}
	logSuccess("Sandbox %s", styleState(sandbox.StateIdle))
	return nil
}

// closeApp releases the app after a failed startup
func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		logWarning("cleanup: %v", err)
	}
}
