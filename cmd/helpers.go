package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/events"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
)

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)

// appOptions are passed to every app built by a command. Tests use it to
// inject a mock process manager.
var appOptions []app.Option

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// styleState renders a lifecycle state for terminal output
func styleState(s sandbox.State) string {
	switch s {
	case sandbox.StateReady:
		return okStyle.Render(string(s))
	case sandbox.StateBusy:
		return busyStyle.Render(string(s))
	case sandbox.StateStarting, sandbox.StateTerminating:
		return warnStyle.Render(string(s))
	case sandbox.StateFailed:
		return errorStyle.Render(string(s))
	default:
		return dimStyle.Render(string(s))
	}
}

// styleKind renders an event kind for terminal output
func styleKind(k events.Kind) string {
	label := fmt.Sprintf("%-7s", k)
	switch k {
	case events.KindStarted:
		return okStyle.Render(label)
	case events.KindBusy:
		return busyStyle.Render(label)
	case events.KindError:
		return errorStyle.Render(label)
	default:
		return dimStyle.Render(label)
	}
}

// eventPrinter returns a handler writing one line per event to w
func eventPrinter(w io.Writer) events.Handler {
	return func(e events.SandboxEvent) {
		fmt.Fprintf(w, "%s %s %s\n", dimStyle.Render(e.Time.Local().Format("15:04:05.000")), styleKind(e.Kind), e.Message)
	}
}

// buildApp resolves the options for root from the workspace config file,
// flags and environment, and builds the app.
func buildApp(cmd *cobra.Command, root string, options ...app.Option) (*app.App, error) {
	overrides, err := inputOverrides(cmd)
	if err != nil {
		return nil, err
	}

	in, err := app.LoadInput(root, overrides)
	if err != nil {
		return nil, err
	}

	opts := config.Resolve(in)
	logging.Debug("resolved options", "root", opts.RootDir, "command", opts.Command, "mode", opts.Mode)

	all := append(append([]app.Option(nil), appOptions...), options...)
	return app.New(opts, all...)
}
