package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
)

// EnvPrefix prefixes environment overrides of command flags,
// e.g. FORAGE_RUNTIME_TIMEOUT_MS for --timeout-ms.
const EnvPrefix = "FORAGE_RUNTIME"

// addInputFlags registers the runtime option flags on cmd
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("command", "", "Sandbox process command line")
	f.String("mode", "", "State mode: memory or persist")
	f.Int("timeout-ms", 0, "Exec timeout in milliseconds")
	f.StringArray("env", nil, "Sandbox environment variable KEY=VALUE (repeatable)")
	f.Bool("watch", false, "Restart the sandbox when watched files change")
	f.StringSlice("watch-path", nil, "Path to watch, relative to the root (repeatable)")
	f.Int("debounce-ms", 0, "Quiet period before a reload in milliseconds")
	f.String("exec-failure", "", "Exec failure policy: keep-ready or mark-failed")
}

// newViper binds cmd's flags and the FORAGE_RUNTIME_* environment.
// Flags win over the environment.
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

// inputOverrides returns the runtime options explicitly set by flags or
// environment. Unset values stay zero so the workspace config file and the
// defaults still apply.
func inputOverrides(cmd *cobra.Command) (config.Input, error) {
	v := newViper(cmd)

	var in config.Input
	if v.IsSet("command") {
		in.Command = v.GetString("command")
	}
	if v.IsSet("mode") {
		in.Mode = config.Mode(v.GetString("mode"))
	}
	if v.IsSet("timeout-ms") {
		in.TimeoutMs = v.GetInt("timeout-ms")
	}
	if v.IsSet("env") {
		env, err := parseEnv(v.GetStringSlice("env"))
		if err != nil {
			return config.Input{}, err
		}
		in.Env = env
	}
	if v.IsSet("watch") {
		in.Watch = config.Bool(v.GetBool("watch"))
	}
	if v.IsSet("watch-path") {
		in.WatchPaths = v.GetStringSlice("watch-path")
	}
	if v.IsSet("debounce-ms") {
		in.WatchDebounceMs = v.GetInt("debounce-ms")
	}
	if v.IsSet("exec-failure") {
		in.ExecFailure = config.ExecFailurePolicy(v.GetString("exec-failure"))
	}

	return in, nil
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.ValidationError("invalid --env value " + pair + " (want KEY=VALUE)")
		}
		env[key] = value
	}
	return env, nil
}
