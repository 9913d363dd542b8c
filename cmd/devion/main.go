// Package main provides the Devion CLI entry point.
// Devion routes a named command and a JSON argument blob to a handler module
// and prints exactly one JSON response envelope on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"devion/internal/commands"
	"devion/internal/commands/builtin"
	"devion/internal/logger"
	"devion/internal/output"
	"devion/internal/services"
	"devion/internal/version"
	"devion/pkg/devtypes"
)

// usage is reported when the positional arguments are missing.
const usage = "usage: devion <command> <args-json>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app holds the state of one invocation.
type app struct {
	v        *viper.Viper
	stdout   io.Writer
	exitCode int
}

// run executes one invocation and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	loadDotEnv()

	a := &app{v: viper.New(), stdout: stdout}
	rootCmd, err := a.newRootCmd()
	if err != nil {
		fmt.Fprintf(stderr, "Error setting up flags: %v\n", err)
		return 1
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Flag errors are invocation-level malformation.
		a.emit(devtypes.Failure(devtypes.KindMalformedInput, "invalid invocation", err.Error(), usage), false)
	}
	return a.exitCode
}

func (a *app) newRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "devion <command> <args-json>",
		Short: "Devion - developer environment command dispatcher",
		Long: `Devion runs one developer-environment command per invocation and prints
a JSON envelope {success, data, message, errors} on stdout.

Commands: status, scan, analyze, fix, deploy, config, init, help, use, setup.
Run 'devion help {}' for the command reference.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version.GetFormattedVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runCommand,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	flags := rootCmd.Flags()
	flags.String("config", "", "Config file path [default: ~/.devion/config.json]")
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.Duration("probe-timeout", services.DefaultProbeTimeout, "Timeout for each tool version query")
	flags.Bool("trace", false, "Append stack traces of failures to the errors list")
	flags.Bool("pretty", false, "Render a human-readable summary instead of JSON")

	// Bind flags to viper
	for _, name := range []string{"config", "log-level", "log-file", "probe-timeout", "trace", "pretty"} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("error binding %s flag: %w", name, err)
		}
	}
	a.v.SetEnvPrefix("DEVION")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	return rootCmd, nil
}

func (a *app) runCommand(cmd *cobra.Command, args []string) error {
	if err := logger.Configure(a.v.GetString("log-level"), a.v.GetString("log-file")); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error configuring logger: %v\n", err)
	}
	pretty := a.v.GetBool("pretty")
	if err := version.ValidateVersion(); err != nil {
		logger.Warn("Build carries an invalid version", "error", err)
	}

	switch {
	case len(args) < 2:
		a.emit(devtypes.Failure(devtypes.KindMalformedInput, "missing arguments", usage), pretty)
		return nil
	case len(args) > 2:
		a.emit(devtypes.Failure(devtypes.KindMalformedInput, "too many arguments",
			fmt.Sprintf("expected 2 arguments, got %d", len(args)), usage), pretty)
		return nil
	}

	env, err := services.NewEnvironment(services.EnvironmentOptions{
		ConfigPath:   a.v.GetString("config"),
		ProbeTimeout: a.v.GetDuration("probe-timeout"),
	})
	if err != nil {
		a.emit(devtypes.Failure(devtypes.KindInternalFault, "could not resolve environment", err.Error()), pretty)
		return nil
	}

	registry, err := builtin.NewRegistry(env)
	if err != nil {
		a.emit(devtypes.Failure(devtypes.KindInternalFault, "could not build command registry", err.Error()), pretty)
		return nil
	}

	logger.Debug("Starting Devion", "version", version.GetVersion(), "command", args[0])
	dispatcher := commands.NewDispatcher(registry, commands.WithTrace(a.v.GetBool("trace")))
	a.emit(dispatcher.Dispatch(cmd.Context(), args[0], args[1]), pretty)
	return nil
}

// emit prints env and records the exit status. Only malformed invocations
// exit non-zero.
func (a *app) emit(env devtypes.Envelope, pretty bool) {
	opts := []output.Option{output.WithWriter(a.stdout)}
	if pretty {
		opts = append(opts, output.Pretty())
	}
	if err := output.NewPrinter(opts...).PrintEnvelope(env); err != nil {
		logger.Error("Failed to write response", "error", err)
		a.exitCode = 1
		return
	}
	if env.Kind == devtypes.KindMalformedInput {
		a.exitCode = 1
	}
}

// loadDotEnv loads ~/.devion/.env and ./.env. Variables already set in the
// environment win.
func loadDotEnv() {
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, services.ConfigDirName, ".env"))
	}
	files = append(files, ".env")

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to load env file", "file", file, "error", err)
		}
	}
}
