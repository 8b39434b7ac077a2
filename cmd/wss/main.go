package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wss/config"
	"wss/misc"
	"wss/state"
	"wss/vars"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}

	env.Strict = cmd.Bool("strict")
	if env.Palette, err = preparePalette(env.Cfg, cmd.StringSlice("define")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// preparePalette combines configured host variables with the ones given on
// command line, command line wins.
func preparePalette(cfg *config.Config, defines []string) (*vars.Table, error) {
	engine := cfg.Engine
	variables := maps.Clone(engine.Variables)
	if variables == nil {
		variables = make(map[string]string, len(defines))
	}
	for _, def := range defines {
		name, value, ok := strings.Cut(def, "=")
		if !ok || len(strings.TrimSpace(name)) == 0 {
			return nil, fmt.Errorf("bad variable definition %q, expected --name=value", def)
		}
		variables[strings.TrimSpace(name)] = value
	}
	engine.Variables = variables
	return engine.Palette()
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit() is not used.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		for _, e := range multierr.Errors(err) {
			env.Log.Error("Program ended with error", zap.Error(e))
		}
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt, resolving large widget trees
	// checks context between nodes
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "widget stylesheet checker and style resolver",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
			&cli.BoolFlag{Name: "strict", Usage: "treat any stylesheet diagnostic as failure"},
			&cli.StringSliceFlag{Name: "define", Aliases: []string{"D"}, Usage: "add host palette variable `--NAME=VALUE`, may be repeated"},
		},
		Commands: []*cli.Command{
			{
				Name:         "check",
				Usage:        "Compiles stylesheet(s) and reports every diagnostic",
				OnUsageError: usageErrorHandler,
				Action:       checkStylesheets,
				ArgsUsage:    "[STYLESHEET...]",
				CustomHelpTemplate: fmt.Sprintf(`%s
STYLESHEET:
    path to stylesheet file(s), if absent - stylesheet from configuration
    path to zip theme bundle: every .qss and .css file inside is checked

Exit code is not zero when stylesheet cannot be read or, in strict mode, when
any diagnostic has been reported.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "dump",
				Usage:        "Dumps compiled rule set in cascade order",
				OnUsageError: usageErrorHandler,
				Action:       dumpRules,
				Flags: []cli.Flag{
					outputFlag(),
				},
				ArgsUsage: "[STYLESHEET] [DESTINATION]",
			},
			{
				Name:         "resolve",
				Usage:        "Resolves styles for widget tree",
				OnUsageError: usageErrorHandler,
				Action:       resolveStyles,
				Flags: []cli.Flag{
					outputFlag(),
					&cli.StringSliceFlag{Name: "widget", Aliases: []string{"w"}, Usage: "resolve only widget with `ID`, may be repeated"},
					&cli.BoolFlag{Name: "no-cache", Usage: "do not use resolution cache"},
					&cli.BoolFlag{Name: "stats", Usage: "report engine statistics when done"},
				},
				ArgsUsage: "TREE [STYLESHEET] [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
TREE:
    YAML file describing widget tree:
        widgets:
          - id: main
            type: QMainWindow
            children:
              - id: ok
                type: QPushButton
                inherits: [QAbstractButton, QWidget]
                name: ok_button
                states: [hover]
                attrs: {text: OK}
                parts: [menu-indicator]
                style: "color: red;"

STYLESHEET:
    path to stylesheet file, if absent - stylesheet from configuration

DESTINATION:
    file name to write styles to, if absent - STDOUT
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "format",
				Usage:        "Writes stylesheet back in canonical form",
				OnUsageError: usageErrorHandler,
				Action:       formatStylesheet,
				ArgsUsage:    "STYLESHEET [DESTINATION]",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"},
		Usage: "output `FORMAT` (supported formats: " + strings.Join(config.OutputFmtNames(), ", ") + "), if absent - from configuration"}
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		err   error
		data  []byte
		state string
	)
	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", destinationName(fname)))
	return writeOutput(fname, data)
}
