package main

import (
	"context"
	"fmt"
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

	"tocidx/common"
	"tocidx/config"
	"tocidx/convert"
	"tocidx/misc"
	"tocidx/state"
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
		env.Rpt.SetRunID(env.RunID)
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

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()), zap.String("run", env.RunID))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
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
		fname := env.Cfg.Logging.PanicLogName()
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit() is never used.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

const sourceHelp = `
SOURCE:
    extraction batches, one batch per text segment, following forms are supported:
        path to a directory: every .json, .md and .txt file directly under it, in natural order of names
        path to a zip archive: every .json, .md and .txt entry, in natural order of names
        path to a journal produced by "ingest" command: batches in segment order
        path to a single JSON file: either one batch or an array of batches

    Batch may be wrapped into markdown code fence. Batches which cannot be
    decoded are reported and skipped.
`

const bodyHelp = `
BODY:
    PDF document to prepend contents to and append index to, it is never modified
`

const destinationHelp = `
DESTINATION:
    directory or file name with .pdf extension, if absent - current working directory
    when directory is specified output name is derived from document.output_name_template
`

func overwriteFlag() cli.Flag {
	return &cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "builds table of contents and alphabetical index for PDF documents from extracted batches",
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
		},
		Commands: []*cli.Command{
			{
				Name:         "run",
				Usage:        "Consolidates batches and composes final document",
				OnUsageError: usageErrorHandler,
				Action:       convert.Run,
				Flags: []cli.Flag{
					overwriteFlag(),
					&cli.StringFlag{Name: "dataset", Usage: "also save consolidated dataset to `FILE`"},
				},
				ArgsUsage:          "SOURCE BODY [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + bodyHelp + destinationHelp,
			},
			{
				Name:         "consolidate",
				Usage:        "Merges batches into canonical dataset (JSON)",
				OnUsageError: usageErrorHandler,
				Action:       convert.Consolidate,
				Flags:        []cli.Flag{overwriteFlag()},
				ArgsUsage:    "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + `
DESTINATION:
    directory or file name with .json extension, if absent - current working directory
`,
			},
			{
				Name:         "compose",
				Usage:        "Composes final document from previously consolidated dataset",
				OnUsageError: usageErrorHandler,
				Action:       convert.Compose,
				Flags:        []cli.Flag{overwriteFlag()},
				ArgsUsage:    "DATASET BODY [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
DATASET:
    JSON file produced by "consolidate" command, may be edited by hand
` + bodyHelp + destinationHelp,
			},
			{
				Name:         "ingest",
				Usage:        "Records extraction answers in the journal",
				OnUsageError: usageErrorHandler,
				Action:       convert.Ingest,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from", Usage: "assign segment numbers starting with `N` (default: next after last journaled one)"},
				},
				ArgsUsage: "JOURNAL FILE...",
				CustomHelpTemplate: cli.CommandHelpTemplate + `
JOURNAL:
    journal file (SQLite), created if absent

FILE:
    answers to extraction requests, one per segment, taken in natural order of names.
    Answers which cannot be decoded are journaled as failed and could be
    replaced later using --from.
`,
			},
			{
				Name:         "segment",
				Usage:        "Splits body document text into per page segments for extraction",
				OnUsageError: usageErrorHandler,
				Action:       convert.Segment,
				Flags:        []cli.Flag{overwriteFlag()},
				ArgsUsage:    "BODY [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + bodyHelp + `
DESTINATION:
    directory for segment files, if absent - "<body name>-segments" in current working directory
`,
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

Produces file with actual "active" configuration values wich is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.

Outline deduplication policies: %s
`, cli.CommandHelpTemplate, strings.Join(common.OutlineDedupNames(), ", ")),
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

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

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

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
