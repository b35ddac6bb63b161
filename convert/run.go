package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tocidx/consolidate"
	"tocidx/records"
	"tocidx/state"
)

// absArg returns absolute path from positional argument, required arguments
// must be present.
func absArg(cmd *cli.Command, n int, what string, required bool) (string, error) {
	arg := cmd.Args().Get(n)
	if len(arg) == 0 {
		if required {
			return "", fmt.Errorf("no %s has been specified", what)
		}
		return "", nil
	}
	return filepath.Abs(arg)
}

// destination returns absolute destination from positional argument n, or
// current working directory when absent.
func destination(cmd *cli.Command, n int, log *zap.Logger) (dst string, err error) {
	if dst, err = absArg(cmd, n, "destination", false); err != nil {
		return "", err
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if cmd.Args().Len() > n+1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[n+1:]))
	}
	return dst, nil
}

// Run consolidates extraction batches and composes final document in one go.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	src, err := absArg(cmd, 0, "batch source", true)
	if err != nil {
		return err
	}
	body, err := absArg(cmd, 1, "body document", true)
	if err != nil {
		return err
	}
	dst, err := destination(cmd, 2, log)
	if err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("body", body), zap.String("destination", dst), zap.String("run", env.RunID))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	ds, err := consolidateSource(ctx, src, env, log)
	if err != nil {
		return err
	}
	if keep := cmd.String("dataset"); len(keep) > 0 {
		if err := writeDataset(keep, ds, env.Overwrite, log); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = composeDocument(ctx, ds, body, dst, env, log)
	return err
}

// Consolidate produces canonical dataset from extraction batches.
func Consolidate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("consolidate")

	src, err := absArg(cmd, 0, "batch source", true)
	if err != nil {
		return err
	}
	dst, err := destination(cmd, 1, log)
	if err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	if !strings.EqualFold(filepath.Ext(dst), ".json") {
		dst = filepath.Join(dst, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+"-dataset.json")
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	ds, err := consolidateSource(ctx, src, env, log)
	if err != nil {
		return err
	}
	return writeDataset(dst, ds, env.Overwrite, log)
}

func writeDataset(name string, ds *records.Dataset, overwrite bool, log *zap.Logger) error {
	if err := prepareOutput(name, overwrite, log); err != nil {
		return err
	}
	if err := records.WriteDataset(name, ds); err != nil {
		return fmt.Errorf("unable to save dataset: %w", err)
	}
	log.Info("Dataset saved", zap.String("file", name))
	return nil
}

// Compose lays out previously consolidated dataset around body document.
func Compose(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compose")

	src, err := absArg(cmd, 0, "dataset", true)
	if err != nil {
		return err
	}
	body, err := absArg(cmd, 1, "body document", true)
	if err != nil {
		return err
	}
	dst, err := destination(cmd, 2, log)
	if err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("dataset", src), zap.String("body", body), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	loaded, err := records.LoadDataset(src)
	if err != nil {
		return fmt.Errorf("unable to load dataset: %w", err)
	}
	env.Rpt.Store("dataset.json", src)

	// dataset may have been edited by hand, consolidation puts it back in
	// order and does not change canonical one
	ds := consolidate.Consolidate([]records.Batch{loaded.AsBatch()}, consolidateOptions(&env.Cfg.Document))

	_, err = composeDocument(ctx, &ds, body, dst, env, log)
	return err
}
