package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tocidx/batches"
	"tocidx/journal"
	"tocidx/records"
	"tocidx/state"
)

// Ingest records extraction answers in the journal, one segment per file.
// Files are taken in natural order of their names.
func Ingest(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("ingest")

	path, err := absArg(cmd, 0, "journal", true)
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return errors.New("no batch files have been specified")
	}
	files := cmd.Args().Slice()[1:]
	sort.Sort(natural.StringSlice(files))

	log.Info("Processing starting", zap.String("journal", path), zap.Int("files", len(files)), zap.String("run", env.RunID))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	j, err := journal.Open(path, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, j.Close())
	}()

	return ingestFiles(ctx, j, files, cmd.Int("from"), env.RunID, log)
}

func ingestFiles(ctx context.Context, j *journal.Journal, files []string, first int, runID string, log *zap.Logger) error {
	if err := j.BeginRun(runID); err != nil {
		return err
	}
	if first <= 0 {
		next, err := j.Next()
		if err != nil {
			return err
		}
		first = next
	}

	stored, failed := 0, 0
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		segment, source := first+i, filepath.Base(name)

		b, err := readBatch(name)
		if err != nil {
			log.Warn("Unusable batch, journaling failure", zap.Int("segment", segment), zap.String("file", name), zap.Error(err))
			if err := j.Fail(segment, source, err); err != nil {
				return err
			}
			failed++
			continue
		}
		if err := j.Put(segment, source, b); err != nil {
			return err
		}
		stored++
	}
	log.Info("Batches journaled", zap.Int("first", first), zap.Int("stored", stored), zap.Int("failed", failed))
	return nil
}

func readBatch(name string) (b records.Batch, err error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return b, err
	}
	if b, err = batches.Decode(data); err != nil {
		return b, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return b, nil
}
