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

	"tocidx/pdf"
	"tocidx/state"
)

// Segment splits text of the body document into one file per page, ready to
// be sent for extraction. Segment numbers are physical body page numbers.
func Segment(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("segment")

	body, err := absArg(cmd, 0, "body document", true)
	if err != nil {
		return err
	}
	dst, err := destination(cmd, 1, log)
	if err != nil {
		return err
	}
	if len(cmd.Args().Get(1)) == 0 {
		dst = filepath.Join(dst, strings.TrimSuffix(filepath.Base(body), filepath.Ext(body))+"-segments")
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("body", body), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	texts, err := pdf.PageTexts(body)
	if err != nil {
		return fmt.Errorf("unable to read body document: %w", err)
	}
	return writeSegments(ctx, texts, dst, env.Overwrite, log)
}

func writeSegments(ctx context.Context, texts []string, dir string, overwrite bool, log *zap.Logger) error {
	empty := 0
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("segment-%d.txt", i+1))
		if err := prepareOutput(name, overwrite, log); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			empty++
		}
		if err := os.WriteFile(name, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("unable to write segment: %w", err)
		}
	}
	if empty > 0 {
		log.Warn("Some pages have no extractable text", zap.Int("pages", empty))
	}
	log.Info("Segments written", zap.Int("count", len(texts)), zap.String("dir", dir))
	return nil
}
