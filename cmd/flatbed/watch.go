package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/flatbed/internal/config"
	"github.com/jackzampolin/flatbed/internal/convert"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert PDFs as they appear in a directory",
	Long: `Watch a directory and convert every PDF that appears in it.

Each arriving .pdf file passes the same validation as the convert
command and its workbook is written next to it. Failures are logged
and the watch continues. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("failed to stat watch directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}

		recorder := openRecorder(logger)
		if recorder != nil {
			defer recorder.Close()
		}
		conv := convert.New(cfg, logger, recorder)

		logger.Info("watching for pdf files", "dir", dir)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
					continue
				}
				handleArrival(ctx, conv, cfg, logger, ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Error("watch error", "error", err)
			}
		}
	},
}

// handleArrival converts one newly appeared file. Errors are logged,
// not returned: a bad file must not stop the watch loop.
func handleArrival(ctx context.Context, conv *convert.Converter, cfg *config.Config, logger *slog.Logger, path string) {
	if err := awaitStable(ctx, path); err != nil {
		logger.Debug("skipping file", "path", path, "error", err)
		return
	}
	if err := validateInput(path, cfg); err != nil {
		logger.Warn("skipping invalid input", "path", path, "error", err)
		return
	}

	res, err := conv.Convert(ctx, path, filepath.Base(path))
	if err != nil {
		logger.Error("conversion failed", "path", path, "error", err)
		return
	}

	out := filepath.Join(filepath.Dir(path), res.SuggestedFilename)
	if err := os.WriteFile(out, res.WorkbookBytes, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", out, "error", err)
		return
	}
	logger.Info("converted", "input", path, "output", out, "sheets", res.Metrics.Sheets)
}

// awaitStable waits until the file stops growing. Create fires as soon
// as the file exists, usually before a copy into the directory has
// finished writing it.
func awaitStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for i := 0; i < 25; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return errors.New("file did not stop growing")
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
