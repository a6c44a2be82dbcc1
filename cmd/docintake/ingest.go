package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/docintake/internal/cli"
	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/intake"
	"github.com/Veraticus/docintake/internal/storage"
	"github.com/spf13/cobra"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.pdf|dir>...",
		Short: "Split, classify and store PDF bundles",
		Long: `Process every PDF given (directories are searched non-recursively) and store
the classified segments. Re-ingesting a file replaces its stored segments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	files, err := collectPDFs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	comps, err := newComponents()
	if err != nil {
		return err
	}
	defer comps.Close()

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Ingest")
	ctx := handler.HandleInterrupts(cmd.Context(), "Files processed so far have been stored.")

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(files), "Ingesting")

	var segments, failed int
	for _, path := range files {
		n, err := ingestFile(ctx, comps.pipeline, store, path)
		_ = bar.Add(1)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			failed++
			common.LogError(slog.Default(), err, "Failed to ingest file", common.Fields{"path": path})
			continue
		}
		segments += n
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Stored %d documents from %d files in %s",
		segments, len(files)-failed, store.Path())))
	if failed > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d files failed", failed)))
	}
	if handler.WasInterrupted() {
		return context.Canceled
	}
	return nil
}

// ingestFile processes one PDF and stores its segments, returning how many.
func ingestFile(ctx context.Context, pipeline *intake.Pipeline, store *storage.SQLiteStorage, path string) (int, error) {
	res, err := pipeline.ProcessFile(ctx, path)
	if err != nil {
		return 0, err
	}
	if len(res.Segments) == 0 {
		return 0, fmt.Errorf("%w: no text in %s", common.ErrMalformedInput, path)
	}
	if _, err := store.SaveSegments(ctx, path, res.Segments); err != nil {
		return 0, fmt.Errorf("failed to store segments: %w", err)
	}

	slog.Info("Ingested file",
		"path", path,
		"pages", res.Quality.PageCount,
		"documents", len(res.Segments))
	return len(res.Segments), nil
}

// collectPDFs expands directories to the PDFs they contain.
func collectPDFs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
