package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/docintake/internal/cli"
	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/watch"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest PDFs as they arrive in a directory",
		Long: `Watch a directory and ingest every PDF written to it. Files already present
are not processed; use ingest for those.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			watcher, err := watch.New(cfg.Watch.Extensions, slog.Default(), watch.WithSettle(cfg.Watch.Settle))
			if err != nil {
				return err
			}
			defer func() { _ = watcher.Close() }()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Watch")
			ctx := handler.HandleInterrupts(cmd.Context(), "")

			events, err := watcher.Watch(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatInfo("Watching "+args[0]+" (Ctrl+C to stop)"))

			var ingested int
			for ev := range events {
				n, err := ingestFile(ctx, comps.pipeline, store, ev.Path)
				if err != nil {
					if isCanceled(err) {
						break
					}
					common.LogError(slog.Default(), err, "Failed to ingest file", common.Fields{"path": ev.Path, "op": string(ev.Op)})
					fmt.Fprintln(out, cli.FormatError(ev.Path+": "+err.Error()))
					continue
				}
				ingested++
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s: %d documents", ev.Path, n)))
			}

			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Ingested %d files", ingested)))
			return nil
		},
	}
}
