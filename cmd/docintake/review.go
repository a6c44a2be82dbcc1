package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/docintake/internal/cli"
	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/Veraticus/docintake/internal/storage"
	"github.com/spf13/cobra"
)

// segmentStore is the part of storage that review reads and writes.
type segmentStore interface {
	ListSegments(ctx context.Context, source string) ([]storage.StoredSegment, error)
	UpdateSegment(ctx context.Context, id string, seg model.DocumentSegment) error
}

func reviewCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "review [source.pdf]",
		Short: "Review and correct stored document classifications",
		Long: `Walk through the documents found in an ingested PDF and correct their types.
Corrected documents are stored as manual classifications at full confidence.

Without a source, lists the ingested PDFs. With --set, applies corrections
without prompting, for example --set 2=packing_list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close storage", "error", closeErr)
				}
			}()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				sources, err := store.ListSources(cmd.Context())
				if err != nil {
					return err
				}
				if len(sources) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("Nothing ingested yet"))
					return nil
				}
				for _, s := range sources {
					fmt.Fprintln(out, s)
				}
				return nil
			}

			var changed int
			if len(sets) > 0 {
				changed, err = applyReclassifications(cmd.Context(), store, args[0], sets)
			} else {
				asker := cli.NewAsker(cmd.InOrStdin(), cmd.ErrOrStderr())
				changed, err = reviewSegments(cmd.Context(), store, asker, out, args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Reclassified %d document(s)", changed)))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "set document N to a type without prompting (N=type)")

	return cmd
}

func loadSegments(ctx context.Context, store segmentStore, source string) ([]storage.StoredSegment, error) {
	segs, err := store.ListSegments(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, common.NewUserError(
			"run ingest on the PDF first",
			fmt.Errorf("%w: no documents stored for %s", common.ErrNotFound, source))
	}
	return segs, nil
}

// reviewSegments asks for the type of each stored segment of source. An empty
// answer keeps the current type.
func reviewSegments(ctx context.Context, store segmentStore, asker *cli.Asker, w io.Writer, source string) (int, error) {
	segs, err := loadSegments(ctx, store, source)
	if err != nil {
		return 0, err
	}

	plain := make([]model.DocumentSegment, len(segs))
	for i, s := range segs {
		plain[i] = s.DocumentSegment
	}
	if err := cli.RenderSegments(w, source, plain); err != nil {
		return 0, err
	}

	changed := 0
	for i, seg := range segs {
		if seg.TextPreview != "" {
			fmt.Fprintln(w, cli.SubtleStyle.Render(firstLine(seg.TextPreview)))
		}

		current := "unclassified"
		if seg.DocumentType != nil {
			current = string(*seg.DocumentType)
		}

		for {
			answer, err := asker.Ask(ctx, fmt.Sprintf("Document %d (p%d-%d) type [%s]:", i+1, seg.PageStart, seg.PageEnd, current))
			if err != nil {
				return changed, err
			}
			if answer == "" {
				break
			}

			t, ok := model.ParseDocumentType(answer)
			if !ok {
				fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("Unknown type %q; one of: %s", answer, knownTypes())))
				continue
			}

			updated, err := reclassify(ctx, store, seg, t)
			if err != nil {
				return changed, err
			}
			if updated {
				changed++
			}
			break
		}
	}
	return changed, nil
}

// applyReclassifications applies N=type assignments, numbering documents from 1.
func applyReclassifications(ctx context.Context, store segmentStore, source string, sets []string) (int, error) {
	segs, err := loadSegments(ctx, store, source)
	if err != nil {
		return 0, err
	}

	type assignment struct {
		docType model.DocumentType
		index   int
	}
	assignments := make([]assignment, 0, len(sets))
	for _, raw := range sets {
		num, name, ok := strings.Cut(raw, "=")
		if !ok {
			return 0, common.Malformed(fmt.Sprintf("--set %q, want N=type", raw), nil)
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 1 || n > len(segs) {
			return 0, common.Malformed(fmt.Sprintf("--set %q, document must be 1-%d", raw, len(segs)), nil)
		}
		t, ok := model.ParseDocumentType(name)
		if !ok {
			return 0, common.Malformed(fmt.Sprintf("--set %q, unknown type", raw), nil)
		}
		assignments = append(assignments, assignment{index: n - 1, docType: t})
	}

	changed := 0
	for _, a := range assignments {
		updated, err := reclassify(ctx, store, segs[a.index], a.docType)
		if err != nil {
			return changed, err
		}
		if updated {
			changed++
			segs[a.index].DocumentSegment = segs[a.index].Reclassify(a.docType)
		}
	}
	return changed, nil
}

// reclassify stores seg as a manual t classification. It reports false when seg
// already is one.
func reclassify(ctx context.Context, store segmentStore, seg storage.StoredSegment, t model.DocumentType) (bool, error) {
	if seg.DetectionMethod == model.DetectionManual && seg.DocumentType != nil && *seg.DocumentType == t {
		return false, nil
	}
	if err := store.UpdateSegment(ctx, seg.ID, seg.Reclassify(t)); err != nil {
		return false, fmt.Errorf("failed to reclassify document at p%d-%d: %w", seg.PageStart, seg.PageEnd, err)
	}
	slog.Info("Reclassified document", "source", seg.Source, "pages", fmt.Sprintf("%d-%d", seg.PageStart, seg.PageEnd), "type", t)
	return true, nil
}

func knownTypes() string {
	all := model.AllDocumentTypes()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
