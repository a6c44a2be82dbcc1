package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/docintake/internal/cli"
	"github.com/Veraticus/docintake/internal/extract"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	var (
		useOCR  bool
		asJSON  bool
		quality bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract page text from a PDF",
		Long: `Extract the text of every page of a PDF. Scanned PDFs with little embedded
text fall back to OCR when it is available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := newComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			pages, err := comps.extractor.ExtractFile(cmd.Context(), args[0], useOCR)
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"source":  args[0],
					"pages":   pages,
					"quality": extract.MeasureQuality(pages),
				})
			}
			if quality {
				return cli.RenderPages(out, args[0], pages, extract.MeasureQuality(pages))
			}
			for _, p := range pages {
				fmt.Fprintf(out, "%s\n%s\n\n", cli.SubtleStyle.Render(fmt.Sprintf("--- page %d ---", p.PageNumber)), p.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useOCR, "ocr", true, "fall back to OCR for scanned PDFs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print pages as JSON")
	cmd.Flags().BoolVar(&quality, "summary", false, "print a per-page summary instead of the text")

	return cmd
}

func splitCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "split <file.pdf>",
		Short: "Split a PDF bundle into classified documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := newComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			res, err := comps.pipeline.ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"source":   res.Source,
					"segments": res.Segments,
					"quality":  res.Quality,
				})
			}
			if len(res.Segments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No text found in "+args[0]))
				return nil
			}
			return cli.RenderSegments(cmd.OutOrStdout(), res.Source, res.Segments)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print segments as JSON")

	return cmd
}

func classifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Classify a single document",
		Long: `Classify one document as a whole. PDFs are extracted first; any other file
is read as plain text. Use - to read text from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := newComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			text, err := documentText(cmd, comps, args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text found in %s", args[0])
			}

			res := comps.pipeline.ClassifyText(cmd.Context(), text)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return cli.RenderClassification(cmd.OutOrStdout(), args[0], res)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the classification as JSON")

	return cmd
}

func documentText(cmd *cobra.Command, comps *components, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err := comps.extractor.ExtractFile(cmd.Context(), path, cfg.Intake.UseOCR)
		if err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", path, err)
		}
		return model.JoinPages(pages), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
