package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/docintake/internal/extract"
	"github.com/Veraticus/docintake/internal/llm"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/Veraticus/docintake/internal/ocr"
	"github.com/Veraticus/docintake/internal/validation"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under a header row separated by a rule. Short rows are
// padded with empty cells.
func Table(headers []string, rows [][]string) string {
	padded := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		padded[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(padded...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	return t.Render() + "\n"
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func typeLabel(t *model.DocumentType) string {
	if t == nil {
		return "unclassified"
	}
	return t.Label()
}

// RenderPages writes per-page character counts and the extraction quality.
func RenderPages(w io.Writer, source string, pages []model.PageText, q extract.Quality) error {
	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		preview := strings.Join(strings.Fields(p.Text), " ")
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.PageNumber),
			fmt.Sprintf("%d", p.CharCount),
			truncate(preview, 60),
		})
	}

	summary := fmt.Sprintf("%d pages, %d chars, %.0f chars/page, %.0f%% printable",
		q.PageCount, q.TotalChars, q.CharsPerPage, q.PrintableRatio*100)
	if q.LooksScanned() {
		summary += "  " + FormatWarning("looks scanned")
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n",
		FormatTitle(source),
		Table([]string{"Page", "Chars", "Text"}, rows),
		SubtleStyle.Render(summary))
	return err
}

// RenderSegments writes the segments found in source.
func RenderSegments(w io.Writer, source string, segments []model.DocumentSegment) error {
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []string{
			fmt.Sprintf("p%d-%d", s.PageStart, s.PageEnd),
			typeLabel(s.DocumentType),
			fmt.Sprintf("%.0f%%", s.Confidence*100),
			string(s.DetectionMethod),
			optional(s.ReferenceNumber),
		})
	}

	_, err := fmt.Fprintf(w, "%s\n%s%s\n",
		FormatTitle(source),
		Table([]string{"Pages", "Type", "Confidence", "Method", "Reference"}, rows),
		SubtleStyle.Render(fmt.Sprintf("%d documents", len(segments))))
	return err
}

// RenderClassification writes a single classification result.
func RenderClassification(w io.Writer, name string, res model.ClassificationResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Type:"), res.DocumentType.Label())
	fmt.Fprintf(&b, "%s %.0f%%\n", BoldStyle.Render("Confidence:"), res.Confidence*100)
	fmt.Fprintf(&b, "%s %s (%s)\n", BoldStyle.Render("Method:"), res.Method, res.Provider)
	fmt.Fprintf(&b, "%s %s", BoldStyle.Render("Reference:"), optional(res.ReferenceNumber))
	if res.Reasoning != "" {
		fmt.Fprintf(&b, "\n%s %s", BoldStyle.Render("Reasoning:"), res.Reasoning)
	}
	if len(res.Alternatives) > 0 {
		alts := make([]string, 0, len(res.Alternatives))
		for _, a := range res.Alternatives {
			alts = append(alts, fmt.Sprintf("%s %.0f%%", a.DocumentType.Label(), a.Confidence*100))
		}
		fmt.Fprintf(&b, "\n%s %s", BoldStyle.Render("Alternatives:"), SubtleStyle.Render(strings.Join(alts, ", ")))
	}

	_, err := fmt.Fprintln(w, RenderBox(name, b.String()))
	return err
}

// RenderReport writes a validation report: the verdict, each failed result and
// the counts.
func RenderReport(w io.Writer, shipmentID string, report model.ValidationReport) error {
	var b strings.Builder

	switch {
	case report.IsValid:
		b.WriteString(FormatSuccess("Shipment documents are valid"))
	case report.Override != nil:
		b.WriteString(FormatWarning("Invalid, overridden by " + report.Override.By + ": " + report.Override.Reason))
	default:
		b.WriteString(FormatError("Shipment documents are not valid"))
	}
	b.WriteString("\n\n")

	failed := report.FailedResults()
	for _, r := range failed {
		style := SeverityStyle(r.Severity)
		line := fmt.Sprintf("%s %-8s %s", severityIcon(r.Severity), r.Severity, r.Message)
		b.WriteString(style.Render(line))
		b.WriteString(SubtleStyle.Render("  [" + r.RuleID + "]"))
		b.WriteString("\n")
	}
	if len(failed) > 0 {
		b.WriteString("\n")
	}

	passed := len(report.Results) - len(failed)
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d",
		SuccessStyle.Render("passed"), passed,
		ErrorStyle.Render("failed"), report.Failed,
		WarningStyle.Render("warnings"), report.Warnings)

	_, err := fmt.Fprintln(w, RenderBox("Shipment "+shipmentID, b.String()))
	return err
}

// RenderRules lists validation rules.
func RenderRules(w io.Writer, rules []validation.Rule) error {
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		meta := rule.Meta()
		applies := "all"
		if len(meta.AppliesTo) > 0 {
			applies = strings.Join(meta.AppliesTo, ", ")
		}
		rows = append(rows, []string{
			meta.ID,
			string(meta.Category),
			SeverityStyle(meta.Severity).Render(string(meta.Severity)),
			applies,
		})
	}
	_, err := fmt.Fprintf(w, "%s\n%s", FormatTitle("Validation rules"),
		Table([]string{"Rule", "Category", "Severity", "Applies to"}, rows))
	return err
}

// RenderStatus writes OCR and AI availability.
func RenderStatus(w io.Writer, o ocr.Status, l llm.Status) error {
	avail := func(ok bool, reason string) string {
		if ok {
			return FormatSuccess("available")
		}
		return FormatError("unavailable: " + reason)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("OCR:"), avail(o.Available, o.Reason))
	fmt.Fprintf(&b, "  %s %s / %s %s, %d dpi, %s per page, %d workers\n",
		SubtleStyle.Render("engine"), o.Renderer, o.Recognizer, o.Version, o.DPI, o.PageTimeout, o.Workers)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("AI:"), avail(l.Available, l.Reason))
	fmt.Fprintf(&b, "  %s %s %s, timeout %s, %d req/min, %d cached",
		SubtleStyle.Render("provider"), l.Provider, l.Model, l.Timeout, l.RateLimit, l.CacheSize)

	_, err := fmt.Fprintln(w, RenderBox(RobotIcon+" Status", b.String()))
	return err
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
