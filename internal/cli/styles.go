// Package cli renders docintake results for the terminal using lipgloss.
package cli

import (
	"github.com/Veraticus/docintake/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
const (
	harborBlue = lipgloss.Color("#4A90D9")
	teal       = lipgloss.Color("#4ECDC4")
	amber      = lipgloss.Color("#FFE66D")
	coral      = lipgloss.Color("#FF6B6B")
	mist       = lipgloss.Color("#95E1D3")
	gray       = lipgloss.Color("#666666")
	charcoal   = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(harborBlue).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(teal)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(coral)
	InfoStyle    = lipgloss.NewStyle().Foreground(mist)
	SubtleStyle  = lipgloss.NewStyle().Foreground(gray)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle and TableCellStyle style the cells of Table.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(harborBlue).PaddingRight(2)
	TableCellStyle   = lipgloss.NewStyle().PaddingRight(2)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(charcoal).
			Padding(1, 2)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(harborBlue)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	DocIcon     = "📄"
	RobotIcon   = "🤖"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the document icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(DocIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox renders content under title in a rounded box.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}

// SeverityStyle returns the style for a failed result of severity s.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityCritical, model.SeverityError:
		return ErrorStyle
	case model.SeverityWarning:
		return WarningStyle
	case model.SeverityInfo:
		return InfoStyle
	}
	return SubtleStyle
}

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeverityCritical, model.SeverityError:
		return ErrorIcon
	case model.SeverityWarning:
		return WarningIcon
	case model.SeverityInfo:
		return InfoIcon
	}
	return "-"
}
