// Package tui provides the Bubble Tea chat session for docqa.
//
// The model never talks to the gateway directly: every network operation
// goes through the session's controllers inside a tea.Cmd, and the view is
// redrawn from controller snapshots.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/docqa/types"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(highlightColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	// ReadyBannerStyle marks the chat as usable.
	ReadyBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(successColor)

	// QuestionStyle and AnswerStyle label transcript turns.
	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)
	AnswerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// StateStyle returns a style for an ingestion state.
func StateStyle(state types.IngestionState) lipgloss.Style {
	switch state {
	case types.StateReady:
		return SuccessStyle
	case types.StateUploading, types.StateIndexing, types.StateClearing:
		return WarningStyle
	case types.StateError:
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// NoticeStyle returns a style for a notice level.
func NoticeStyle(level types.NoticeLevel) lipgloss.Style {
	switch level {
	case types.NoticeSuccess:
		return SuccessStyle
	case types.NoticeWarning:
		return WarningStyle
	case types.NoticeError:
		return ErrorStyle
	default:
		return InfoStyle
	}
}
