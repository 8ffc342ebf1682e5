package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/docqa/types"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("docqa · Document Q&A"))
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Render(m.documentView()))
	b.WriteString("\n")

	if m.ingest.IndexReady {
		b.WriteString(ReadyBannerStyle.Render("Ready to chat"))
		b.WriteString("\n")
	}
	if m.ingest.IndexReady || len(m.chat.Transcript) > 0 {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.toast != nil {
		b.WriteString(NoticeStyle(m.toast.Level).Render(m.toast.Text))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// documentView renders the upload panel.
func (m Model) documentView() string {
	s := m.ingest
	var lines []string

	if s.Uploaded != nil {
		doc := s.Uploaded
		ext := doc.Extension()
		if ext == "" {
			ext = "Unknown"
		}
		lines = append(lines,
			TitleStyle.Render("Uploaded File Details"),
			field("Name", doc.Name),
			field("Extension", ext),
			field("Type", doc.Type),
			field("Size", doc.FormattedSize),
		)
	}
	// A selection that differs from the uploaded document is pending.
	if s.Selected != nil && (s.Uploaded == nil || s.Selected.ID != s.Uploaded.ID) {
		lines = append(lines,
			field("Selected", s.Selected.Name),
			field("Size", s.Selected.FormattedSize),
			MutedStyle.Render("ctrl+u to upload & index, ctrl+r to remove"),
		)
	}
	if len(lines) == 0 {
		lines = append(lines,
			MutedStyle.Render("No file selected."),
			MutedStyle.Render("Supported formats: "+strings.ToUpper(strings.Join(trimDots(types.SupportedExtensions()), ", "))),
		)
	}

	lines = append(lines, field("State", StateStyle(s.State).Render(m.stateText())))
	if s.IndexMessage != "" {
		lines = append(lines, MutedStyle.Render(s.IndexMessage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) stateText() string {
	switch m.ingest.State {
	case types.StateUploading:
		return m.spinner.View() + " Uploading..."
	case types.StateUploaded:
		return m.spinner.View() + " Uploaded"
	case types.StateIndexing:
		return m.spinner.View() + " Indexing..."
	case types.StateClearing:
		return m.spinner.View() + " Clearing..."
	default:
		return string(m.ingest.State)
	}
}

// transcriptView renders every turn in order.
func (m Model) transcriptView() string {
	if len(m.chat.Transcript) == 0 {
		return MutedStyle.Render("No questions yet.")
	}

	wrap := lipgloss.NewStyle().Width(max(m.viewport.Width-2, 10))
	var b strings.Builder
	for i, t := range m.chat.Transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case t.Role == types.RoleQuestion:
			b.WriteString(QuestionStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(t.Content))
		case t.IsPendingAnswer():
			b.WriteString(AnswerStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.spinner.View() + " Thinking...")
		default:
			b.WriteString(AnswerStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(t.Content))
			if n := len(t.Sources); n > 0 {
				b.WriteString("\n")
				b.WriteString(MutedStyle.Render(fmt.Sprintf("%d source(s)", n)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

func trimDots(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}
