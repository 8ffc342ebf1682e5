package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/docqa/conversation"
	"github.com/pithecene-io/docqa/gateway"
	"github.com/pithecene-io/docqa/ingest"
	"github.com/pithecene-io/docqa/session"
	"github.com/pithecene-io/docqa/types"
)

// Placeholders for the two input modes.
const (
	pathPlaceholder     = "Path to a .pdf, .doc, .docx or .txt file"
	questionPlaceholder = "Ask a question about your document..."
	msgWaitForAnswer    = "Please wait for the current answer."
	msgWaitForStep      = "Please wait for the current step to finish."
	msgNotIndexed       = "Upload and index a document before asking questions."
)

// Chrome lines above and below the transcript viewport.
const chromeHeight = 14

// Messages produced by background commands.
type (
	// ingestDoneMsg reports the end of UploadAndIndex or ClearAll.
	ingestDoneMsg struct {
		op  string
		err error
	}

	// answerMsg reports the end of a Submit.
	answerMsg struct{ err error }
)

// Model is the chat session screen. Network work runs in tea.Cmds through
// the session; the model keeps only the latest controller snapshots.
type Model struct {
	ctx  context.Context
	sess *session.Session

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	ingest ingest.Snapshot
	chat   conversation.State
	toast  *types.Notice

	// working is set while UploadAndIndex or ClearAll runs.
	working bool
	asking  bool
	// choosing switches the input to path mode while a document is ready.
	choosing bool

	quitting bool
}

// NewModel creates the chat model. A non-empty path is selected right away.
func NewModel(ctx context.Context, sess *session.Session, path string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = InfoStyle

	m := Model{
		ctx:      ctx,
		sess:     sess,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 10),
		help:     help.New(),
		keys:     keys,
	}
	if path != "" {
		m.selectPath(path)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.working && !m.asking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case ingestDoneMsg:
		m.working = false
		m.refresh()
		switch {
		case errors.Is(msg.err, ingest.ErrBusy):
		case errors.Is(msg.err, ingest.ErrInvalidState):
			m.toast = &types.Notice{Level: types.NoticeWarning, Text: invalidStateText(msg.op)}
		case m.ingest.Notice != nil:
			m.toast = m.ingest.Notice
		case msg.err != nil:
			m.toast = &types.Notice{Level: types.NoticeError, Text: msg.err.Error()}
		}
		return m, nil

	case answerMsg:
		m.asking = false
		m.refresh()
		switch {
		case msg.err == nil, errors.Is(msg.err, conversation.ErrDiscarded):
		case errors.Is(msg.err, session.ErrNotReady):
			m.toast = &types.Notice{Level: types.NoticeWarning, Text: msgNotIndexed}
		case errors.Is(msg.err, conversation.ErrInFlight):
			m.toast = &types.Notice{Level: types.NoticeWarning, Text: msgWaitForAnswer}
		default:
			m.toast = &types.Notice{Level: types.NoticeError, Text: gateway.Describe(msg.err)}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Upload):
		if m.working {
			return m, nil
		}
		m.working = true
		m.toast = nil
		return m, tea.Batch(m.uploadCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.ClearAll):
		if m.working {
			return m, nil
		}
		m.working = true
		m.toast = nil
		return m, tea.Batch(m.clearCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Reselect):
		m.choosing = true
		m.toast = &types.Notice{Level: types.NoticeInfo, Text: "Enter the path of the next document."}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if err := m.sess.Ingest.RemoveFile(); err != nil {
			m.toast = &types.Notice{Level: types.NoticeWarning, Text: "Nothing to remove."}
		} else {
			m.toast = nil
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ClearChat):
		m.sess.Chat.Clear()
		m.toast = &types.Notice{Level: types.NoticeInfo, Text: conversation.MsgCleared}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send selects a file until the document is indexed, then asks questions.
func (m Model) send() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		return m, nil
	}

	if !m.ingest.IndexReady || m.choosing {
		m.input.Reset()
		m.selectPath(strings.TrimSpace(value))
		m.refresh()
		return m, nil
	}

	if !m.sess.CanAsk() {
		m.toast = &types.Notice{Level: types.NoticeWarning, Text: msgWaitForAnswer}
		return m, nil
	}
	m.input.Reset()
	m.asking = true
	m.toast = nil
	return m, tea.Batch(m.askCmd(value), m.spinner.Tick)
}

func (m *Model) selectPath(path string) {
	err := m.sess.Ingest.SelectPath(path)
	switch {
	case err == nil:
		m.choosing = false
		m.toast = nil
	case errors.Is(err, ingest.ErrUnsupportedFile):
		m.toast = m.sess.Ingest.Snapshot().Notice
	case errors.Is(err, ingest.ErrBusy):
		m.toast = &types.Notice{Level: types.NoticeWarning, Text: msgWaitForStep}
	default:
		m.toast = &types.Notice{Level: types.NoticeError, Text: err.Error()}
	}
}

func (m Model) uploadCmd() tea.Cmd {
	ctx, ctl := m.ctx, m.sess.Ingest
	return func() tea.Msg {
		return ingestDoneMsg{op: gateway.OpUpload, err: ctl.UploadAndIndex(ctx)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	ctx, ctl := m.ctx, m.sess.Ingest
	return func() tea.Msg {
		return ingestDoneMsg{op: gateway.OpClear, err: ctl.ClearAll(ctx)}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		_, err := sess.Ask(ctx, question)
		return answerMsg{err: err}
	}
}

func invalidStateText(op string) string {
	if op == gateway.OpClear {
		return "Nothing to clear."
	}
	return "Select a new document before uploading again."
}

// refresh pulls fresh snapshots and re-renders the transcript.
func (m *Model) refresh() {
	m.ingest = m.sess.Ingest.Snapshot()
	m.chat = m.sess.Chat.Snapshot()

	if m.ingest.IndexReady && !m.choosing {
		m.input.Placeholder = questionPlaceholder
	} else {
		m.input.Placeholder = pathPlaceholder
	}

	m.viewport.SetContent(m.transcriptView())
	m.viewport.GotoBottom()
}
