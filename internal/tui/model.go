// Package tui is the interactive menu board: a view mode for picking one
// item per group with a running total, and an edit mode for changing the
// catalog and syncing it.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/menuboard/internal/export"
	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/session"
	"github.com/marcus/menuboard/internal/tui/keymap"
)

// Mode is the active screen.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
	ModePrompt
	ModeHelp
)

type promptKind int

const (
	promptLabel promptKind = iota
	promptValue
	promptPassword
)

// MinWidth is the narrowest terminal the full layout supports.
const MinWidth = 40

// Options configures a Model.
type Options struct {
	Title     string
	ExportDir string
	// KeyOverrides maps "context:key" to a command name.
	KeyOverrides map[string]string
	Logger       *slog.Logger
}

// Model is the Bubble Tea model for the menu board.
type Model struct {
	sess   *session.Session
	keys   *keymap.Registry
	logger *slog.Logger

	title     string
	exportDir string

	Width  int
	Height int

	mode     Mode
	prevMode Mode
	cursor   int // view: group position; edit: row within the active group

	prompt      promptKind
	promptGroup models.Group
	promptRow   int
	input       textinput.Model

	spinner   spinner.Model
	busy      string // label of the in-flight operation, "" when idle
	status    string
	statusErr bool
}

// cloudSaveDoneMsg reports the end of an upload.
type cloudSaveDoneMsg struct{ err error }

// cloudLoadDoneMsg carries a downloaded catalog.
type cloudLoadDoneMsg struct {
	catalog models.Catalog
	err     error
}

// exportDoneMsg reports a written receipt.
type exportDoneMsg struct {
	path string
	err  error
}

// NewModel creates a model over sess.
func NewModel(sess *session.Session, opts Options) Model {
	keys := keymap.NewRegistry()
	keymap.RegisterDefaults(keys)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if unknown := keys.ApplyOverrides(opts.KeyOverrides); len(unknown) > 0 {
		logger.Warn("ignoring key overrides", "keys", unknown)
	}

	ti := textinput.New()
	ti.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	title := opts.Title
	if title == "" {
		title = "Menu"
	}
	return Model{
		sess:      sess,
		keys:      keys,
		logger:    logger,
		title:     title,
		exportDir: opts.ExportDir,
		input:     ti,
		spinner:   sp,
	}
}

// Mode returns the active screen.
func (m Model) Mode() Mode { return m.mode }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case cloudSaveDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError("Cloud save failed: " + describe(msg.err))
		} else {
			m.setStatus("Saved to cloud")
		}
		return m, nil

	case cloudLoadDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError("Cloud load failed: " + describe(msg.err))
			return m, nil
		}
		if err := m.sess.ApplyRemote(msg.catalog); err != nil {
			m.setError("Cloud load not applied: " + err.Error())
		} else {
			m.setStatus("Loaded from cloud")
		}
		m.clampCursor()
		return m, nil

	case exportDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError("Export failed: " + msg.err.Error())
		} else {
			m.setStatus("Exported " + msg.path)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) context() keymap.Context {
	switch m.mode {
	case ModeEdit:
		return keymap.ContextEdit
	case ModePrompt:
		return keymap.ContextPrompt
	case ModeHelp:
		return keymap.ContextHelp
	default:
		return keymap.ContextView
	}
}

// handleKey dispatches a key through the registry.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keys.Lookup(msg, m.context())
	if m.mode == ModePrompt {
		if ok && (cmd == keymap.CmdConfirm || cmd == keymap.CmdCancel || cmd == keymap.CmdQuit) {
			return m.executeCommand(cmd)
		}
		var tcmd tea.Cmd
		m.input, tcmd = m.input.Update(msg)
		return m, tcmd
	}
	if !ok {
		return m, nil
	}
	return m.executeCommand(cmd)
}

func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		if m.mode == ModeHelp {
			m.mode = m.prevMode
		} else if m.mode != ModePrompt {
			m.prevMode = m.mode
			m.mode = ModeHelp
		}
		return m, nil

	case keymap.CmdRowUp:
		m.cursor--
		m.clampCursor()
		return m, nil

	case keymap.CmdRowDown:
		m.cursor++
		m.clampCursor()
		return m, nil

	case keymap.CmdPrevItem, keymap.CmdNextItem:
		g, ok := m.cursorGroup()
		if !ok {
			return m, nil
		}
		delta := 1
		if cmd == keymap.CmdPrevItem {
			delta = -1
		}
		m.sess.Step(g, delta)
		return m, nil

	case keymap.CmdClearSelection:
		m.sess.ClearSelection()
		m.setStatus("Selections cleared")
		return m, nil

	case keymap.CmdResetCatalog:
		m.sess.ResetCatalog()
		m.clampCursor()
		m.setStatus("Menu reset to defaults")
		return m, nil

	case keymap.CmdEditMode:
		m.mode = ModeEdit
		m.cursor = 0
		if g, ok := m.viewGroup(); ok {
			m.sess.SetActiveGroup(g)
		}
		m.status = ""
		return m, nil

	case keymap.CmdBack:
		m.mode = ModeView
		m.cursor = 0
		m.status = ""
		return m, nil

	case keymap.CmdNextGroup, keymap.CmdPrevGroup:
		delta := 1
		if cmd == keymap.CmdPrevGroup {
			delta = -1
		}
		m.sess.CycleGroup(delta)
		m.cursor = 0
		return m, nil

	case keymap.CmdAddRow:
		g := m.sess.ActiveGroup()
		if err := m.sess.AddRow(g); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.cursor = len(m.sess.Items(g)) - 1
		return m.openPrompt(promptLabel)

	case keymap.CmdRemoveRow:
		if err := m.sess.RemoveRow(m.sess.ActiveGroup(), m.cursor); err != nil {
			m.setError(err.Error())
		}
		m.clampCursor()
		return m, nil

	case keymap.CmdAddGroup:
		g, err := m.sess.AddGroup()
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.cursor = 0
		m.setStatus("Added group " + strconv.Itoa(int(g)))
		return m, nil

	case keymap.CmdRemoveGroup:
		g := m.sess.ActiveGroup()
		if err := m.sess.RemoveGroup(g); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.cursor = 0
		m.setStatus("Removed group " + strconv.Itoa(int(g)))
		return m, nil

	case keymap.CmdEditLabel:
		return m.openPrompt(promptLabel)

	case keymap.CmdEditValue:
		return m.openPrompt(promptValue)

	case keymap.CmdSaveLocal:
		if err := m.sess.SaveLocal(); err != nil {
			m.setError("Save failed: " + err.Error())
		} else {
			m.setStatus("Saved")
		}
		return m, nil

	case keymap.CmdCloudSave:
		return m.startCloudSave()

	case keymap.CmdCloudLoad:
		return m.startCloudLoad()

	case keymap.CmdExport:
		if m.busy != "" {
			return m, nil
		}
		return m.openPrompt(promptPassword)

	case keymap.CmdConfirm:
		return m.confirmPrompt()

	case keymap.CmdCancel:
		m.input.Blur()
		m.mode = m.prevMode
		return m, nil
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
	m.logger.Debug("tui error", "msg", s)
}

// viewGroup is the group under the cursor in view mode.
func (m Model) viewGroup() (models.Group, bool) {
	groups := m.sess.Groups()
	if m.cursor < 0 || m.cursor >= len(groups) {
		return 0, false
	}
	return groups[m.cursor], true
}

// cursorGroup is the group whose selection h/l change.
func (m Model) cursorGroup() (models.Group, bool) {
	if m.mode == ModeEdit {
		return m.sess.ActiveGroup(), true
	}
	return m.viewGroup()
}

func (m *Model) clampCursor() {
	n := len(m.sess.Groups())
	if m.mode == ModeEdit {
		n = len(m.sess.Items(m.sess.ActiveGroup()))
	}
	m.cursor = max(0, min(m.cursor, n-1))
}

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.promptGroup = m.sess.ActiveGroup()
	m.promptRow = m.cursor
	m.input.Reset()
	m.input.EchoMode = textinput.EchoNormal

	items := m.sess.Items(m.promptGroup)
	switch kind {
	case promptLabel:
		if m.promptRow >= len(items) {
			return m, nil
		}
		m.input.Prompt = "Label: "
		m.input.SetValue(items[m.promptRow].Label)
	case promptValue:
		if m.promptRow >= len(items) {
			return m, nil
		}
		m.input.Prompt = "Value: "
		m.input.SetValue(input.FormatValue(items[m.promptRow].Value))
	case promptPassword:
		m.input.Prompt = "Password: "
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	}
	m.prevMode = m.mode
	m.mode = ModePrompt
	m.status = ""
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) confirmPrompt() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	switch m.prompt {
	case promptLabel:
		if err := m.sess.UpdateRow(m.promptGroup, m.promptRow, menu.Patch{Label: &text}); err != nil {
			m.setError(err.Error())
		}
	case promptValue:
		v := input.CommitValue(text)
		if err := m.sess.UpdateRow(m.promptGroup, m.promptRow, menu.Patch{Value: &v}); err != nil {
			m.setError(err.Error())
		}
	case promptPassword:
		if err := export.ValidatePassword(text); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.input.Blur()
		m.mode = m.prevMode
		return m.startExport(text)
	}
	m.input.Blur()
	m.mode = m.prevMode
	return m, nil
}

// PromptDraftValid reports whether the value prompt holds a finished number.
// A pending draft like "-" or "3." is neither valid nor an error yet.
func (m Model) PromptDraftValid() bool {
	_, ok := input.ParseValue(m.input.Value())
	return ok && !input.IsPending(m.input.Value())
}

func (m Model) startCloudSave() (tea.Model, tea.Cmd) {
	if m.busy != "" || m.sess.Busy() {
		return m, nil
	}
	run, err := m.sess.StartCloudSave()
	if err != nil {
		m.setError(describe(err))
		return m, nil
	}
	m.busy = "Saving to cloud"
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return cloudSaveDoneMsg{err: run(context.Background())}
	})
}

func (m Model) startCloudLoad() (tea.Model, tea.Cmd) {
	if m.busy != "" || m.sess.Busy() {
		return m, nil
	}
	run, err := m.sess.StartCloudLoad()
	if err != nil {
		m.setError(describe(err))
		return m, nil
	}
	m.busy = "Loading from cloud"
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		catalog, err := run(context.Background())
		return cloudLoadDoneMsg{catalog: catalog, err: err}
	})
}

func (m Model) startExport(password string) (tea.Model, tea.Cmd) {
	doc := export.Build(m.title, m.sess.DisplayVersion(), m.sess.Catalog(), m.sess.Selection(), time.Now())
	dir := m.exportDir
	m.busy = "Exporting"
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		path, err := export.Write(dir, doc, password)
		return exportDoneMsg{path: path, err: err}
	})
}

// describe shortens well-known errors for the status line.
func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrNoRemote):
		return "cloud backup is not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}
