package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/prodwatch/internal/logtail"
	"github.com/five82/prodwatch/internal/monitor"
	"github.com/five82/prodwatch/internal/prefs"
)

// Options configures the UI. Controller is required.
type Options struct {
	Context    context.Context
	Controller *monitor.Controller
	Logger     *slog.Logger

	BackendAddr    string
	BackendLogPath string
	// WaitReady, when set, runs once at startup and drives the backend
	// indicator in the header.
	WaitReady func(ctx context.Context) error
	// Background, when set, runs in its own goroutine for the life of the
	// program. send delivers messages such as BackendStatusMsg to the model.
	Background func(ctx context.Context, send func(tea.Msg))

	ThemeName  string
	PrefsPath  string
	InitialURL string
}

// backendState is what the header reports about the backend.
type backendState int

const (
	backendUnchecked backendState = iota
	backendChecking
	backendReady
	backendUnreachable
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctrl      *monitor.Controller
	log       *slog.Logger
	prefsPath string
	waitReady func(ctx context.Context) error

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Widgets
	input   textinput.Model
	spinner spinner.Model
	bar     progress.Model
	help    help.Model

	// Backend state
	backendAddr  string
	backend      backendState
	backendError string

	// Backend log view
	showLogs bool
	logPath  string
	logGen   int
	logLines []string
	logErr   error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "https://www.amazon.com.br/.../dp/..."
	input.Prompt = "🔗 "
	input.CharLimit = 2048
	input.SetValue(strings.TrimSpace(opts.InitialURL))
	input.Focus()

	m := Model{
		ctx:         ctx,
		ctrl:        opts.Controller,
		log:         logger.With("component", "ui"),
		prefsPath:   prefsPath,
		waitReady:   opts.WaitReady,
		theme:       GetTheme(opts.ThemeName),
		keys:        DefaultKeyMap(),
		input:       input,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		backendAddr: opts.BackendAddr,
		logPath:     opts.BackendLogPath,
	}
	if m.waitReady != nil {
		m.backend = backendChecking
	}
	m.applyTheme()
	return m
}

// applyTheme restyles the widgets after a theme change.
func (m *Model) applyTheme() {
	t := m.theme
	m.input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	m.input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	m.input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))

	width := m.bar.Width
	m.bar = progress.New(
		progress.WithSolidFill(t.TierColor(monitor.TierLow)),
		progress.WithoutPercentage(),
	)
	m.bar.EmptyColor = t.BarEmpty
	if width > 0 {
		m.bar.Width = width
	}

	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	m.help.Styles.FullSeparator = m.help.Styles.ShortSeparator
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.waitReady != nil {
		cmds = append(cmds, readinessCmd(m.ctx, m.waitReady))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BackendStatusMsg:
		if msg.Err != nil {
			m.backend = backendUnreachable
			m.backendError = msg.Err.Error()
			m.log.Warn("backend not reachable", "addr", m.backendAddr, "error", msg.Err)
		} else {
			m.backend = backendReady
			m.backendError = ""
		}
		return m, nil

	case logTickMsg:
		if !m.showLogs || msg.gen != m.logGen {
			return m, nil
		}
		return m, tea.Batch(readLogCmd(m.logPath), logTickCmd(m.logGen))

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		return m, nil
	}

	if cmd := m.ctrl.Update(msg); cmd != nil {
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.notice = ""
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
			m.notice = "Theme not saved: " + err.Error()
			m.log.Warn("save prefs failed", "path", m.prefsPath, "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		m.logGen++
		m.resize()
		if m.showLogs {
			return m, tea.Batch(readLogCmd(m.logPath), logTickCmd(m.logGen))
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m, m.ctrl.Submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// contentWidth is the width of the input and panel, borders included.
func (m Model) contentWidth() int {
	w := m.width - 4
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	if w < MinContentWidth {
		w = MinContentWidth
	}
	return w
}

func (m *Model) resize() {
	inner := m.contentWidth() - 4
	m.input.Width = inner - lipgloss.Width(m.input.Prompt) - 1
	m.bar.Width = inner - 2
	m.help.Width = m.width
}

// Messages

// BackendStatusMsg reports whether the backend answered. A nil Err means it
// is reachable.
type BackendStatusMsg struct{ Err error }

type logTickMsg struct{ gen int }

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func readinessCmd(ctx context.Context, wait func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return BackendStatusMsg{Err: wait(ctx)}
	}
}

func logTickCmd(gen int) tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(time.Time) tea.Msg {
		return logTickMsg{gen: gen}
	})
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Controller == nil {
		return errors.New("ui: no controller")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	if opts.Background != nil {
		ctx, cancel := context.WithCancel(m.ctx)
		defer cancel()
		go opts.Background(ctx, p.Send)
	}

	_, err := p.Run()
	return err
}
