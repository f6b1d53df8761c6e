package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shellmark/internal/core/validate"
	"github.com/hay-kot/shellmark/internal/runner"
	"github.com/hay-kot/shellmark/internal/styles"
)

// DefaultCommand is prefilled in the command field.
const DefaultCommand = "echo a"

// Layout constants.
const (
	headerRows  = 6 // banner plus spacing
	controlRows = 5 // inputs, toggles, status
	footerRows  = 1
	paneChrome  = 2 // border rows
)

// Controller is the part of runner.Controller the panel drives.
type Controller interface {
	ExecuteCommand(ctx context.Context, command string, opts runner.Options) error
	ResetStatistics()
	State() runner.State
}

// Options configures the panel.
type Options struct {
	Command       string
	PromptCommand string
	Defaults      runner.Options
}

// eventMsg wraps a sink event.
type eventMsg Event

// executeDoneMsg is sent when ExecuteCommand returns.
type executeDoneMsg struct {
	err error
}

// Model is the Bubble Tea model for the command panel.
type Model struct {
	ctrl   Controller
	events <-chan Event
	keys   KeyMap
	help   help.Model

	command textinput.Model
	prompt  textinput.Model
	focused int // 0 command, 1 prompt command
	opts    runner.Options

	output     viewport.Model
	outputText string
	debug      viewport.Model
	activeView ViewType
	spinner    spinner.Model

	dispatching bool
	err         error
	width       int
	height      int
}

// New creates the panel model. events is usually Bridge.Events.
func New(ctrl Controller, events <-chan Event, opts Options) Model {
	cmd := textinput.New()
	cmd.Prompt = "$ "
	cmd.Placeholder = DefaultCommand
	cmd.SetValue(opts.Command)
	if opts.Command == "" {
		cmd.SetValue(DefaultCommand)
	}
	cmd.Focus()

	prompt := textinput.New()
	prompt.Prompt = "PROMPT_COMMAND="
	prompt.Placeholder = runner.DefaultPromptCommand
	prompt.SetValue(opts.PromptCommand)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctrl:    ctrl,
		events:  events,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		command: cmd,
		prompt:  prompt,
		opts:    opts.Defaults,
		output:  viewport.New(80, 5),
		debug:   viewport.New(80, 10),
		spinner: s,
	}
}

// Init starts listening for sink events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent(), m.spinner.Tick)
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case eventMsg:
		m.applyEvent(Event(msg))
		return m, m.waitForEvent()

	case executeDoneMsg:
		m.dispatching = false
		if msg.err != nil && !errors.Is(msg.err, runner.ErrBusy) {
			m.err = msg.err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Run):
		return m.run()
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.ResetStatistics()
		m.debug.SetContent("")
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.focusNext()
		return m, nil
	case key.Matches(msg, m.keys.ToggleIntegration):
		m.opts.UseShellIntegration = !m.opts.UseShellIntegration
		return m, nil
	case key.Matches(msg, m.keys.ToggleAutoClose):
		m.opts.AutoCloseTerminal = !m.opts.AutoCloseTerminal
		return m, nil
	case key.Matches(msg, m.keys.ToggleVTE):
		m.opts.EnableVTEChecks = !m.opts.EnableVTEChecks
		return m, nil
	case key.Matches(msg, m.keys.FocusPane):
		if m.activeView == ViewOutput {
			m.activeView = ViewDebug
		} else {
			m.activeView = ViewOutput
		}
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		if m.activeView == ViewOutput {
			m.output, cmd = m.output.Update(msg)
		} else {
			m.debug, cmd = m.debug.Update(msg)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.command, cmd = m.command.Update(msg)
	} else {
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m Model) run() (tea.Model, tea.Cmd) {
	command := strings.TrimSpace(m.command.Value())
	if command == "" {
		return m, nil
	}
	if err := validate.Command(command); err != nil {
		m.err = err
		return m, nil
	}
	if err := validate.PromptCommand(m.prompt.Value()); err != nil {
		m.err = fmt.Errorf("prompt command: %w", err)
		return m, nil
	}

	m.err = nil
	m.dispatching = true
	m.setOutput("")

	opts := m.opts
	opts.PromptCommand = m.prompt.Value()
	ctrl := m.ctrl

	return m, func() tea.Msg {
		return executeDoneMsg{err: ctrl.ExecuteCommand(context.Background(), command, opts)}
	}
}

func (m *Model) applyEvent(e Event) {
	switch e.Kind {
	case EventOutput:
		content := e.Text
		if m.outputText != "" {
			content = m.outputText + "\n\n" + e.Text
		}
		m.setOutput(content)
	case EventDebug:
		m.debug.SetContent(e.Text)
	}
}

// setOutput keeps the raw text alongside the viewport so later messages can
// be appended.
func (m *Model) setOutput(s string) {
	m.outputText = s
	m.output.SetContent(s)
	m.output.GotoBottom()
}

func (m *Model) focusNext() {
	if m.focused == 0 {
		m.focused = 1
		m.command.Blur()
		m.prompt.Focus()
		return
	}
	m.focused = 0
	m.prompt.Blur()
	m.command.Focus()
}

func (m *Model) layout() {
	paneWidth := max(m.width-2, 20)
	available := max(m.height-headerRows-controlRows-footerRows-2*paneChrome, 4)

	m.output.Width = paneWidth
	m.output.Height = available / 3
	m.debug.Width = paneWidth
	m.debug.Height = available - m.output.Height

	m.command.Width = paneWidth - len(m.command.Prompt)
	m.prompt.Width = paneWidth - len(m.prompt.Prompt)
}

// View renders the panel.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.BannerStyle.Render(styles.Banner))
	b.WriteString("\n\n")

	b.WriteString(m.command.View())
	b.WriteString("\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n")
	b.WriteString(m.toggles())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")

	outStyle, dbgStyle := activePaneStyle, paneStyle
	if m.activeView == ViewDebug {
		outStyle, dbgStyle = paneStyle, activePaneStyle
	}
	b.WriteString(titleStyle.Render("Output"))
	b.WriteString("\n")
	b.WriteString(outStyle.Render(m.output.View()))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Pattern Matching"))
	b.WriteString("\n")
	b.WriteString(dbgStyle.Render(m.debug.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return b.String()
}

func (m Model) toggles() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		toggle("shell integration", m.opts.UseShellIntegration), "  ",
		toggle("auto close", m.opts.AutoCloseTerminal), "  ",
		toggle("vte checks", m.opts.EnableVTEChecks),
	)
}

func toggle(label string, on bool) string {
	if on {
		return toggleOnStyle.Render(iconOn + " " + label)
	}
	return toggleOffStyle.Render(iconOff + " " + label)
}

func (m Model) status() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}

	state := m.ctrl.State()
	switch {
	case m.dispatching && state == runner.StateAwaitingIntegration:
		return warnStyle.Render(m.spinner.View() + " waiting for shell integration")
	case state != runner.StateIdle:
		return labelStyle.Render(m.spinner.View() + " " + state.String())
	default:
		return labelStyle.Render("idle")
	}
}
