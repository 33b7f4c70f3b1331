// Package tui provides the BubbleTea-based terminal host for toasts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastkit/internal/toast"
)

// Host is the toast manager the UI drives. *app.App implements it.
type Host interface {
	Click(ctx context.Context, h toast.Handle) (bool, error)
	Resize(ctx context.Context) error
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) ([]toast.Info, error)
}

// Model is the main TUI model.
type Model struct {
	ctx       context.Context
	host      Host
	container *Container

	// Components
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	// State
	started time.Time
	width   int
	height  int

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model rendering container.
func New(ctx context.Context, host Host, container *Container) Model {
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	s.Style = lipgloss.NewStyle().Foreground(kindColors["loading"])

	return Model{
		ctx:       ctx,
		host:      host,
		container: container,
		spinner:   s,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		started:   time.Now(),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.watchForChanges,
	)
}

type refreshMsg struct{}

// watchForChanges waits for the container to report a change.
func (m Model) watchForChanges() tea.Msg {
	select {
	case <-m.container.Changes():
		return refreshMsg{}
	case <-m.ctx.Done():
		return nil
	}
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

func errorStatus(prefix string, err error) tea.Msg {
	return statusMsg{text: prefix + ": " + err.Error(), isErr: true}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if k, ok := m.container.hit(msg.X, msg.Y); ok {
			return m, m.click(toast.Handle(k))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.container.SetSize(msg.Width, m.canvasHeight())
		return m, m.resize

	case refreshMsg:
		return m, m.watchForChanges

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.container.SetSize(m.width, m.canvasHeight())
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		return m, m.dismissNewest
	case key.Matches(msg, m.keys.DismissAll):
		return m, m.clear
	}
	return m, nil
}

func (m Model) click(h toast.Handle) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.host.Click(m.ctx, h); err != nil {
			return errorStatus("Dismiss failed", err)
		}
		return nil
	}
}

func (m Model) resize() tea.Msg {
	if err := m.host.Resize(m.ctx); err != nil {
		return errorStatus("Resize failed", err)
	}
	return nil
}

// dismissNewest clicks the most recent toast that accepts clicks.
func (m Model) dismissNewest() tea.Msg {
	infos, err := m.host.Snapshot(m.ctx)
	if err != nil {
		return errorStatus("Dismiss failed", err)
	}
	for i := len(infos) - 1; i >= 0; i-- {
		if !infos[i].Dismissible {
			continue
		}
		if _, err := m.host.Click(m.ctx, infos[i].Handle); err != nil {
			return errorStatus("Dismiss failed", err)
		}
		return nil
	}
	return statusMsg{text: "Nothing to dismiss"}
}

func (m Model) clear() tea.Msg {
	if err := m.host.Clear(m.ctx); err != nil {
		return errorStatus("Clear failed", err)
	}
	return statusMsg{text: "Cleared all toasts"}
}

// canvasHeight is the number of rows left for toasts above the footer.
func (m Model) canvasHeight() int {
	return max(m.height-lipgloss.Height(m.footer()), 0)
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	canvas := compose(m.container.snapshot(), m.width, m.canvasHeight(), m.spinner.View())
	return canvas + "\n" + m.footer()
}

func (m Model) footer() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	count := len(m.container.snapshot())
	noun := "toasts"
	if count == 1 {
		noun = "toast"
	}
	status := fmt.Sprintf("%d %s · started %s", count, noun, humanize.Time(m.started))
	if m.statusMsg != "" {
		msgStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		if m.statusErr {
			msgStyle = msgStyle.Foreground(lipgloss.Color("9"))
		}
		status += "  " + msgStyle.Render(m.statusMsg)
	}

	lines := []string{style.Render(status), m.help.View(m.keys)}
	return strings.Join(lines, "\n")
}

// Run starts the TUI and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, host Host, container *Container) error {
	m := New(ctx, host, container)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
