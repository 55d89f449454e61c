// ABOUTME: Receiver TUI showing live bridge sessions
// ABOUTME: Live session table for a packet receiver, built on bubbletea
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/pkg/sink"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReceiverStatus holds receiver state for the TUI
type ReceiverStatus struct {
	Name     string
	Addr     string
	Sessions []sink.SessionStats
}

// ReceiverTUI manages the receiver TUI
type ReceiverTUI struct {
	program  *tea.Program
	updates  chan ReceiverStatus
	done     chan struct{}
	stopOnce sync.Once
	quitChan chan struct{}
}

type tickMsg time.Time
type statusMsg ReceiverStatus

// Model is the bubbletea model for the receiver TUI
type Model struct {
	status    ReceiverStatus
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

// NewModel creates a model for a receiver listening on addr
func NewModel(name, addr string, quitChan chan struct{}) Model {
	return Model{
		status:    ReceiverStatus{Name: name, Addr: addr},
		startTime: time.Now(),
		quitChan:  quitChan,
	}
}

func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case statusMsg:
		m.status = ReceiverStatus(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down receiver...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	sessionHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("PCM Bridge Receiver"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Receiver: "))
	b.WriteString(valueStyle.Render(m.status.Name))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Listening: "))
	b.WriteString(valueStyle.Render(m.status.Addr))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Uptime: "))
	b.WriteString(valueStyle.Render(time.Since(m.startTime).Round(time.Second).String()))
	b.WriteString("\n\n")

	active := 0
	for _, s := range m.status.Sessions {
		if s.Active {
			active++
		}
	}
	b.WriteString(sessionHeaderStyle.Render(fmt.Sprintf("Sessions (%d active, %d total)", active, len(m.status.Sessions))))
	b.WriteString("\n\n")

	if len(m.status.Sessions) == 0 {
		b.WriteString(valueStyle.Render("  No bridges connected"))
		b.WriteString("\n")
	}
	for _, s := range m.status.Sessions {
		state := "closed"
		if s.Active {
			state = "streaming"
		}
		b.WriteString(fmt.Sprintf("  - %s", shortID(s.ID)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" (%s, %s) %d packets, %s", s.Codec, state, s.Packets, formatBytes(s.Bytes))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

// shortID keeps the first uuid group
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// NewReceiverTUI creates a receiver TUI
func NewReceiverTUI() *ReceiverTUI {
	return &ReceiverTUI{
		updates:  make(chan ReceiverStatus, 10),
		done:     make(chan struct{}),
		quitChan: make(chan struct{}, 1),
	}
}

// Start runs the TUI until it quits or Stop is called
func (t *ReceiverTUI) Start(name, addr string) error {
	t.program = tea.NewProgram(NewModel(name, addr, t.quitChan), tea.WithAltScreen())

	go func() {
		for {
			select {
			case status := <-t.updates:
				t.program.Send(statusMsg(status))
			case <-t.done:
				return
			}
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI
func (t *ReceiverTUI) Update(status ReceiverStatus) {
	select {
	case t.updates <- status:
	default:
		// Don't block if channel is full
	}
}

// Stop stops the TUI
func (t *ReceiverTUI) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		if t.program != nil {
			t.program.Quit()
		}
	})
}

// QuitChan returns the channel that signals when the user wants to quit
func (t *ReceiverTUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
