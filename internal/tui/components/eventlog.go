package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-variopro"
	"github.com/allbin/go-variopro/internal/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// EventMsg is one decoded key event delivered to the TUI
type EventMsg struct {
	Timestamp time.Time
	Event     variopro.KeyEvent
}

// EventLog renders a scrolling log of decoded key events
type EventLog struct {
	viewport  viewport.Model
	lines     []string
	showMasks bool
}

func NewEventLog(width, height int) *EventLog {
	return &EventLog{
		viewport: viewport.New(width, height),
	}
}

func (l *EventLog) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *EventLog) Width() int {
	return l.viewport.Width
}

// ToggleMasks switches the raw bitmask column on and off for subsequent
// events.
func (l *EventLog) ToggleMasks() {
	l.showMasks = !l.showMasks
}

func (l *EventLog) Add(msg EventMsg) {
	l.lines = append(l.lines, l.format(msg))
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

func (l *EventLog) Clear() {
	l.lines = nil
	l.viewport.SetContent("")
}

func (l *EventLog) format(msg EventMsg) string {
	ts := styles.EventTimeStyle.Render(msg.Timestamp.Format("15:04:05.000"))
	group := styles.EventGroupStyle.Render(fmt.Sprintf("%-20s", msg.Event.Group))

	names := msg.Event.Names()
	keys := styles.EventKeysStyle.Render(strings.Join(names, "+"))

	line := fmt.Sprintf("%s %s %s", ts, group, keys)
	if l.showMasks {
		line += " " + styles.EventMaskStyle.Render(fmt.Sprintf("[% X]", []byte(msg.Event.Mask)))
	}
	return line
}

func (l *EventLog) View() string {
	return l.viewport.View()
}

func (l *EventLog) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only window resizes reach the viewport so it never swallows the
	// monitor's own key bindings.
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return l.viewport.Update(msg)
	}
	return l.viewport, nil
}
