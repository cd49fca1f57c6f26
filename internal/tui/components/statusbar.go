package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-variopro"
	"github.com/allbin/go-variopro/internal/tui/colors"
	"github.com/allbin/go-variopro/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// ModulesMsg is the current module snapshot delivered to the TUI
type ModulesMsg struct {
	Modules []variopro.ModuleInfo
}

// StatusBar renders the single-line monitor footer: title, port, connection
// state and the currently attached modules.
type StatusBar struct {
	title    string
	portPath string
	status   string
	state    styles.StatusType
	modules  []variopro.ModuleInfo
	width    int
}

func NewStatusBar(title, portPath string) *StatusBar {
	return &StatusBar{
		title:    title,
		portPath: portPath,
		status:   "Initializing...",
		state:    styles.StatusConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Waiting for display..."
	sb.state = styles.StatusConnecting
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected"
	sb.state = styles.StatusConnected
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
	} else {
		sb.status = "Disconnected"
	}
	sb.state = styles.StatusDisconnected
}

func (sb *StatusBar) SetModules(modules []variopro.ModuleInfo) {
	sb.modules = modules
}

func (sb *StatusBar) moduleSummary() string {
	if len(sb.modules) == 0 {
		return "no modules"
	}
	parts := make([]string, 0, len(sb.modules))
	for _, m := range sb.modules {
		if m.Cells > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d)", m.Kind, m.Cells))
		} else {
			parts = append(parts, m.Kind.String())
		}
	}
	return strings.Join(parts, " · ")
}

func (sb *StatusBar) View() string {
	title := styles.TitleStyle.Render(sb.title)
	port := lipgloss.NewStyle().Foreground(colors.Peach).Render(sb.portPath)
	status := styles.GetStatusStyle(sb.state).Render(sb.status)
	modules := styles.ModuleStyle.Render(sb.moduleSummary())

	left := fmt.Sprintf("%s %s %s", title, port, status)
	gap := sb.width - lipgloss.Width(left) - lipgloss.Width(modules) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + modules
}
