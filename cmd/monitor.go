/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	variopro "github.com/allbin/go-variopro"
	"github.com/allbin/go-variopro/internal/tui/components"
	"github.com/allbin/go-variopro/internal/tui/keys"
	"github.com/allbin/go-variopro/internal/tui/models"
	"github.com/allbin/go-variopro/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor [port]",
	Short: "Watch decoded key events in real time",
	Long: `Watch a VarioPro display's decoded input events in a live TUI.

Connects to the display, runs the detection handshake and then shows every
decoded key event as it happens: routing keys, display keys, wheel detents,
TASO keypad/slider input, status and telephone unit keys. The status bar
tracks which modules are currently attached as units are plugged and
unplugged.

Example usage:
  variopro monitor /dev/ttyUSB0
  variopro monitor                  # auto-detect the port by USB ID
  variopro monitor --timeout 30s`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath, err := resolvePort(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if err := runMonitorTUI(portPath, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationP("timeout", "t", 10*time.Second, "Handshake timeout waiting for the main display")
}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	*models.MonitorModel
	eventLog  *components.EventLog
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.MonitorKeys
}

type modulePollMsg struct{}

func pollModules() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return modulePollMsg{}
	})
}

func runMonitorTUI(portPath string, timeout time.Duration) error {
	m := monitorModel{
		MonitorModel: models.NewMonitorModel(portPath),
		eventLog:     components.NewEventLog(80, 20),
		statusBar:    components.NewStatusBar("VarioPro Monitor", portPath),
		help:         help.New(),
		keys:         keys.NewMonitorKeys(),
	}
	m.statusBar.SetConnecting()

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Connect in the background; the handshake blocks until the main
	// display answers or the timeout expires.
	go func() {
		drv, err := variopro.Open(portPath,
			variopro.WithBaudRate(viper.GetInt("baud")),
			variopro.WithHandshakeTimeout(timeout),
			variopro.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			variopro.WithEventHandler(func(ev variopro.KeyEvent) {
				p.Send(components.EventMsg{Timestamp: time.Now(), Event: ev})
			}),
		)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		m.SetDriver(drv)
		p.Send(models.ConnectionStatusMsg{Connected: true})

		<-m.Context().Done()
		drv.Close()
	}()

	_, err := p.Run()
	m.Cleanup()
	return err
}

func (m *monitorModel) Init() tea.Cmd {
	return pollModules()
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		m.eventLog.SetSize(msg.Width, msg.Height-statusBarHeight-1)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
		}

	case components.EventMsg:
		m.eventLog.Add(msg)

	case components.ModulesMsg:
		m.statusBar.SetModules(msg.Modules)

	case modulePollMsg:
		if drv := m.Driver(); drv != nil {
			cmds = append(cmds, func() tea.Msg {
				return components.ModulesMsg{Modules: drv.Modules()}
			})
		}
		cmds = append(cmds, pollModules())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.eventLog.Clear()

		case key.Matches(msg, m.keys.ToggleMask):
			m.eventLog.ToggleMasks()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd := m.eventLog.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) View() string {
	var content string
	if m.IsReady() {
		content = m.eventLog.View()
	} else {
		content = "Initializing..."
	}

	m.statusBar.SetWidth(m.eventLog.Width())
	statusBar := m.statusBar.View()
	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpStyle.Render(m.help.View(m.keys)),
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}
