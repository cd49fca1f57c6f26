package keys

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys are the key bindings of the event monitor
type MonitorKeys struct {
	Quit       key.Binding
	Help       key.Binding
	Clear      key.Binding
	ToggleMask key.Binding
}

func NewMonitorKeys() MonitorKeys {
	return MonitorKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear events"),
		),
		ToggleMask: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle raw masks"),
		),
	}
}

func (k MonitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Clear, k.Quit}
}

func (k MonitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Clear, k.ToggleMask},
		{k.Help, k.Quit},
	}
}
