package dashboard

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Dismiss key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Dismiss: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "dismiss error"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
