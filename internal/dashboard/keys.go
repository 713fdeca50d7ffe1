package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard bindings. It implements help.KeyMap.
type keyMap struct {
	Start      key.Binding
	Stop       key.Binding
	ExportCSV  key.Binding
	SaveGraph  key.Binding
	Toggle     key.Binding
	Select     key.Binding
	Edit       key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
	NextField  key.Binding
	Apply      key.Binding
	Cancel     key.Binding
	selectPrev key.Binding
	selectNext key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		ExportCSV:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "export CSV")),
		SaveGraph:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "save graph")),
		Toggle:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "show/hide channel")),
		Select:     key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "select channel")),
		Edit:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit thresholds")),
		Save:       key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write thresholds to config")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextField:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "min/max")),
		Apply:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		selectPrev: key.NewBinding(key.WithKeys("left", "h")),
		selectNext: key.NewBinding(key.WithKeys("right", "l")),
	}
}

// ShortHelp is the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.ExportCSV, k.SaveGraph, k.Toggle, k.Edit, k.Help, k.Quit}
}

// FullHelp is the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.ExportCSV, k.SaveGraph},
		{k.Toggle, k.Select, k.Edit, k.Save},
		{k.Help, k.Quit},
	}
}

// editKeys is the footer while editing thresholds.
type editKeys struct{ keyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Apply, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
