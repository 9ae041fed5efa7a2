package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextPeriod key.Binding
	PrevPeriod key.Binding
	Month1     key.Binding
	Months3    key.Binding
	Months6    key.Binding
	Toggle     key.Binding
	Company    key.Binding
	Industry   key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPeriod: key.NewBinding(key.WithKeys("p", "right"), key.WithHelp("p/→", "next period")),
		PrevPeriod: key.NewBinding(key.WithKeys("P", "left"), key.WithHelp("P/←", "prev period")),
		Month1:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "1 month")),
		Months3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "3 months")),
		Months6:    key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "6 months")),
		Toggle:     key.NewBinding(key.WithKeys("g", "tab"), key.WithHelp("g", "toggle grouping")),
		Company:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "by company")),
		Industry:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "by industry")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPeriod, k.Toggle, k.Reload, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPeriod, k.PrevPeriod, k.Month1, k.Months3, k.Months6},
		{k.Toggle, k.Company, k.Industry},
		{k.Reload, k.Help, k.Quit},
	}
}
