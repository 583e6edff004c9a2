// SPDX-License-Identifier: EPL-2.0

package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play      key.Binding
	Stop      key.Binding
	Back      key.Binding
	Forward   key.Binding
	Up        key.Binding
	Down      key.Binding
	GainUp    key.Binding
	GainDown  key.Binding
	Mute      key.Binding
	Solo      key.Binding
	ClearSolo key.Binding
	MasterUp  key.Binding
	MasterDn  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys(" ", "space", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-5s"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+5s"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "prev track"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next track"),
		),
		GainUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "gain up"),
		),
		GainDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "gain down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Solo: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "solo"),
		),
		ClearSolo: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear solo"),
		),
		MasterUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "master up"),
		),
		MasterDn: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "master down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Mute, k.Solo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Back, k.Forward},
		{k.Up, k.Down, k.GainUp, k.GainDown},
		{k.Mute, k.Solo, k.ClearSolo},
		{k.MasterUp, k.MasterDn, k.Help, k.Quit},
	}
}
