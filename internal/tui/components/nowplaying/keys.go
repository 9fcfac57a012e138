package nowplaying

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the player bindings. Transport keys are forwarded to the
// engine; the rest are handled by the view.
type keyMap struct {
	PlayPause  key.Binding
	Forward    key.Binding
	Rewind     key.Binding
	Volume     key.Binding
	Mute       key.Binding
	Fullscreen key.Binding
	Jump       key.Binding
	Speed      key.Binding
	Settings   key.Binding
	Subtitles  key.Binding
	Download   key.Binding
	Help       key.Binding
	Quit       key.Binding

	PickerUp    key.Binding
	PickerDown  key.Binding
	PickerApply key.Binding
	PickerClose key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause:  key.NewBinding(key.WithKeys(" ", "space", "k"), key.WithHelp("space/k", "play/pause")),
		Forward:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "+10s")),
		Rewind:     key.NewBinding(key.WithKeys("j", "left"), key.WithHelp("j/←", "-10s")),
		Volume:     key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "volume")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Fullscreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Jump:       key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "jump")),
		Speed:      key.NewBinding(key.WithKeys("<", ">"), key.WithHelp("</>", "speed")),
		Settings:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Subtitles:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "subtitles")),
		Download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("esc/q", "close")),

		PickerUp:    key.NewBinding(key.WithKeys("up", "k")),
		PickerDown:  key.NewBinding(key.WithKeys("down", "j")),
		PickerApply: key.NewBinding(key.WithKeys("enter", " ", "space")),
		PickerClose: key.NewBinding(key.WithKeys("esc", "s", "c", "q")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Forward, k.Rewind, k.Settings, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Forward, k.Rewind, k.Jump},
		{k.Volume, k.Mute, k.Fullscreen, k.Speed},
		{k.Settings, k.Subtitles, k.Download, k.Quit},
	}
}
