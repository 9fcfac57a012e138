package player

import "strings"

// KeyEvent is a key press delivered to the player.
// Key uses bubbletea key names ("space" or " ", "left", "esc", "k", ...).
type KeyEvent struct {
	Key       string
	prevented bool
}

// NewKeyEvent returns an event for key
func NewKeyEvent(key string) *KeyEvent {
	return &KeyEvent{Key: key}
}

// PreventDefault stops the host from applying its own action (scrolling) for the key
func (k *KeyEvent) PreventDefault() {
	k.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called
func (k *KeyEvent) DefaultPrevented() bool {
	return k.prevented
}

type keyAction int

const (
	actionTogglePlay keyAction = iota
	actionSeekForward
	actionSeekBackward
	actionVolumeUp
	actionVolumeDown
	actionFullscreen
	actionMute
	actionClose
)

type keyBinding struct {
	action keyAction
	// host scrolls on this key unless prevented
	scrolls bool
}

var keyBindings = map[string]keyBinding{
	" ":      {actionTogglePlay, true},
	"space":  {actionTogglePlay, true},
	"k":      {actionTogglePlay, false},
	"l":      {actionSeekForward, false},
	"right":  {actionSeekForward, true},
	"j":      {actionSeekBackward, false},
	"left":   {actionSeekBackward, true},
	"up":     {actionVolumeUp, true},
	"down":   {actionVolumeDown, true},
	"f":      {actionFullscreen, false},
	"m":      {actionMute, false},
	"esc":    {actionClose, false},
	"escape": {actionClose, false},
}

func normalizeKey(key string) string {
	if key == " " {
		return key
	}
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "arrowright":
		return "right"
	case "arrowleft":
		return "left"
	case "arrowup":
		return "up"
	case "arrowdown":
		return "down"
	}
	return key
}

// HandleKey applies the player's keyboard bindings. It reports whether the key
// was bound; keys are ignored entirely while no session is open.
func (e *Engine) HandleKey(ev *KeyEvent) bool {
	if ev == nil {
		return false
	}

	e.mu.Lock()
	state := e.s.State
	e.mu.Unlock()
	if state == StateClosed {
		return false
	}

	binding, ok := keyBindings[normalizeKey(ev.Key)]
	if !ok {
		return false
	}
	if binding.scrolls {
		ev.PreventDefault()
	}

	switch binding.action {
	case actionTogglePlay:
		e.TogglePlayPause()
	case actionSeekForward:
		e.SeekRelative(e.config.SeekStep)
	case actionSeekBackward:
		e.SeekRelative(-e.config.SeekStep)
	case actionVolumeUp:
		e.AdjustVolume(e.config.VolumeStep)
	case actionVolumeDown:
		e.AdjustVolume(-e.config.VolumeStep)
	case actionFullscreen:
		e.ToggleFullscreen()
	case actionMute:
		e.ToggleMute()
	case actionClose:
		e.Close()
	}
	return true
}
