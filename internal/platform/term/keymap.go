// Package term hosts a sim on a raw terminal stream. Host implements the
// game loop callbacks: it takes key presses decoded by PumpInput, steps
// the sim on each tick and writes styled frames to an io.Writer.
package term

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/x/input"

	"github.com/vovakirdan/tickloop/internal/core"
)

// Key is the name of a decoded key press as printed by the charm input
// parser ("up", "enter", "ctrl+c", "alt+d", "q", "space").
type Key string

// String returns the key name.
func (k Key) String() string {
	return string(k)
}

// KeyMap binds key names to sim actions.
// This centralizes key bindings and makes them testable.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Jump    key.Binding
	Confirm key.Binding
	Restart key.Binding
	Pause   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		Jump: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", "kick"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Action translates a key to a sim action. Returns ActionNone for unbound keys.
func (km KeyMap) Action(k Key) core.Action {
	switch {
	case key.Matches(k, km.Quit):
		return core.ActionQuit
	case key.Matches(k, km.Pause):
		return core.ActionPause
	case key.Matches(k, km.Restart):
		return core.ActionRestart
	case key.Matches(k, km.Up):
		return core.ActionUp
	case key.Matches(k, km.Down):
		return core.ActionDown
	case key.Matches(k, km.Left):
		return core.ActionLeft
	case key.Matches(k, km.Right):
		return core.ActionRight
	case key.Matches(k, km.Jump):
		return core.ActionJump
	case key.Matches(k, km.Confirm):
		return core.ActionConfirm
	}
	return core.ActionNone
}

// ShortHelp returns the bindings shown in the status line.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Jump, km.Pause, km.Restart, km.Quit}
}

// FullHelp returns all bindings grouped by purpose.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.Left, km.Right, km.Jump},
		{km.Confirm, km.Restart, km.Pause, km.Quit},
	}
}

// keysFromEvents keeps the key presses of a batch of input events.
func keysFromEvents(events []input.Event) []Key {
	var keys []Key
	for _, ev := range events {
		if k, ok := ev.(input.KeyPressEvent); ok {
			keys = append(keys, keyName(k.Key()))
		}
	}
	return keys
}

// keyName names k the way the bindings expect. Shifted letters fold to
// lower case so caps lock does not disable the controls.
func keyName(k input.Key) Key {
	if k.Mod == input.ModShift && k.Text != "" {
		return Key(string(k.Code))
	}
	return Key(k.String())
}
