package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/input/keymap"
)

var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Backtab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyEscape:     "Esc",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PgUp",
	tcell.KeyPgDn:       "PgDn",
}

// KeyName returns the keymap name of ev, such as "Ctrl+S", "Alt+R" or
// "Enter". Unmodified runes are returned as themselves.
func KeyName(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	key := ev.Key()

	var name string
	ctrl := mods&tcell.ModCtrl != 0
	switch {
	case key == tcell.KeyRune:
		name = string(ev.Rune())
	case namedKeys[key] != "":
		name = namedKeys[key]
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		name = string(rune('A' + key - tcell.KeyCtrlA))
		ctrl = true
	case key >= tcell.KeyF1 && key <= tcell.KeyF12:
		name = "F" + string(rune('1'+key-tcell.KeyF1))
		if key >= tcell.KeyF10 {
			name = "F1" + string(rune('0'+key-tcell.KeyF10))
		}
	default:
		return ev.Name()
	}

	if mods&tcell.ModShift != 0 && key != tcell.KeyRune {
		name = "Shift+" + name
	}
	if mods&tcell.ModAlt != 0 {
		name = "Alt+" + name
	}
	if ctrl {
		name = "Ctrl+" + name
	}
	return keymap.Normalize(name)
}

// Keymap returns the default bindings with cfg.Keys applied on top.
func Keymap(cfg *config.Config) (*keymap.Keymap, error) {
	km := keymap.Default()
	if len(cfg.Keys) == 0 {
		return km, nil
	}
	user, err := keymap.FromMap("user", cfg.Keys)
	if err != nil {
		return nil, err
	}
	return km.Merge(user), nil
}
