// Package keymap binds key names to dispatcher actions.
//
// Key names use the form produced by the terminal host: an optional chain of
// modifiers followed by the key, e.g. "Ctrl+S", "Alt+R", "Enter", "Left".
package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key that triggers this binding.
	Keys string

	// Action is the command to execute.
	Action string

	// Description provides documentation for the binding.
	Description string
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{Keys: keys, Action: action}
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// Keymap holds key bindings.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	bindings map[string]Binding
}

// NewKeymap creates a new keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{Name: name, bindings: make(map[string]Binding)}
}

// Add adds a binding to this keymap, replacing any binding for the same key.
func (k *Keymap) Add(keys, action string) *Keymap {
	return k.AddBinding(NewBinding(keys, action))
}

// AddBinding adds a fully configured binding to this keymap.
func (k *Keymap) AddBinding(b Binding) *Keymap {
	k.bindings[Normalize(b.Keys)] = b
	return k
}

// Lookup returns the binding for keys.
func (k *Keymap) Lookup(keys string) (Binding, bool) {
	b, ok := k.bindings[Normalize(keys)]
	return b, ok
}

// Bindings returns all bindings sorted by key.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for _, b := range k.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// Merge adds every binding of other into k. Bindings in other win.
func (k *Keymap) Merge(other *Keymap) *Keymap {
	for _, b := range other.bindings {
		k.AddBinding(b)
	}
	return k
}

// FromMap builds a keymap from key → action pairs, as found in config files.
func FromMap(name string, m map[string]string) (*Keymap, error) {
	km := NewKeymap(name)
	for keys, action := range m {
		if strings.TrimSpace(keys) == "" || strings.TrimSpace(action) == "" {
			return nil, fmt.Errorf("keymap %s: empty binding %q = %q", name, keys, action)
		}
		km.Add(keys, action)
	}
	return km, nil
}

// modifierOrder fixes the order modifiers appear in normalized names.
var modifierOrder = map[string]int{"ctrl": 0, "alt": 1, "shift": 2}

// Normalize canonicalizes a key name: modifiers are ordered Ctrl, Alt, Shift
// and capitalized; a single letter key is upper-cased when a modifier is
// present.
func Normalize(keys string) string {
	parts := strings.Split(strings.TrimSpace(keys), "+")
	if len(parts) == 1 {
		return parts[0]
	}
	key := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	for i, m := range mods {
		mods[i] = strings.ToLower(strings.TrimSpace(m))
	}
	sort.SliceStable(mods, func(i, j int) bool {
		return modifierOrder[mods[i]] < modifierOrder[mods[j]]
	})
	for i, m := range mods {
		if m != "" {
			mods[i] = strings.ToUpper(m[:1]) + m[1:]
		}
	}
	if len(key) == 1 {
		key = strings.ToUpper(key)
	}
	return strings.Join(append(mods, key), "+")
}
