package main

import (
	"fmt"
	"strings"

	"github.com/cleankeys/cleankeys/pkg/hotkey"
	"github.com/cleankeys/cleankeys/pkg/input"
)

// modifierNames maps the accepted spelling variants to modifier bits.
var modifierNames = map[string]input.Modifiers{
	"ctrl":    input.ModControl,
	"control": input.ModControl,
	"opt":     input.ModOption,
	"option":  input.ModOption,
	"alt":     input.ModOption,
	"shift":   input.ModShift,
	"cmd":     input.ModCommand,
	"command": input.ModCommand,
	"meta":    input.ModCommand,
}

// parseHotkey turns a flag value like "cmd+shift+k" or "ctrl+opt" into
// a trigger. Every token but the last must be a modifier name; a final
// non-modifier token is the key identifier ("k", "space", "f5", ...).
func parseHotkey(spec string) (hotkey.Trigger, error) {
	tokens := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")

	var mods input.Modifiers
	key := ""
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			return hotkey.Trigger{}, fmt.Errorf("empty token in hotkey %q", spec)
		}
		if m, ok := modifierNames[token]; ok {
			mods |= m
			continue
		}
		if i != len(tokens)-1 {
			return hotkey.Trigger{}, fmt.Errorf("key %q must be the last token in %q", token, spec)
		}
		key = token
	}

	if key == "" && mods == 0 {
		return hotkey.Trigger{}, fmt.Errorf("hotkey %q names no key and no modifiers", spec)
	}

	return hotkey.New(key, mods, ""), nil
}
