// Package hotkey defines the unlock trigger value object, its
// persisted form, and conflict checking against well-known system
// shortcuts.
package hotkey

import (
	"fmt"
	"strings"

	"github.com/cleankeys/cleankeys/pkg/input"
)

// Trigger describes an unlock trigger: an optional key identifier, a
// required modifier set, and whether it fires on a double press of the
// modifier instead of a single exact match. Triggers are immutable
// once built and replaced wholesale on reconfiguration; use New,
// Default or FromRecord.
type Trigger struct {
	key         string
	mods        input.Modifiers
	doublePress bool
	display     string
}

// New builds an explicit single-press trigger. The key may be empty
// for a modifiers-only trigger. An empty display is derived from the
// modifier glyphs and the key.
func New(key string, mods input.Modifiers, display string) Trigger {
	key = strings.ToLower(key)
	mods &= input.AllModifiers
	if display == "" {
		display = render(key, mods)
	}
	return Trigger{key: key, mods: mods, display: display}
}

// Default returns the built-in trigger used when nothing is
// configured: a double press of Shift with no other modifiers.
func Default() Trigger {
	return Trigger{
		mods:        input.ModShift,
		doublePress: true,
		display:     "Double Shift",
	}
}

// Key returns the key identifier, empty for modifiers-only triggers.
func (t Trigger) Key() string { return t.key }

// Modifiers returns the required modifier set.
func (t Trigger) Modifiers() input.Modifiers { return t.mods }

// DoublePress reports whether the trigger fires on the double-press
// gesture rather than a single exact match.
func (t Trigger) DoublePress() bool { return t.doublePress }

// Matches reports whether ev is an exact match for the trigger.
//
// A modifiers-only trigger matches a flags-changed event whose
// canonical modifier set equals the trigger's non-empty set. A keyed
// trigger matches a key-down whose key and full modifier set both
// equal the trigger's; a superset of the modifiers never matches.
func (t Trigger) Matches(ev input.Event) bool {
	mods := ev.Modifiers & input.AllModifiers
	if t.key == "" {
		if ev.Class != input.ClassFlagsChanged {
			return false
		}
		return t.mods != 0 && mods == t.mods
	}
	if ev.Class != input.ClassKeyDown {
		return false
	}
	return ev.Key == t.key && mods == t.mods
}

// Description returns the human-readable rendering of the trigger,
// e.g. "Double Shift", "Space" or "⇧⌘K".
func (t Trigger) Description() string {
	if t.display != "" {
		return t.display
	}
	return render(t.key, t.mods)
}

// render produces the symbolic form: modifier glyphs followed by the
// key, with bare named keys title-cased ("Space", "Tab").
func render(key string, mods input.Modifiers) string {
	glyphs := mods.String()
	if key == "" {
		return glyphs
	}
	var k string
	if len(key) == 1 {
		k = strings.ToUpper(key)
	} else {
		k = strings.ToUpper(key[:1]) + key[1:]
	}
	return glyphs + k
}

// Record is the flat serialized form of a Trigger, stored under the
// hotkey settings key.
type Record struct {
	Key         string `yaml:"key,omitempty"`
	Modifiers   uint8  `yaml:"modifiers"`
	Display     string `yaml:"display,omitempty"`
	DoublePress bool   `yaml:"double_press,omitempty"`
}

// Record returns the persisted form of the trigger.
func (t Trigger) Record() Record {
	return Record{
		Key:         t.key,
		Modifiers:   uint8(t.mods),
		Display:     t.display,
		DoublePress: t.doublePress,
	}
}

// FromRecord rebuilds a Trigger from its persisted form. Records that
// could never fire are rejected so a damaged settings file degrades to
// the default trigger at the call site.
func FromRecord(r Record) (Trigger, error) {
	mods := input.Modifiers(r.Modifiers) & input.AllModifiers
	key := strings.ToLower(r.Key)

	if r.DoublePress {
		if key != "" {
			return Trigger{}, fmt.Errorf("double-press trigger cannot carry a key identifier %q", r.Key)
		}
		if mods == 0 {
			return Trigger{}, fmt.Errorf("double-press trigger requires a modifier")
		}
	} else if key == "" && mods == 0 {
		return Trigger{}, fmt.Errorf("trigger requires a key or a non-empty modifier set")
	}

	display := r.Display
	if display == "" {
		if r.DoublePress {
			display = "Double " + mods.String()
		} else {
			display = render(key, mods)
		}
	}

	return Trigger{
		key:         key,
		mods:        mods,
		doublePress: r.DoublePress,
		display:     display,
	}, nil
}
