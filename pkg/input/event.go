// Package input defines the structured input event model and the raw
// event source capability that the blocker and unlock detector are
// built on. Implementations wrap an OS-level hook; the rest of the
// application only sees Event values and synchronous decisions.
package input

import (
	"strings"
	"time"
)

// Class identifies a category of input event. Classes form a bitmask
// so one registration can cover several categories.
type Class uint32

const (
	ClassKeyDown Class = 1 << iota
	ClassKeyUp
	ClassFlagsChanged
	ClassSystemDefined
	ClassMouseDown
	ClassMouseUp
	ClassOtherMouseDown
	ClassOtherMouseUp
	ClassMouseMoved
	ClassMouseDragged
	ClassOtherMouseDragged
	ClassScrollWheel

	// ClassTapDisabled is synthesized when the OS disables the hook
	// (callback timeout or input-storm heuristics). It carries no key
	// or position data; handlers re-register to recover.
	ClassTapDisabled
)

// KeyboardClasses covers everything a keystroke can produce, including
// vendor-defined hardware keys (media, brightness, volume).
const KeyboardClasses = ClassKeyDown | ClassKeyUp | ClassFlagsChanged | ClassSystemDefined

// MouseClasses covers all buttons, motion, drags and scrolling.
const MouseClasses = ClassMouseDown | ClassMouseUp | ClassOtherMouseDown | ClassOtherMouseUp |
	ClassMouseMoved | ClassMouseDragged | ClassOtherMouseDragged | ClassScrollWheel

// MotionClasses is the subset of mouse classes that move the pointer.
const MotionClasses = ClassMouseMoved | ClassMouseDragged | ClassOtherMouseDragged

// Modifiers is a bitmask over the four canonical modifier categories.
// Left/right variants of a key map to the same bit.
type Modifiers uint8

const (
	ModControl Modifiers = 1 << iota
	ModOption
	ModShift
	ModCommand
)

// AllModifiers masks the canonical bits; anything outside it is noise
// from the platform layer and is discarded on entry.
const AllModifiers = ModControl | ModOption | ModShift | ModCommand

// Has reports whether every bit of mod is set in m.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// String renders the modifier set with the conventional macOS glyphs
// in display order: control, option, shift, command.
func (m Modifiers) String() string {
	var b strings.Builder
	if m.Has(ModControl) {
		b.WriteString("⌃")
	}
	if m.Has(ModOption) {
		b.WriteString("⌥")
	}
	if m.Has(ModShift) {
		b.WriteString("⇧")
	}
	if m.Has(ModCommand) {
		b.WriteString("⌘")
	}
	return b.String()
}

// Point is a screen coordinate.
type Point struct {
	X float64
	Y float64
}

// Event is one observed input event.
type Event struct {
	Class     Class
	Key       string    // lowercase key identifier; empty for modifier-only events
	Modifiers Modifiers // modifier state at event time, canonical bits only
	Button    int       // 1 = left, 2 = right, 3+ = auxiliary
	Pos       Point
	When      time.Time
}

// Decision is a handler's verdict on the event it was just shown.
type Decision int

const (
	// Pass lets the event continue to normal delivery.
	Pass Decision = iota
	// Consume discards the event; it never reaches any application.
	Consume
)

// Handler inspects an event and decides its fate. Handlers run on the
// source's monitoring context and must return promptly; slow handlers
// risk the OS disabling the hook.
type Handler func(Event) Decision

// Handle identifies one registration with a Source.
type Handle int

// Source is a system-wide input event source. Register establishes a
// hook for the given classes; failure usually means the process has
// not been granted the OS permission to observe input. Every handler
// registered on a source sees each matching event, regardless of what
// other handlers decide, so detection logic is never starved by a
// blocking registration.
type Source interface {
	Register(classes Class, h Handler) (Handle, error)
	Unregister(handle Handle) error
}

// Cursor reads and repositions the pointer.
type Cursor interface {
	Position() (Point, error)
	MoveTo(p Point) error
}
