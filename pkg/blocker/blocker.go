// Package blocker consumes system-wide input events of a chosen class
// so input devices can be handled without triggering input. At most
// one mode is intercepted at a time; in mouse mode the pointer is
// pinned to the position it had when blocking began.
package blocker

import (
	"sync"

	"github.com/cleankeys/cleankeys/pkg/input"
)

// Mode selects which class of input is intercepted.
type Mode int

const (
	ModeNone Mode = iota
	ModeKeyboard
	ModeMouse
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeKeyboard:
		return "keyboard"
	case ModeMouse:
		return "mouse"
	default:
		return "none"
	}
}

// classes returns the event classes intercepted in this mode.
func (m Mode) classes() input.Class {
	switch m {
	case ModeKeyboard:
		return input.KeyboardClasses
	case ModeMouse:
		return input.MouseClasses
	default:
		return 0
	}
}

// Blocker owns at most one system-wide interception at a time.
type Blocker struct {
	source input.Source
	cursor input.Cursor

	mu     sync.Mutex
	mode   Mode
	handle input.Handle
	active bool
	frozen input.Point
}

// New creates an inactive blocker on the given source and cursor.
func New(source input.Source, cursor input.Cursor) *Blocker {
	return &Blocker{source: source, cursor: cursor}
}

// Start begins intercepting input for mode. Any active interception is
// fully stopped first, so no mode is ever layered on another. In mouse
// mode the current pointer position is captured as the frozen position
// before the hook goes up.
//
// If the hook cannot be established, typically because the process
// has not been granted permission to observe input, the blocker
// simply stays inactive; callers observe that through Active.
func (b *Blocker) Start(mode Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	if mode == ModeNone {
		return
	}

	if mode == ModeMouse {
		if p, err := b.cursor.Position(); err == nil {
			b.frozen = p
		}
	}

	handle, err := b.source.Register(mode.classes()|input.ClassTapDisabled, b.handleEvent)
	if err != nil {
		b.frozen = input.Point{}
		return
	}

	b.handle = handle
	b.mode = mode
	b.active = true
}

// Stop tears down the interception and discards the frozen position.
// It is idempotent and safe to call while inactive.
func (b *Blocker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Blocker) stopLocked() {
	if !b.active {
		return
	}
	_ = b.source.Unregister(b.handle)
	b.active = false
	b.mode = ModeNone
	b.handle = 0
	b.frozen = input.Point{}
}

// Active reports whether an interception is currently established.
func (b *Blocker) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Mode returns the mode being intercepted, ModeNone when inactive.
func (b *Blocker) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// handleEvent runs on the source's monitoring context. Every matched
// event is consumed; pointer motion is first warped back to the frozen
// position so the cursor appears pinned.
func (b *Blocker) handleEvent(ev input.Event) input.Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return input.Pass
	}

	if ev.Class == input.ClassTapDisabled {
		b.reenableLocked()
		return input.Pass
	}

	if b.mode == ModeMouse && ev.Class&input.MotionClasses != 0 {
		_ = b.cursor.MoveTo(b.frozen)
	}

	return input.Consume
}

// reenableLocked re-establishes the hook after the OS disabled it for
// a callback timeout or an input storm. Without this, blocking would
// silently stop working.
func (b *Blocker) reenableLocked() {
	_ = b.source.Unregister(b.handle)
	handle, err := b.source.Register(b.mode.classes()|input.ClassTapDisabled, b.handleEvent)
	if err != nil {
		b.active = false
		b.mode = ModeNone
		b.handle = 0
		b.frozen = input.Point{}
		return
	}
	b.handle = handle
}
