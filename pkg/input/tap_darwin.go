//go:build darwin
// +build darwin

package input

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>

CGEventRef goEventTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

// Event type 14 is NX_SYSDEFINED, the vendor-defined class carrying
// hardware media, brightness and volume keys. CoreGraphics has no
// named constant for it.
static CGEventMask tapEventMask(void) {
	return CGEventMaskBit(kCGEventKeyDown) |
		CGEventMaskBit(kCGEventKeyUp) |
		CGEventMaskBit(kCGEventFlagsChanged) |
		CGEventMaskBit(kCGEventLeftMouseDown) |
		CGEventMaskBit(kCGEventLeftMouseUp) |
		CGEventMaskBit(kCGEventRightMouseDown) |
		CGEventMaskBit(kCGEventRightMouseUp) |
		CGEventMaskBit(kCGEventOtherMouseDown) |
		CGEventMaskBit(kCGEventOtherMouseUp) |
		CGEventMaskBit(kCGEventMouseMoved) |
		CGEventMaskBit(kCGEventLeftMouseDragged) |
		CGEventMaskBit(kCGEventRightMouseDragged) |
		CGEventMaskBit(kCGEventOtherMouseDragged) |
		CGEventMaskBit(kCGEventScrollWheel) |
		CGEventMaskBit(14);
}

static CFMachPortRef createEventTap(void) {
	return CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap,
		kCGEventTapOptionDefault, tapEventMask(), goEventTapCallback, NULL);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	hook "github.com/robotn/gohook"
)

const systemDefinedEventType = 14

// tapSource adapts a CoreGraphics event tap to Source. The tap is
// created with kCGEventTapOptionDefault, so returning no event from
// the callback genuinely discards it system-wide; creating such a tap
// fails when the process has not been granted the accessibility
// permission, which is how permission denial surfaces as a Register
// error. One tap feeds every registration, so observers are never
// starved by a consuming registration sitting in front of them.
//
// The tap callback carries no per-instance context, so the process has
// a single shared source.
type tapSource struct {
	core tapCore

	mu      sync.Mutex
	tap     C.CFMachPortRef
	loop    C.CFRunLoopRef
	started bool
}

var sharedTap = newTapSource()

func newTapSource() *tapSource {
	s := &tapSource{}
	s.core.reenable = s.enableTap
	return s
}

// Register establishes the event tap if needed and adds h for the
// given classes.
func (s *tapSource) Register(classes Class, h Handler) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if err := s.startLocked(); err != nil {
			return 0, err
		}
	}
	return s.core.add(classes, h), nil
}

// Unregister removes the registration and tears the tap down once
// nothing is listening.
func (s *tapSource) Unregister(handle Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.core.remove(handle); err != nil {
		return err
	}
	if s.core.size() == 0 && s.started {
		C.CFRunLoopStop(s.loop)
		s.tap = nil
		s.loop = nil
		s.started = false
	}
	return nil
}

// startLocked brings the tap up on its own run loop thread and waits
// until it is receiving.
func (s *tapSource) startLocked() error {
	ready := make(chan error, 1)
	go s.run(ready)
	if err := <-ready; err != nil {
		return err
	}
	s.started = true
	return nil
}

// run owns the tap's run loop thread. It publishes the refs before
// signalling ready, then blocks in CFRunLoopRun until Unregister stops
// the loop.
func (s *tapSource) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tap := C.createEventTap()
	if tap == nil {
		ready <- fmt.Errorf("event tap could not be created; the accessibility permission is required")
		return
	}

	src := C.CFMachPortCreateRunLoopSource(C.kCFAllocatorDefault, tap, 0)
	loop := C.CFRunLoopGetCurrent()
	C.CFRunLoopAddSource(loop, src, C.kCFRunLoopCommonModes)

	s.tap = tap
	s.loop = loop
	ready <- nil

	C.CFRunLoopRun()

	C.CFRunLoopRemoveSource(loop, src, C.kCFRunLoopCommonModes)
	C.CFRelease(C.CFTypeRef(unsafe.Pointer(src)))
	C.CFRelease(C.CFTypeRef(unsafe.Pointer(tap)))
}

// enableTap re-arms the tap after the OS disabled it for a callback
// timeout or an input storm. Registrations are untouched; the
// tap-disabled notice still fans out so handlers can refresh their
// own state.
func (s *tapSource) enableTap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tap != nil {
		C.CGEventTapEnable(s.tap, C.bool(true))
	}
}

// intercept translates one raw callback event and returns the combined
// decision.
func (s *tapSource) intercept(typ C.CGEventType, event C.CGEventRef) Decision {
	ev, ok := translateTapEvent(typ, event)
	if !ok {
		return Pass
	}
	return s.core.dispatch(ev)
}

// translateTapEvent maps a CoreGraphics event into the structured
// model. Disabled notices carry no payload; everything else gets
// position, canonical modifier flags and, for key events, the
// lowercase key name.
func translateTapEvent(typ C.CGEventType, event C.CGEventRef) (Event, bool) {
	if typ == C.kCGEventTapDisabledByTimeout || typ == C.kCGEventTapDisabledByUserInput {
		return Event{Class: ClassTapDisabled, When: time.Now()}, true
	}

	loc := C.CGEventGetLocation(event)
	ev := Event{
		Modifiers: canonicalModifiers(C.CGEventGetFlags(event)),
		Pos:       Point{X: float64(loc.x), Y: float64(loc.y)},
		When:      time.Now(),
	}

	switch typ {
	case C.kCGEventKeyDown:
		ev.Class = ClassKeyDown
		ev.Key = keyName(event)
	case C.kCGEventKeyUp:
		ev.Class = ClassKeyUp
		ev.Key = keyName(event)
	case C.kCGEventFlagsChanged:
		ev.Class = ClassFlagsChanged
	case C.kCGEventLeftMouseDown, C.kCGEventRightMouseDown:
		ev.Class = ClassMouseDown
		ev.Button = buttonNumber(event)
	case C.kCGEventLeftMouseUp, C.kCGEventRightMouseUp:
		ev.Class = ClassMouseUp
		ev.Button = buttonNumber(event)
	case C.kCGEventOtherMouseDown:
		ev.Class = ClassOtherMouseDown
		ev.Button = buttonNumber(event)
	case C.kCGEventOtherMouseUp:
		ev.Class = ClassOtherMouseUp
		ev.Button = buttonNumber(event)
	case C.kCGEventMouseMoved:
		ev.Class = ClassMouseMoved
	case C.kCGEventLeftMouseDragged, C.kCGEventRightMouseDragged:
		ev.Class = ClassMouseDragged
		ev.Button = buttonNumber(event)
	case C.kCGEventOtherMouseDragged:
		ev.Class = ClassOtherMouseDragged
		ev.Button = buttonNumber(event)
	case C.kCGEventScrollWheel:
		ev.Class = ClassScrollWheel
	case systemDefinedEventType:
		ev.Class = ClassSystemDefined
	default:
		return Event{}, false
	}
	return ev, true
}

// canonicalModifiers reduces the raw flag word to the four canonical
// modifier bits.
func canonicalModifiers(flags C.CGEventFlags) Modifiers {
	var m Modifiers
	if uint64(flags)&uint64(C.kCGEventFlagMaskControl) != 0 {
		m |= ModControl
	}
	if uint64(flags)&uint64(C.kCGEventFlagMaskAlternate) != 0 {
		m |= ModOption
	}
	if uint64(flags)&uint64(C.kCGEventFlagMaskShift) != 0 {
		m |= ModShift
	}
	if uint64(flags)&uint64(C.kCGEventFlagMaskCommand) != 0 {
		m |= ModCommand
	}
	return m
}

// buttonNumber returns the 1-based button matching the Event contract.
func buttonNumber(event C.CGEventRef) int {
	return int(C.CGEventGetIntegerValueField(event, C.kCGMouseEventButtonNumber)) + 1
}

// keyName returns the lowercase identifier for the key carried by a
// keyboard event, via the hook library's keycode table.
func keyName(event C.CGEventRef) string {
	rawcode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
	return strings.ToLower(hook.RawcodetoKeychar(rawcode))
}
