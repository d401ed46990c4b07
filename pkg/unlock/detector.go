// Package unlock watches modifier and key events for the configured
// unlock trigger and signals when it is observed. Detection is wired
// independently of input blocking: the detector registers its own
// observation hook and always passes events through, so the gesture is
// recognized even while everything else is being consumed.
package unlock

import (
	"sync"
	"time"

	"github.com/cleankeys/cleankeys/pkg/hotkey"
	"github.com/cleankeys/cleankeys/pkg/input"
)

// DefaultWindow is how long a second press may trail the first for the
// double-press gesture. The comparison is strict less-than: a press
// landing exactly on the boundary counts as late.
const DefaultWindow = 500 * time.Millisecond

// observedClasses are the events the detector needs to see.
const observedClasses = input.ClassKeyDown | input.ClassFlagsChanged

// Detector recognizes the unlock trigger in the raw event stream.
//
// Raw observations arrive on the source's monitoring context. The
// subscribed callback always runs on the detector's own dispatch
// goroutine, so an unlock firing never races a lock-state change made
// from that callback.
type Detector struct {
	source input.Source
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	trigger   hotkey.Trigger
	handle    input.Handle
	running   bool
	armed     bool
	lastPress time.Time
	callback  func()

	fired chan struct{}
	done  chan struct{}
}

// New creates a stopped detector for trigger. A window of zero or less
// selects DefaultWindow.
func New(source input.Source, trigger hotkey.Trigger, window time.Duration) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Detector{
		source:  source,
		window:  window,
		now:     time.Now,
		trigger: trigger,
	}
}

// Notify sets the single subscription point. The callback is invoked
// with no arguments once per qualifying gesture, on the detector's
// dispatch goroutine. It replaces any previous callback.
func (d *Detector) Notify(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = fn
}

// Start registers the observation hook and begins dispatching.
// Calling Start on a running detector is a no-op.
func (d *Detector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}

	handle, err := d.source.Register(observedClasses|input.ClassTapDisabled, d.handleEvent)
	if err != nil {
		return err
	}

	d.handle = handle
	d.running = true
	d.armed = false
	d.lastPress = time.Time{}
	d.fired = make(chan struct{}, 1)
	d.done = make(chan struct{})
	go d.dispatch(d.fired, d.done)
	return nil
}

// Stop unregisters the hook and ends dispatching. It is idempotent.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	_ = d.source.Unregister(d.handle)
	close(d.done)
	d.running = false
	d.handle = 0
	d.armed = false
	d.lastPress = time.Time{}
}

// SetTrigger replaces the active trigger wholesale and clears any
// in-flight double-press state. It takes effect for the next incoming
// event.
func (d *Detector) SetTrigger(trigger hotkey.Trigger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trigger = trigger
	d.armed = false
	d.lastPress = time.Time{}
}

// Trigger returns the active trigger.
func (d *Detector) Trigger() hotkey.Trigger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trigger
}

// Description returns the human-readable rendering of the active
// trigger.
func (d *Detector) Description() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trigger.Description()
}

// handleEvent runs on the source's monitoring context. It advances the
// press-timing state machine and never consumes anything.
func (d *Detector) handleEvent(ev input.Event) input.Decision {
	d.mu.Lock()

	if !d.running {
		d.mu.Unlock()
		return input.Pass
	}

	if ev.Class == input.ClassTapDisabled {
		d.reregisterLocked()
		d.mu.Unlock()
		return input.Pass
	}

	if !d.trigger.Matches(ev) {
		d.mu.Unlock()
		return input.Pass
	}

	fire := false
	if d.trigger.DoublePress() {
		at := d.eventTime(ev)
		if d.armed && at.Sub(d.lastPress) < d.window {
			// Second qualifying press inside the window.
			fire = true
			d.armed = false
			d.lastPress = time.Time{}
		} else {
			// First press, or a late second press starting a fresh
			// window. A modifier release in between never lands here
			// because releases do not match the trigger.
			d.armed = true
			d.lastPress = at
		}
	} else {
		fire = true
	}

	fired := d.fired
	d.mu.Unlock()

	if fire {
		select {
		case fired <- struct{}{}:
		default:
		}
	}
	return input.Pass
}

// reregisterLocked re-establishes the observation hook after the OS
// disabled it, just as the blocker does for its interception. Losing
// this registration would leave the unlock gesture dead with no way
// back. Gesture timing state is preserved; if the hook cannot come
// back the detector shuts down rather than pretend to listen.
func (d *Detector) reregisterLocked() {
	_ = d.source.Unregister(d.handle)
	handle, err := d.source.Register(observedClasses|input.ClassTapDisabled, d.handleEvent)
	if err != nil {
		close(d.done)
		d.running = false
		d.handle = 0
		d.armed = false
		d.lastPress = time.Time{}
		return
	}
	d.handle = handle
}

// eventTime prefers the event's own timestamp so gesture timing
// reflects when presses happened, not when they were processed.
func (d *Detector) eventTime(ev input.Event) time.Time {
	if !ev.When.IsZero() {
		return ev.When
	}
	return d.now()
}

// dispatch funnels fire signals onto one goroutine and invokes the
// subscribed callback there.
func (d *Detector) dispatch(fired <-chan struct{}, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-fired:
			d.mu.Lock()
			fn := d.callback
			d.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}
