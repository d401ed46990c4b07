package unlock

import (
	"fmt"
	"testing"
	"time"

	"github.com/cleankeys/cleankeys/pkg/hotkey"
	"github.com/cleankeys/cleankeys/pkg/input"
	"github.com/cleankeys/cleankeys/pkg/testutil"
)

// shiftPress builds the flags-changed event for a bare shift press at
// the given instant.
func shiftPress(at time.Time) input.Event {
	return input.Event{Class: input.ClassFlagsChanged, Modifiers: input.ModShift, When: at}
}

// shiftRelease builds the flags-changed event for all modifiers going
// up at the given instant.
func shiftRelease(at time.Time) input.Event {
	return input.Event{Class: input.ClassFlagsChanged, Modifiers: 0, When: at}
}

// startDetector starts a detector on a mock source and subscribes a
// counting callback. Fires are observed through the returned channel.
func startDetector(t *testing.T, trigger hotkey.Trigger) (*Detector, *testutil.MockSource, chan struct{}) {
	t.Helper()

	source := testutil.NewMockSource()
	d := New(source, trigger, DefaultWindow)

	fires := make(chan struct{}, 16)
	d.Notify(func() { fires <- struct{}{} })

	if err := d.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, source, fires
}

// expectFires fails unless exactly want fire signals arrive.
func expectFires(t *testing.T, fires chan struct{}, want int) {
	t.Helper()

	got := 0
	timeout := time.After(500 * time.Millisecond)
	for got < want {
		select {
		case <-fires:
			got++
		case <-timeout:
			t.Fatalf("expected %d fires but observed %d", want, got)
		}
	}

	// Give a stray extra fire a moment to show up.
	select {
	case <-fires:
		t.Fatalf("expected exactly %d fires but observed more", want)
	case <-time.After(50 * time.Millisecond):
	}
}

// expectNoFire fails if any fire signal arrives shortly.
func expectNoFire(t *testing.T, fires chan struct{}) {
	t.Helper()
	select {
	case <-fires:
		t.Fatal("expected no fire")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDoublePressWithinWindowFiresOnce(t *testing.T) {
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(shiftRelease(base.Add(100 * time.Millisecond)))
	source.Emit(shiftPress(base.Add(400 * time.Millisecond)))

	expectFires(t, fires, 1)
}

func TestDoublePressOutsideWindowRearms(t *testing.T) {
	d, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(shiftPress(base.Add(600 * time.Millisecond)))

	expectNoFire(t, fires)

	d.mu.Lock()
	armed, last := d.armed, d.lastPress
	d.mu.Unlock()
	if !armed {
		t.Fatal("expected detector to stay armed on a late second press")
	}
	if !last.Equal(base.Add(600 * time.Millisecond)) {
		t.Errorf("expected the late press to start a fresh window, got %v", last)
	}

	// The fresh window works: one more press inside it fires.
	source.Emit(shiftPress(base.Add(900 * time.Millisecond)))
	expectFires(t, fires, 1)
}

func TestDoublePressBoundaryIsLate(t *testing.T) {
	// Exactly on the window boundary counts as late (strict less-than).
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(shiftPress(base.Add(DefaultWindow)))

	expectNoFire(t, fires)
}

func TestDoublePressReturnsToIdleAfterFiring(t *testing.T) {
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(shiftPress(base.Add(200 * time.Millisecond)))
	expectFires(t, fires, 1)

	// The next press is a fresh first press, not a third tap.
	source.Emit(shiftPress(base.Add(300 * time.Millisecond)))
	expectNoFire(t, fires)

	source.Emit(shiftPress(base.Add(450 * time.Millisecond)))
	expectFires(t, fires, 1)
}

func TestModifierReleaseDoesNotResetGesture(t *testing.T) {
	d, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(shiftRelease(base.Add(50 * time.Millisecond)))

	d.mu.Lock()
	armed := d.armed
	d.mu.Unlock()
	if !armed {
		t.Fatal("expected release to leave the detector armed")
	}

	source.Emit(shiftPress(base.Add(300 * time.Millisecond)))
	expectFires(t, fires, 1)
}

func TestShiftWithExtraModifiersDoesNotCount(t *testing.T) {
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	ev := input.Event{
		Class:     input.ClassFlagsChanged,
		Modifiers: input.ModShift | input.ModCommand,
		When:      base,
	}
	source.Emit(ev)
	source.Emit(shiftPress(base.Add(100 * time.Millisecond)))

	// Only one qualifying press so far.
	expectNoFire(t, fires)
}

func TestSinglePressTriggerFiresImmediately(t *testing.T) {
	trigger := hotkey.New("k", input.ModCommand|input.ModShift, "")
	_, source, fires := startDetector(t, trigger)

	source.Emit(input.Event{
		Class:     input.ClassKeyDown,
		Key:       "k",
		Modifiers: input.ModCommand | input.ModShift,
		When:      time.Unix(1000, 0),
	})
	expectFires(t, fires, 1)

	// A superset of the modifiers never fires.
	source.Emit(input.Event{
		Class:     input.ClassKeyDown,
		Key:       "k",
		Modifiers: input.ModCommand | input.ModShift | input.ModOption,
		When:      time.Unix(1001, 0),
	})
	expectNoFire(t, fires)
}

func TestModifierOnlyTriggerFiresImmediately(t *testing.T) {
	trigger := hotkey.New("", input.ModControl|input.ModOption, "")
	_, source, fires := startDetector(t, trigger)

	source.Emit(input.Event{
		Class:     input.ClassFlagsChanged,
		Modifiers: input.ModControl | input.ModOption,
		When:      time.Unix(1000, 0),
	})
	expectFires(t, fires, 1)
}

func TestSetTriggerTakesEffectForNextEvent(t *testing.T) {
	d, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	// Arm the double-press gesture, then reconfigure mid-flight.
	source.Emit(shiftPress(base))
	d.SetTrigger(hotkey.New("u", input.ModCommand, ""))

	// The old gesture is gone: a second shift press does nothing.
	source.Emit(shiftPress(base.Add(100 * time.Millisecond)))
	expectNoFire(t, fires)

	// The new trigger fires on its first match.
	source.Emit(input.Event{
		Class:     input.ClassKeyDown,
		Key:       "u",
		Modifiers: input.ModCommand,
		When:      base.Add(200 * time.Millisecond),
	})
	expectFires(t, fires, 1)

	if d.Description() != "⌘U" {
		t.Errorf("expected description ⌘U but got %q", d.Description())
	}
}

func TestDetectorNeverConsumes(t *testing.T) {
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	decisions := source.Emit(shiftPress(base))
	if len(decisions) != 1 || decisions[0] != input.Pass {
		t.Error("expected the detector to pass a qualifying press through")
	}
	decisions = source.Emit(shiftPress(base.Add(100 * time.Millisecond)))
	if len(decisions) != 1 || decisions[0] != input.Pass {
		t.Error("expected the detector to pass the firing press through")
	}
	expectFires(t, fires, 1)
}

func TestTapDisabledReestablishesObservation(t *testing.T) {
	_, source, fires := startDetector(t, hotkey.Default())
	base := time.Unix(1000, 0)

	source.Emit(shiftPress(base))
	source.Emit(input.Event{Class: input.ClassTapDisabled, When: base.Add(50 * time.Millisecond)})

	if source.ActiveCount() != 1 {
		t.Fatalf("expected the observation hook to be re-established but got %d registrations", source.ActiveCount())
	}
	if source.RegisterCalls() != 2 {
		t.Errorf("expected a fresh registration after the hook was disabled but got %d register calls", source.RegisterCalls())
	}

	// The gesture completes on the new registration; the armed state
	// survived the disable notice.
	source.Emit(shiftPress(base.Add(300 * time.Millisecond)))
	expectFires(t, fires, 1)
}

func TestTapDisabledReregisterFailureStopsDetection(t *testing.T) {
	d, source, fires := startDetector(t, hotkey.Default())
	source.SetRegisterError(fmt.Errorf("not permitted"))

	source.Emit(input.Event{Class: input.ClassTapDisabled, When: time.Unix(1000, 0)})

	if source.ActiveCount() != 0 {
		t.Errorf("expected no live registration but got %d", source.ActiveCount())
	}
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if running {
		t.Error("expected the detector to shut down when the hook cannot come back")
	}
	expectNoFire(t, fires)
}

func TestStartAndStopLifecycle(t *testing.T) {
	source := testutil.NewMockSource()
	d := New(source, hotkey.Default(), 0)

	if err := d.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if source.ActiveCount() != 1 {
		t.Fatalf("expected one registration but got %d", source.ActiveCount())
	}
	regs := source.Registrations()
	if regs[0].Classes != observedClasses|input.ClassTapDisabled {
		t.Errorf("expected registration for key-down, flags-changed and tap-disabled but got %v", regs[0].Classes)
	}

	// Start on a running detector is a no-op.
	if err := d.Start(); err != nil {
		t.Fatalf("unexpected error from second start: %v", err)
	}
	if source.ActiveCount() != 1 {
		t.Errorf("expected second start to be a no-op but got %d registrations", source.ActiveCount())
	}

	d.Stop()
	d.Stop()
	if source.ActiveCount() != 0 {
		t.Errorf("expected no registrations after stop but got %d", source.ActiveCount())
	}
}

func TestStartReturnsRegistrationError(t *testing.T) {
	source := testutil.NewMockSource()
	source.SetRegisterError(fmt.Errorf("not permitted"))
	d := New(source, hotkey.Default(), 0)

	if err := d.Start(); err == nil {
		t.Error("expected an error when the observation hook cannot be established")
	}
}

func TestEventsAfterStopAreIgnored(t *testing.T) {
	d, source, fires := startDetector(t, hotkey.New("k", input.ModCommand, ""))
	d.Stop()

	// The mock still holds no registration, but call the handler
	// directly to cover the running guard.
	d.handleEvent(input.Event{Class: input.ClassKeyDown, Key: "k", Modifiers: input.ModCommand})
	_ = source
	expectNoFire(t, fires)
}
