package input

import "testing"

func TestTapCoreDispatchConsumesWhenAnyHandlerConsumes(t *testing.T) {
	var core tapCore
	core.add(ClassKeyDown, func(Event) Decision { return Consume })

	seen := 0
	core.add(ClassKeyDown|ClassKeyUp, func(Event) Decision {
		seen++
		return Pass
	})

	if got := core.dispatch(Event{Class: ClassKeyDown}); got != Consume {
		t.Errorf("expected Consume but got %v", got)
	}
	if seen != 1 {
		t.Errorf("expected the passing handler to still see the event but it saw %d", seen)
	}

	// Only the second handler matches key-up, and it passes.
	if got := core.dispatch(Event{Class: ClassKeyUp}); got != Pass {
		t.Errorf("expected Pass but got %v", got)
	}
	if seen != 2 {
		t.Errorf("expected the key-up to reach the second handler but it saw %d events", seen)
	}
}

func TestTapCoreDispatchSkipsNonMatchingHandlers(t *testing.T) {
	var core tapCore
	called := false
	core.add(ClassMouseDown, func(Event) Decision {
		called = true
		return Consume
	})

	if got := core.dispatch(Event{Class: ClassKeyDown}); got != Pass {
		t.Errorf("expected Pass for an unmatched event but got %v", got)
	}
	if called {
		t.Error("expected the mouse handler not to see a key event")
	}
}

func TestTapCoreReenablesHookBeforeFanOut(t *testing.T) {
	var core tapCore
	var order []string
	core.reenable = func() { order = append(order, "enable") }
	core.add(ClassKeyDown|ClassTapDisabled, func(Event) Decision {
		order = append(order, "handler")
		return Consume
	})

	if got := core.dispatch(Event{Class: ClassTapDisabled}); got != Pass {
		t.Errorf("expected a tap-disabled notice to pass through but got %v", got)
	}
	if len(order) != 2 || order[0] != "enable" || order[1] != "handler" {
		t.Errorf("expected the hook re-armed before handlers run, got %v", order)
	}

	// Ordinary events leave the hook alone.
	core.dispatch(Event{Class: ClassKeyDown})
	if len(order) != 3 || order[2] != "handler" {
		t.Errorf("expected no re-arm for an ordinary event, got %v", order)
	}
}

func TestTapCoreHandlersMayReregisterDuringDispatch(t *testing.T) {
	var core tapCore
	var handle Handle
	handle = core.add(ClassTapDisabled, func(Event) Decision {
		if err := core.remove(handle); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		handle = core.add(ClassTapDisabled, func(Event) Decision { return Pass })
		return Pass
	})

	core.dispatch(Event{Class: ClassTapDisabled})
	if core.size() != 1 {
		t.Errorf("expected one live registration but got %d", core.size())
	}
}

func TestTapCoreRemoveUnknownRegistration(t *testing.T) {
	var core tapCore
	if err := core.remove(42); err == nil {
		t.Error("expected an error for an unknown registration")
	}
}
