//go:build darwin
// +build darwin

package input

/*
#include <ApplicationServices/ApplicationServices.h>
*/
import "C"

import "unsafe"

// goEventTapCallback is installed as the event tap's callback.
// Returning no event discards it, which is what makes Consume real
// system-wide.
//
//export goEventTapCallback
func goEventTapCallback(proxy C.CGEventTapProxy, typ C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	if sharedTap.intercept(typ, event) == Consume {
		return nil
	}
	return event
}
