package input

import (
	"fmt"
	"sync"
)

// registration pairs a handler with the classes it asked for.
type registration struct {
	classes Class
	handler Handler
}

// tapCore is the platform-independent half of an event tap adapter: it
// keeps the handler registry and turns one translated event into a
// combined decision. The owning adapter points reenable at whatever
// re-arms the underlying OS hook; it runs before a tap-disabled notice
// is fanned out, so interception resumes even if no handler reacts to
// the notice.
type tapCore struct {
	mu       sync.Mutex
	next     Handle
	handlers map[Handle]registration
	reenable func()
}

func (c *tapCore) add(classes Class, h Handler) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handlers == nil {
		c.handlers = make(map[Handle]registration)
	}
	c.next++
	c.handlers[c.next] = registration{classes: classes, handler: h}
	return c.next
}

func (c *tapCore) remove(handle Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.handlers[handle]; !ok {
		return fmt.Errorf("unknown registration %d", handle)
	}
	delete(c.handlers, handle)
	return nil
}

func (c *tapCore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// dispatch fans ev out to every matching registration and combines the
// decisions: the event is consumed when any handler consumes it, and
// every matching handler sees it regardless of what the others decide.
// Handlers run outside the lock so they may register and unregister
// freely. A tap-disabled notice re-arms the hook first and is never
// consumed.
func (c *tapCore) dispatch(ev Event) Decision {
	c.mu.Lock()
	matched := make([]Handler, 0, len(c.handlers))
	for _, reg := range c.handlers {
		if reg.classes&ev.Class != 0 {
			matched = append(matched, reg.handler)
		}
	}
	reenable := c.reenable
	c.mu.Unlock()

	if ev.Class == ClassTapDisabled && reenable != nil {
		reenable()
	}

	decision := Pass
	for _, h := range matched {
		if h(ev) == Consume {
			decision = Consume
		}
	}
	if ev.Class == ClassTapDisabled {
		return Pass
	}
	return decision
}
