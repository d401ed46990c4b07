// Package testutil provides shared mocks for exercising the input
// pipeline without a live OS hook.
package testutil

import (
	"fmt"
	"sync"

	"github.com/cleankeys/cleankeys/pkg/input"
	"github.com/cleankeys/cleankeys/pkg/notify"
)

// Registration records one Register call on a MockSource.
type Registration struct {
	Classes input.Class
	Handler input.Handler
}

// MockSource is a scriptable input.Source. Tests synthesize events
// with Emit and observe registration churn through the counters.
type MockSource struct {
	mu          sync.Mutex
	next        input.Handle
	regs        map[input.Handle]Registration
	registerErr error
	registers   int
	unregisters int
}

// NewMockSource creates an empty mock source.
func NewMockSource() *MockSource {
	return &MockSource{regs: make(map[input.Handle]Registration)}
}

// SetRegisterError makes subsequent Register calls fail with err.
func (s *MockSource) SetRegisterError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerErr = err
}

// Register implements input.Source.
func (s *MockSource) Register(classes input.Class, h input.Handler) (input.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registers++
	if s.registerErr != nil {
		return 0, s.registerErr
	}

	s.next++
	s.regs[s.next] = Registration{Classes: classes, Handler: h}
	return s.next, nil
}

// Unregister implements input.Source.
func (s *MockSource) Unregister(handle input.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unregisters++
	if _, ok := s.regs[handle]; !ok {
		return fmt.Errorf("unknown registration %d", handle)
	}
	delete(s.regs, handle)
	return nil
}

// Emit delivers ev to every registration whose classes include the
// event's class and returns the decisions in delivery order. Handlers
// run outside the mock's lock, like a real monitoring context, so they
// may re-register freely.
func (s *MockSource) Emit(ev input.Event) []input.Decision {
	s.mu.Lock()
	handlers := make([]input.Handler, 0, len(s.regs))
	for _, reg := range s.regs {
		if reg.Classes&ev.Class != 0 {
			handlers = append(handlers, reg.Handler)
		}
	}
	s.mu.Unlock()

	decisions := make([]input.Decision, 0, len(handlers))
	for _, h := range handlers {
		decisions = append(decisions, h(ev))
	}
	return decisions
}

// ActiveCount returns the number of live registrations.
func (s *MockSource) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}

// Registrations returns a copy of the live registrations.
func (s *MockSource) Registrations() []Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, reg)
	}
	return out
}

// RegisterCalls returns how many times Register was called.
func (s *MockSource) RegisterCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registers
}

// UnregisterCalls returns how many times Unregister was called.
func (s *MockSource) UnregisterCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisters
}

// MockCursor is a scriptable input.Cursor that records every MoveTo.
type MockCursor struct {
	mu     sync.Mutex
	pos    input.Point
	posErr error
	moves  []input.Point
}

// NewMockCursor creates a mock cursor resting at p.
func NewMockCursor(p input.Point) *MockCursor {
	return &MockCursor{pos: p}
}

// SetPositionError makes subsequent Position calls fail with err.
func (c *MockCursor) SetPositionError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posErr = err
}

// SetPosition moves the mock pointer without recording a MoveTo,
// simulating physical mouse movement.
func (c *MockCursor) SetPosition(p input.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = p
}

// Position implements input.Cursor.
func (c *MockCursor) Position() (input.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.posErr != nil {
		return input.Point{}, c.posErr
	}
	return c.pos, nil
}

// MoveTo implements input.Cursor.
func (c *MockCursor) MoveTo(p input.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = p
	c.moves = append(c.moves, p)
	return nil
}

// Moves returns a copy of every recorded MoveTo target.
func (c *MockCursor) Moves() []input.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]input.Point, len(c.moves))
	copy(out, c.moves)
	return out
}

// MockNotifier is a thread-safe notify.Notifier that captures sends.
type MockNotifier struct {
	mu      sync.Mutex
	sent    []notify.Notification
	sendErr error
}

// NewMockNotifier creates an empty mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetError makes subsequent Send calls fail with err.
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// Send implements notify.Notifier.
func (m *MockNotifier) Send(n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, n)
	return nil
}

// Sent returns a copy of every captured notification.
func (m *MockNotifier) Sent() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Notification, len(m.sent))
	copy(out, m.sent)
	return out
}
