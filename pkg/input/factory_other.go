//go:build !darwin
// +build !darwin

package input

import "fmt"

// NewSource returns a stub source for unsupported platforms. Register
// always fails, which callers treat the same as a permission denial,
// so the pure matching and blocking logic stays testable everywhere.
func NewSource() Source {
	return stubSource{}
}

// NewCursor returns a stub cursor for unsupported platforms.
func NewCursor() Cursor {
	return stubCursor{}
}

type stubSource struct{}

func (stubSource) Register(Class, Handler) (Handle, error) {
	return 0, fmt.Errorf("input hooks are not supported on this platform")
}

func (stubSource) Unregister(Handle) error {
	return nil
}

type stubCursor struct{}

func (stubCursor) Position() (Point, error) {
	return Point{}, fmt.Errorf("cursor control is not supported on this platform")
}

func (stubCursor) MoveTo(Point) error {
	return fmt.Errorf("cursor control is not supported on this platform")
}
