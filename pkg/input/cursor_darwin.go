//go:build darwin
// +build darwin

package input

import "github.com/go-vgo/robotgo"

// systemCursor reads and repositions the real pointer through robotgo.
type systemCursor struct{}

// Position returns the current pointer coordinate.
func (systemCursor) Position() (Point, error) {
	x, y := robotgo.GetMousePos()
	return Point{X: float64(x), Y: float64(y)}, nil
}

// MoveTo warps the pointer to p.
func (systemCursor) MoveTo(p Point) error {
	robotgo.Move(int(p.X), int(p.Y))
	return nil
}
