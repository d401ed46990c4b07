//go:build darwin
// +build darwin

package input

// NewSource returns the process-wide event tap source.
func NewSource() Source {
	return sharedTap
}

// NewCursor returns the real pointer controller.
func NewCursor() Cursor {
	return systemCursor{}
}
