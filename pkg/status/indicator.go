// Package status renders the lock state on the controlling terminal so
// the user always sees why their input is not working and how to get
// it back.
package status

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Indicator manages the lock status line in the terminal.
type Indicator struct {
	mu      sync.Mutex
	enabled bool
	writer  io.Writer
	message string
}

// NewIndicator creates a new status indicator.
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{writer: writer, enabled: enabled}
}

// SetMessage replaces the status line and redraws it.
func (i *Indicator) SetMessage(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.message = message
	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// draw renders the status line on the last terminal row.
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil || i.message == "" {
		return nil
	}

	// DEC save/restore cursor (\0337/\0338) is more widely supported
	// than the standard \033[s/\033[u pair. Reset the scroll region,
	// jump to the last line (999 clamps), clear it, write the status,
	// then put the cursor back.
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", i.message)

	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}
	return nil
}

// Clear removes the status line.
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.message = ""
	if !i.enabled || i.writer == nil {
		return nil
	}

	sequence := "\0337\033[999;1H\033[2K\0338"
	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}
	return nil
}

// Message returns the current status line text.
func (i *Indicator) Message() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.message
}

// StartAutoRefresh starts a goroutine that periodically redraws the
// status line, so it survives screen clears by other programs sharing
// the terminal.
func (i *Indicator) StartAutoRefresh(stopChan <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.mu.Lock()
				_ = i.draw() // Best effort
				i.mu.Unlock()
			case <-stopChan:
				_ = i.Clear() // Best effort
				return
			}
		}
	}()
}
