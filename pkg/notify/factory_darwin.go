//go:build darwin
// +build darwin

package notify

// NewNotifier creates the platform notifier: Notification Center via
// osascript.
func NewNotifier() Notifier {
	return NewDarwinNotifier()
}
