// Package notify delivers lock and unlock notifications.
package notify

import "time"

// Notification represents a notification to be delivered.
type Notification struct {
	Title   string
	Message string
	Time    time.Time
}

// Notifier delivers notifications. Delivery is best effort; callers
// are expected to ignore errors.
type Notifier interface {
	Send(notification Notification) error
}
