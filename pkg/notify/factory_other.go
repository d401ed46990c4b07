//go:build !darwin
// +build !darwin

package notify

// NewNotifier creates a stdout notifier on platforms without a native
// notification channel.
func NewNotifier() Notifier {
	return NewStdoutNotifier()
}
