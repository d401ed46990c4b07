//go:build darwin
// +build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// DarwinNotifier posts user notifications through osascript so they
// appear in Notification Center without any bundling requirements.
type DarwinNotifier struct {
	cmdExecutor func(name string, args ...string) ([]byte, error)
}

// NewDarwinNotifier creates a new Darwin (macOS) notifier.
func NewDarwinNotifier() *DarwinNotifier {
	return &DarwinNotifier{cmdExecutor: defaultDarwinCmdExecutor}
}

// defaultDarwinCmdExecutor executes a command and returns its output.
func defaultDarwinCmdExecutor(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

// Send posts the notification via osascript.
func (n *DarwinNotifier) Send(notification Notification) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(notification.Message),
		escapeAppleScript(notification.Title))

	if _, err := n.cmdExecutor("osascript", "-e", script); err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	return nil
}

// escapeAppleScript neutralizes characters that would end the quoted
// AppleScript string early.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
