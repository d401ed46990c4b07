package status

import (
	"fmt"

	"github.com/cleankeys/cleankeys/pkg/blocker"
)

// Reporter translates lock-state transitions into indicator updates.
type Reporter struct {
	indicator *Indicator
}

// NewReporter creates a reporter driving the given indicator.
func NewReporter(indicator *Indicator) *Reporter {
	return &Reporter{indicator: indicator}
}

// Locked shows the lock banner with the unlock hint.
func (r *Reporter) Locked(mode blocker.Mode, trigger string) {
	if r.indicator == nil {
		return
	}
	message := fmt.Sprintf("\033[33m🔒 %s locked - %s to unlock\033[0m", mode, trigger)
	r.indicator.SetMessage(message)
}

// Unlocked clears the lock banner.
func (r *Reporter) Unlocked() {
	if r.indicator == nil {
		return
	}
	_ = r.indicator.Clear()
}
