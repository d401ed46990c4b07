package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/cleankeys/cleankeys/pkg/blocker"
	"github.com/cleankeys/cleankeys/pkg/config"
	"github.com/cleankeys/cleankeys/pkg/input"
	"github.com/cleankeys/cleankeys/pkg/notify"
	"github.com/cleankeys/cleankeys/pkg/status"
	"github.com/cleankeys/cleankeys/pkg/unlock"
)

// Dependencies holds all the dependencies for the application.
type Dependencies struct {
	Config    *config.Config
	Source    input.Source
	Cursor    input.Cursor
	Blocker   *blocker.Blocker
	Detector  *unlock.Detector
	Notifier  notify.Notifier
	Indicator *status.Indicator
	Reporter  *status.Reporter
	stopChan  chan struct{}
}

// NewDependencies creates all dependencies with the given configuration.
func NewDependencies(cfg *config.Config) *Dependencies {
	deps := &Dependencies{
		Config:   cfg,
		stopChan: make(chan struct{}),
	}

	deps.Source = input.NewSource()
	deps.Cursor = input.NewCursor()
	deps.Blocker = blocker.New(deps.Source, deps.Cursor)
	deps.Detector = unlock.New(deps.Source, cfg.Trigger(), cfg.DoublePressWindow)
	deps.Notifier = notify.NewNotifier()

	// The status line only makes sense on a terminal.
	statusEnabled := term.IsTerminal(int(os.Stderr.Fd())) && !cfg.Quiet
	deps.Indicator = status.NewIndicator(os.Stderr, statusEnabled)
	deps.Reporter = status.NewReporter(deps.Indicator)

	// Keep the banner visible even if something clears the screen.
	deps.Indicator.StartAutoRefresh(deps.stopChan)

	return deps
}

// Close cleans up all dependencies.
func (d *Dependencies) Close() {
	if d.stopChan != nil {
		select {
		case <-d.stopChan:
			// Already closed
		default:
			close(d.stopChan)
		}
		d.stopChan = nil
	}

	if d.Indicator != nil {
		_ = d.Indicator.Clear() // Best effort
	}
}

// Application drives one lock session: block input, wait for the
// unlock trigger, release.
type Application struct {
	deps     *Dependencies
	unlockCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewApplication creates a new application with the given dependencies.
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps:     deps,
		unlockCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Run locks input in the given mode and blocks until the unlock
// trigger fires or Stop is called. All lock-state changes happen on
// this goroutine; the detector only ever signals into unlockCh.
func (a *Application) Run(mode blocker.Mode) error {
	d := a.deps

	d.Detector.Notify(func() {
		select {
		case a.unlockCh <- struct{}{}:
		default:
		}
	})

	if err := d.Detector.Start(); err != nil {
		return fmt.Errorf("cannot watch for the unlock trigger: %w", err)
	}
	defer d.Detector.Stop()

	d.Blocker.Start(mode)
	if !d.Blocker.Active() {
		return fmt.Errorf("input hook could not be established; grant cleankeys " +
			"input monitoring permission (System Settings > Privacy & Security) and try again")
	}
	defer d.Blocker.Stop()

	d.Reporter.Locked(mode, d.Detector.Description())

	select {
	case <-a.unlockCh:
	case <-a.stopCh:
	}

	d.Blocker.Stop()
	d.Reporter.Unlocked()

	if d.Config.NotifyOnUnlock && !d.Config.Quiet {
		_ = d.Notifier.Send(notify.Notification{
			Title:   "cleankeys",
			Message: fmt.Sprintf("%s input unlocked", mode),
			Time:    time.Now(),
		})
	}

	return nil
}

// Stop releases the lock and ends Run. Safe to call more than once.
func (a *Application) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
}
