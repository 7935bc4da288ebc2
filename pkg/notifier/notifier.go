// Package notifier provides desktop notifications for finished runs
package notifier

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/cratesweep/cratesweep/pkg/logger"
)

// SendFunc delivers one desktop notification
type SendFunc func(title, message, icon string) error

// BeepFunc plays one alert sound
type BeepFunc func(freq float64, duration int) error

// RunNotifier announces finished runs
type RunNotifier struct {
	enabled bool
	sound   bool
	send    SendFunc
	beep    BeepFunc
	logger  logger.Logger
}

// Config represents notification configuration
type Config struct {
	Enabled bool
	// Sound beeps after a failed run
	Sound bool
}

// Option configures a RunNotifier
type Option func(*RunNotifier)

// WithSender replaces the desktop backend
func WithSender(send SendFunc) Option {
	return func(n *RunNotifier) {
		n.send = send
	}
}

// WithBeeper replaces the sound backend
func WithBeeper(beep BeepFunc) Option {
	return func(n *RunNotifier) {
		n.beep = beep
	}
}

// New creates a new run notifier
func New(config Config, log logger.Logger, opts ...Option) *RunNotifier {
	n := &RunNotifier{
		enabled: config.Enabled,
		sound:   config.Sound,
		send:    beeep.Notify,
		beep:    beeep.Beep,
		logger:  log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyRunComplete announces the end of a run with its summary line
func (n *RunNotifier) NotifyRunComplete(summary string, failed bool) {
	if !n.enabled {
		return
	}

	title := "✅ cratesweep finished"
	if failed {
		title = "⚠️ cratesweep finished with failures"
	}
	n.sendNotification(title, summary)

	if failed && n.sound {
		if err := n.beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithError(err))
		}
	}
}

// NotifySetupFailure announces a run that never started
func (n *RunNotifier) NotifySetupFailure(err error) {
	if !n.enabled {
		return
	}
	n.sendNotification("❌ cratesweep setup failed", fmt.Sprintf("%v", err))
}

func (n *RunNotifier) sendNotification(title, message string) {
	if err := n.send(title, message, ""); err != nil {
		// Headless hosts have no notification daemon
		n.logger.Debug("Failed to send notification", logger.WithError(err))
		n.logger.Info(fmt.Sprintf("%s: %s", title, message))
	}
}
