package teleop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/leo-teleop/bridge/pkg/config"
	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/rover"
	"github.com/leo-teleop/bridge/pkg/safety"
	"github.com/leo-teleop/bridge/pkg/state"
)

// Session is one operator's joystick control session. It owns the session
// intent slot and the dispatch loop; the caller's receive loop acts as the
// intake sub-task by feeding Handle. Whichever side ends first, Close
// guarantees exactly one stop command before teardown completes.
type Session struct {
	intent *state.Intent
	sender rover.CommandSender
	limits config.SafetyConfig
	period time.Duration
	logger customlog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewSession creates a session with zero intent, marked connected.
func NewSession(sender rover.CommandSender, limits config.SafetyConfig, drivePeriod time.Duration, logger customlog.Logger) *Session {
	return &Session{
		intent: state.NewIntent(),
		sender: sender,
		limits: limits,
		period: drivePeriod,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the dispatch sub-task.
func (s *Session) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.dispatchLoop()
	}
}

// Handle is the intake path: it runs one inbound velocity pair through the
// safety filter and stores the result as the session intent.
func (s *Session) Handle(linear, angular float64) {
	lin := safety.Deadzone(linear, s.limits.Deadzone)
	ang := safety.Deadzone(angular, s.limits.Deadzone)
	lin, ang = safety.Clamp(lin, ang, s.limits.MaxLinear, s.limits.MaxAngular)
	s.intent.Set(lin, ang)
}

// Intent returns the current filtered intent.
func (s *Session) Intent() (linear, angular float64) {
	return s.intent.Velocity()
}

// dispatchLoop issues manual-drive commands from the latest intent at the
// drive cadence, rate-gated to the configured joystick maximum. It stops
// when the connected flag is cleared.
func (s *Session) dispatchLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	var lastSent time.Time
	for s.intent.Connected() {
		if safety.MinIntervalGate(lastSent, s.limits.JoystickMaxHz) {
			lin, ang := s.intent.Velocity()
			if err := s.sender.ManualDrive(lin, ang); err != nil {
				// Best-effort channel: log and keep driving the loop
				s.logger.Debugf("Manual drive send failed: %v", err)
			}
			lastSent = time.Now()
		}
		<-ticker.C
	}
}

// Close terminates the session: it clears the connected flag, waits for
// the dispatch sub-task to finish, then issues the stop command. Safe to
// call from any sub-task and from concurrent paths; the stop command is
// sent exactly once.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		s.intent.Disconnect()
		if s.started.Load() {
			<-s.done
		}
		if err := s.sender.Stop(); err != nil {
			s.logger.Warnf("Stop command send failed: %v", err)
		}
		s.logger.Infof("Joystick session closed, stop command issued")
	})
}
