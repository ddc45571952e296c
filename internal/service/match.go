package service

import (
	"errors"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

// Match state-machine errors.
var (
	ErrMatchNotConfigured = errors.New("match: not configured")
	ErrMatchNotCancelable = errors.New("match: nothing to cancel")
)

// MatchController owns match configuration and timing. Serialized by
// the engine lock.
type MatchController struct {
	state     domain.MatchState
	number    int
	duration  time.Duration
	startedAt time.Time
	endTime   time.Time
}

// NewMatchController starts unconfigured.
func NewMatchController() *MatchController {
	return &MatchController{state: domain.MatchUnconfigured}
}

// Configure sets the match number and duration. Valid from any state:
// configuring implicitly cancels whatever came before.
func (m *MatchController) Configure(number int, duration time.Duration) {
	m.state = domain.MatchConfigured
	m.number = number
	m.duration = duration
	m.startedAt = time.Time{}
	m.endTime = time.Time{}
}

// Start begins a configured match, computing the absolute end time.
func (m *MatchController) Start(now time.Time) error {
	if m.state != domain.MatchConfigured {
		return ErrMatchNotConfigured
	}
	m.startedAt = now
	m.endTime = now.Add(m.duration)
	m.state = domain.MatchRunning
	return nil
}

// Cancel aborts a configured or running match and resets timing.
func (m *MatchController) Cancel() error {
	if m.state != domain.MatchConfigured && m.state != domain.MatchRunning {
		return ErrMatchNotCancelable
	}
	m.state = domain.MatchUnconfigured
	m.startedAt = time.Time{}
	m.endTime = time.Time{}
	return nil
}

// Tick checks the match timer. It reports true on the single tick that
// transitions RUNNING to ENDED; later ticks do nothing.
func (m *MatchController) Tick(now time.Time) bool {
	if m.state == domain.MatchRunning && !now.Before(m.endTime) {
		m.state = domain.MatchEnded
		return true
	}
	return false
}

// State returns the current match state.
func (m *MatchController) State() domain.MatchState {
	return m.state
}

// Number returns the configured match number.
func (m *MatchController) Number() int {
	return m.number
}

// Duration returns the configured match length.
func (m *MatchController) Duration() time.Duration {
	return m.duration
}

// StartedAt returns when the match started, zero if it has not.
func (m *MatchController) StartedAt() time.Time {
	return m.startedAt
}

// Started reports whether the match has begun. It stays true after the
// match ends; clients detect the end through TimeRemain going negative.
func (m *MatchController) Started() bool {
	return m.state == domain.MatchRunning || m.state == domain.MatchEnded
}

// TimeRemain returns seconds left on the clock. Negative once the
// match is over; the full duration while configured but not started.
func (m *MatchController) TimeRemain(now time.Time) float64 {
	switch m.state {
	case domain.MatchRunning, domain.MatchEnded:
		return m.endTime.Sub(now).Seconds()
	case domain.MatchConfigured:
		return m.duration.Seconds()
	default:
		return 0
	}
}
