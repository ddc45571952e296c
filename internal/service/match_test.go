package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

func TestMatchLifecycle(t *testing.T) {
	m := NewMatchController()
	if m.State() != domain.MatchUnconfigured {
		t.Fatalf("initial state = %v", m.State())
	}

	m.Configure(7, 120*time.Second)
	if m.State() != domain.MatchConfigured || m.Number() != 7 {
		t.Fatalf("after configure: state=%v number=%d", m.State(), m.Number())
	}

	start := time.Now()
	if err := m.Start(start); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != domain.MatchRunning {
		t.Fatalf("after start: state=%v", m.State())
	}
	if remain := m.TimeRemain(start); remain != 120 {
		t.Errorf("TimeRemain at start = %.1f, want 120", remain)
	}

	// End time = start + duration; one second past it ends the match.
	if ended := m.Tick(start.Add(119 * time.Second)); ended {
		t.Error("match ended before the clock ran out")
	}
	if ended := m.Tick(start.Add(121 * time.Second)); !ended {
		t.Error("match did not end after the clock ran out")
	}
	if m.State() != domain.MatchEnded {
		t.Fatalf("after tick past end: state=%v", m.State())
	}

	// Idempotent: a later tick reports no transition.
	if ended := m.Tick(start.Add(200 * time.Second)); ended {
		t.Error("second tick after ending reported another transition")
	}
	if m.State() != domain.MatchEnded {
		t.Errorf("state changed after idempotent tick: %v", m.State())
	}

	if remain := m.TimeRemain(start.Add(130 * time.Second)); remain >= 0 {
		t.Errorf("TimeRemain after end = %.1f, want negative", remain)
	}
}

func TestMatchStartRequiresConfigure(t *testing.T) {
	m := NewMatchController()
	if err := m.Start(time.Now()); !errors.Is(err, ErrMatchNotConfigured) {
		t.Errorf("Start from UNCONFIGURED returned %v, want ErrMatchNotConfigured", err)
	}

	m.Configure(1, time.Minute)
	if err := m.Start(time.Now()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(time.Now()); !errors.Is(err, ErrMatchNotConfigured) {
		t.Errorf("Start while RUNNING returned %v, want ErrMatchNotConfigured", err)
	}
}

func TestMatchConfigureWhileRunningResets(t *testing.T) {
	m := NewMatchController()
	m.Configure(1, time.Minute)
	if err := m.Start(time.Now()); err != nil {
		t.Fatal(err)
	}

	m.Configure(2, 2*time.Minute)
	if m.State() != domain.MatchConfigured {
		t.Errorf("configure while running left state %v", m.State())
	}
	if m.Started() {
		t.Error("configure must clear the started flag")
	}
	if m.Number() != 2 {
		t.Errorf("number = %d, want 2", m.Number())
	}
}

func TestMatchCancel(t *testing.T) {
	m := NewMatchController()
	if err := m.Cancel(); !errors.Is(err, ErrMatchNotCancelable) {
		t.Errorf("Cancel from UNCONFIGURED returned %v", err)
	}

	m.Configure(1, time.Minute)
	if err := m.Cancel(); err != nil {
		t.Fatalf("Cancel from CONFIGURED failed: %v", err)
	}
	if m.State() != domain.MatchUnconfigured {
		t.Errorf("state after cancel = %v", m.State())
	}

	m.Configure(1, time.Minute)
	if err := m.Start(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := m.Cancel(); err != nil {
		t.Fatalf("Cancel from RUNNING failed: %v", err)
	}
	if m.State() != domain.MatchUnconfigured {
		t.Errorf("state after cancel = %v", m.State())
	}
}
