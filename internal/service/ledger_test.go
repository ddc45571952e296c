package service

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

func testFare(src, dest domain.Point, created time.Time) *domain.Fare {
	return &domain.Fare{
		Src:      src,
		Dest:     dest,
		Type:     domain.FareNormal,
		IsActive: true,
		Phase:    domain.PhaseWaiting,
		Created:  created,
	}
}

func newTestLedger(fares ...*domain.Fare) *FareLedger {
	l := NewFareLedger(newTestGenerator(7), domain.DefaultTargetFares)
	l.fares = fares
	return l
}

func TestClaim(t *testing.T) {
	now := time.Now()
	fare := testFare(domain.Point{X: 0, Y: 0}, domain.Point{X: 5, Y: 0}, now)
	l := newTestLedger(fare)
	team := domain.NewTeam(7)

	if err := l.Claim(0, team, now); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if fare.Claimant != team {
		t.Error("claim did not record the claimant")
	}
	if team.CurrentFare == nil || *team.CurrentFare != 0 {
		t.Error("claim did not record the team's current fare")
	}

	rival := domain.NewTeam(8)
	if err := l.Claim(0, rival, now); !errors.Is(err, ErrFareClaimed) {
		t.Errorf("second claim returned %v, want ErrFareClaimed", err)
	}
	if rival.CurrentFare != nil {
		t.Error("failed claim must not assign a fare to the rival")
	}
}

func TestClaimErrors(t *testing.T) {
	now := time.Now()
	inactive := testFare(domain.Point{X: 0, Y: 0}, domain.Point{X: 5, Y: 0}, now)
	inactive.IsActive = false
	active := testFare(domain.Point{X: 0, Y: 5}, domain.Point{X: 5, Y: 5}, now)
	l := newTestLedger(inactive, active)

	team := domain.NewTeam(7)
	if err := l.Claim(99, team, now); !errors.Is(err, ErrFareNotFound) {
		t.Errorf("out-of-range claim returned %v, want ErrFareNotFound", err)
	}
	if err := l.Claim(-1, team, now); !errors.Is(err, ErrFareNotFound) {
		t.Errorf("negative-index claim returned %v, want ErrFareNotFound", err)
	}
	if err := l.Claim(0, team, now); !errors.Is(err, ErrFareInactive) {
		t.Errorf("inactive claim returned %v, want ErrFareInactive", err)
	}

	if err := l.Claim(1, team, now); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	other := testFare(domain.Point{X: 1, Y: 1}, domain.Point{X: 4, Y: 4}, now)
	l.fares = append(l.fares, other)
	if err := l.Claim(2, team, now); !errors.Is(err, ErrTeamBusy) {
		t.Errorf("double-booked team claim returned %v, want ErrTeamBusy", err)
	}
}

func TestExpireUnclaimedLifetime(t *testing.T) {
	created := time.Now()
	fare := testFare(domain.Point{X: 0, Y: 0}, domain.Point{X: 5, Y: 0}, created)
	l := newTestLedger(fare)

	if expired := l.Expire(created.Add(domain.FareLifetime - time.Second)); len(expired) != 0 {
		t.Fatalf("fare expired early: %v", expired)
	}

	expired := l.Expire(created.Add(domain.FareLifetime))
	if len(expired) != 1 || expired[0].Index != 0 {
		t.Fatalf("expected fare 0 to expire, got %v", expired)
	}
	if fare.IsActive {
		t.Error("expired fare still active")
	}
	if fare.Phase != domain.PhaseExpired {
		t.Errorf("expired fare in phase %v", fare.Phase)
	}

	// Never reactivated, never reported twice.
	if again := l.Expire(created.Add(2 * domain.FareLifetime)); len(again) != 0 {
		t.Errorf("second expire pass reported %v", again)
	}
}

func TestExpireLapsedClaim(t *testing.T) {
	now := time.Now()
	fare := testFare(domain.Point{X: 0, Y: 0}, domain.Point{X: 5, Y: 0}, now)
	l := newTestLedger(fare)
	team := domain.NewTeam(7)

	if err := l.Claim(0, team, now); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	expired := l.Expire(now.Add(domain.ClaimWindow))
	if len(expired) != 1 {
		t.Fatalf("expected lapsed claim to expire, got %v", expired)
	}
	if team.CurrentFare != nil {
		t.Error("expiry must release the team's current fare")
	}
}

func TestAdvanceLifecycle(t *testing.T) {
	now := time.Now()
	src := domain.Point{X: 0, Y: 0}
	dest := domain.Point{X: 5, Y: 0}
	fare := testFare(src, dest, now)
	l := newTestLedger(fare)
	team := domain.NewTeam(7)

	if err := l.Claim(0, team, now); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	// Team far from pickup: nothing happens.
	team.Pos = domain.Point{X: 3, Y: 3}
	l.Advance(now)
	if fare.Phase != domain.PhaseWaiting {
		t.Fatalf("phase = %v before reaching pickup", fare.Phase)
	}

	// Arrive at pickup: dwell starts.
	team.Pos = domain.Point{X: 0.05, Y: 0}
	l.Advance(now)
	if fare.Phase != domain.PhasePickingUp {
		t.Fatalf("phase = %v at pickup, want PICKING_UP", fare.Phase)
	}

	// Drift away before the dwell completes: back to waiting.
	team.Pos = domain.Point{X: 1, Y: 1}
	l.Advance(now.Add(time.Second))
	if fare.Phase != domain.PhaseWaiting {
		t.Fatalf("phase = %v after leaving pickup, want WAITING", fare.Phase)
	}

	// Return and dwell the full duration: passenger boards.
	team.Pos = src
	l.Advance(now.Add(2 * time.Second))
	l.Advance(now.Add(2*time.Second + domain.PickupDuration))
	if fare.Phase != domain.PhaseEnroute {
		t.Fatalf("phase = %v after dwell, want ENROUTE", fare.Phase)
	}

	// Arrive at dropoff: fare completes and pays out.
	team.Pos = dest
	completed := l.Advance(now.Add(time.Minute))
	if len(completed) != 1 || completed[0].Index != 0 {
		t.Fatalf("expected completion of fare 0, got %v", completed)
	}

	wantMoney, wantRep := fare.Expectation()
	if team.Money != wantMoney {
		t.Errorf("team money = %.2f, want %.2f", team.Money, wantMoney)
	}
	if team.Reputation != wantRep {
		t.Errorf("team reputation = %d, want %d", team.Reputation, wantRep)
	}
	if team.CurrentFare != nil {
		t.Error("completed fare still assigned to team")
	}
	if fare.IsActive || fare.Phase != domain.PhaseDone {
		t.Errorf("completed fare active=%v phase=%v", fare.IsActive, fare.Phase)
	}
	if fare.Payout != wantMoney {
		t.Errorf("fare payout = %.2f, want %.2f", fare.Payout, wantMoney)
	}
}

func TestReplenishReachesTarget(t *testing.T) {
	l := NewFareLedger(newTestGenerator(11), 5)

	// A single tick may stop short on a failed generation; the target
	// must be reached across a few ticks and never overshot.
	now := time.Now()
	for i := 0; i < 50 && l.ActiveCount() < 5; i++ {
		l.Replenish(now)
		if got := l.ActiveCount(); got > 5 {
			t.Fatalf("active count overshot target: %d", got)
		}
	}
	if got := l.ActiveCount(); got != 5 {
		t.Fatalf("active count after replenish ticks = %d, want 5", got)
	}
}

func TestReplenishStopsOnGenerationFailure(t *testing.T) {
	// A spawn set with no legal pairing: replenish must give up for
	// the tick instead of looping forever.
	points := []domain.SpawnPoint{
		{Point: domain.Point{X: 0, Y: 0}, Biases: domain.DefaultBias()},
		{Point: domain.Point{X: 0.1, Y: 0}, Biases: domain.DefaultBias()},
	}
	gen := NewFareGenerator(GeneratorConfig{
		SpawnPoints: points,
		DistMin:     2.5,
		DistMax:     999,
		TargetFares: 8,
		Merge:       domain.MergeAverage,
	}, rand.New(rand.NewSource(1)))
	l := NewFareLedger(gen, 8)

	done := make(chan struct{})
	go func() {
		l.Replenish(time.Now())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Replenish did not return after generation failure")
	}
	if got := l.ActiveCount(); got != 0 {
		t.Fatalf("active count = %d, want 0", got)
	}
}

func TestSnapshotOrderAndIndexStability(t *testing.T) {
	l := NewFareLedger(newTestGenerator(13), 4)
	now := time.Now()
	for i := 0; i < 50 && l.ActiveCount() < 4; i++ {
		l.Replenish(now)
	}

	before := l.Snapshot(false, true)
	if len(before) != 4 {
		t.Fatalf("snapshot has %d fares, want 4", len(before))
	}

	// Retire everything and replenish again: old indices must still
	// address the same fares.
	l.Expire(now.Add(domain.FareLifetime))
	for i := 0; i < 50 && l.ActiveCount() < 4; i++ {
		l.Replenish(now.Add(domain.FareLifetime))
	}

	after := l.Snapshot(false, true)
	if len(after) != 8 {
		t.Fatalf("snapshot has %d fares after churn, want 8", len(after))
	}
	for i, old := range before {
		if after[i].ID != old.ID || after[i].Src != old.Src || after[i].Dest != old.Dest {
			t.Fatalf("fare %d changed identity across snapshots: %+v vs %+v", i, old, after[i])
		}
		if after[i].Active {
			t.Errorf("fare %d should be retired", i)
		}
	}

	// Active-only snapshot hides retired fares but keeps ledger ids.
	activeOnly := l.Snapshot(false, false)
	if len(activeOnly) != 4 {
		t.Fatalf("active snapshot has %d fares, want 4", len(activeOnly))
	}
	for _, v := range activeOnly {
		if v.ID < 4 {
			t.Errorf("active snapshot contains retired fare id %d", v.ID)
		}
	}
}
