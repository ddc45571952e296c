package service

import (
	"errors"
	"testing"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

func TestRegistryAddRemove(t *testing.T) {
	r := NewTeamRegistry()

	if err := r.Add(7); err != nil {
		t.Fatalf("Add(7) failed: %v", err)
	}
	if err := r.Add(7); !errors.Is(err, ErrTeamExists) {
		t.Errorf("duplicate Add returned %v, want ErrTeamExists", err)
	}
	if r.Len() != 1 {
		t.Errorf("roster size = %d, want 1", r.Len())
	}

	if err := r.Remove(99); !errors.Is(err, ErrTeamUnknown) {
		t.Errorf("Remove of absent team returned %v, want ErrTeamUnknown", err)
	}
	if r.Len() != 1 {
		t.Error("failed Remove must not change the roster")
	}

	if err := r.Remove(7); err != nil {
		t.Fatalf("Remove(7) failed: %v", err)
	}
	if _, ok := r.Get(7); ok {
		t.Error("team 7 still present after removal")
	}
}

func TestRegistryUpdatePosition(t *testing.T) {
	r := NewTeamRegistry()
	if err := r.Add(99); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	r.UpdatePosition(99, domain.Point{X: 1.0, Y: 2.0}, now)
	// Unknown team: logged and skipped, no panic, no side effects.
	r.UpdatePosition(-1, domain.Point{}, now)

	team, ok := r.Get(99)
	if !ok {
		t.Fatal("team 99 missing")
	}
	if team.Pos != (domain.Point{X: 1.0, Y: 2.0}) {
		t.Errorf("position = %+v, want (1, 2)", team.Pos)
	}
	if !team.LastPosUpdate.Equal(now) {
		t.Error("position timestamp not recorded")
	}
}

func TestRegistrySnapshotOrdered(t *testing.T) {
	r := NewTeamRegistry()
	for _, n := range []int{12, 3, 7} {
		if err := r.Add(n); err != nil {
			t.Fatal(err)
		}
	}

	views := r.Snapshot()
	if len(views) != 3 {
		t.Fatalf("snapshot size = %d, want 3", len(views))
	}
	for i, want := range []int{3, 7, 12} {
		if views[i].Number != want {
			t.Errorf("snapshot[%d] = team %d, want %d", i, views[i].Number, want)
		}
	}
}

func TestRegistryStandings(t *testing.T) {
	r := NewTeamRegistry()
	for _, n := range []int{1, 2, 3} {
		if err := r.Add(n); err != nil {
			t.Fatal(err)
		}
	}
	t1, _ := r.Get(1)
	t2, _ := r.Get(2)
	t3, _ := r.Get(3)
	t1.Money, t1.Reputation = 50, 10
	t2.Money, t2.Reputation = 80, 5
	t3.Money, t3.Reputation = 50, 20

	standings := r.Standings()
	got := []int{standings[0].Number, standings[1].Number, standings[2].Number}
	want := []int{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("standings order = %v, want %v", got, want)
		}
	}
}
