package service

import (
	"errors"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

// Claim and lifecycle errors surfaced to callers as messages, never as
// faults.
var (
	ErrFareNotFound = errors.New("ledger: no fare at that index")
	ErrFareInactive = errors.New("ledger: fare is no longer active")
	ErrFareClaimed  = errors.New("ledger: fare is already claimed")
	ErrTeamBusy     = errors.New("ledger: team already has a fare")
)

// RetiredFare pairs a fare with its ledger index for audit records.
type RetiredFare struct {
	Index int
	Fare  *domain.Fare
}

// FareLedger owns the fare list and its lifecycle. Fares are appended
// only; an index, once assigned, addresses the same fare for the life
// of the process, which is what makes index-addressed claiming safe.
//
// The ledger has no lock of its own; every method is called with the
// engine lock held.
type FareLedger struct {
	fares       []*domain.Fare
	gen         *FareGenerator
	targetCount int
}

// NewFareLedger creates an empty ledger replenished by gen.
func NewFareLedger(gen *FareGenerator, targetCount int) *FareLedger {
	return &FareLedger{gen: gen, targetCount: targetCount}
}

// Get returns the fare at idx.
func (l *FareLedger) Get(idx int) (*domain.Fare, bool) {
	if idx < 0 || idx >= len(l.fares) {
		return nil, false
	}
	return l.fares[idx], true
}

// Len returns the total fare count, active and retired.
func (l *FareLedger) Len() int {
	return len(l.fares)
}

// ActiveCount returns the number of fares still on the board.
func (l *FareLedger) ActiveCount() int {
	n := 0
	for _, f := range l.fares {
		if f.IsActive {
			n++
		}
	}
	return n
}

// Claim reserves the fare at idx for a team. Only the first claim on a
// fare succeeds; a team may hold at most one fare at a time.
func (l *FareLedger) Claim(idx int, team *domain.Team, now time.Time) error {
	fare, ok := l.Get(idx)
	if !ok {
		return ErrFareNotFound
	}
	if !fare.IsActive {
		return ErrFareInactive
	}
	if fare.Claimed() {
		return ErrFareClaimed
	}
	if team.CurrentFare != nil {
		return ErrTeamBusy
	}
	claimed := now
	fare.Claimant = team
	fare.ClaimedAt = &claimed
	i := idx
	team.CurrentFare = &i
	return nil
}

// Advance runs the pickup/dropoff sub-machine for every claimed active
// fare against the claimant's last known position. It returns the
// fares completed this tick.
func (l *FareLedger) Advance(now time.Time) []RetiredFare {
	var completed []RetiredFare
	for idx, fare := range l.fares {
		if !fare.IsActive || !fare.Claimed() {
			continue
		}
		team := fare.Claimant
		switch fare.Phase {
		case domain.PhaseWaiting:
			if team.Pos.Dist(fare.Src) <= domain.PositionTolerance {
				start := now
				fare.PickupStart = &start
				fare.Phase = domain.PhasePickingUp
			}
		case domain.PhasePickingUp:
			if team.Pos.Dist(fare.Src) > domain.PositionTolerance {
				// Left the pickup point before the passenger boarded.
				fare.PickupStart = nil
				fare.Phase = domain.PhaseWaiting
			} else if now.Sub(*fare.PickupStart) >= domain.PickupDuration {
				fare.Phase = domain.PhaseEnroute
			}
		case domain.PhaseEnroute:
			if team.Pos.Dist(fare.Dest) <= domain.PositionTolerance {
				l.complete(fare, now)
				completed = append(completed, RetiredFare{Index: idx, Fare: fare})
			}
		}
	}
	return completed
}

// complete pays out a delivered fare and retires it.
func (l *FareLedger) complete(fare *domain.Fare, now time.Time) {
	money, rep := fare.Expectation()
	team := fare.Claimant
	team.Money += money
	team.Reputation += rep
	team.CurrentFare = nil

	done := now
	fare.Payout = money
	fare.Completed = &done
	fare.Phase = domain.PhaseDone
	fare.IsActive = false
}

// Expire retires fares whose lifetime or claim window has lapsed and
// returns them. A retired fare is never reactivated; replenishment
// mints a replacement on a later tick.
func (l *FareLedger) Expire(now time.Time) []RetiredFare {
	var expired []RetiredFare
	for idx, fare := range l.fares {
		if !fare.IsActive {
			continue
		}
		lapsed := false
		if !fare.Claimed() {
			lapsed = now.Sub(fare.Created) >= domain.FareLifetime
		} else if fare.Phase == domain.PhaseWaiting {
			lapsed = now.Sub(*fare.ClaimedAt) >= domain.ClaimWindow
		}
		if !lapsed {
			continue
		}
		if fare.Claimant != nil {
			fare.Claimant.CurrentFare = nil
		}
		closed := now
		fare.Completed = &closed
		fare.Phase = domain.PhaseExpired
		fare.IsActive = false
		expired = append(expired, RetiredFare{Index: idx, Fare: fare})
	}
	return expired
}

// Replenish appends generated fares until the active count reaches the
// target or a generation attempt fails. A failed attempt ends the tick;
// there is no retry loop here beyond the generator's own budget.
func (l *FareLedger) Replenish(now time.Time) {
	for l.ActiveCount() < l.targetCount {
		fare, ok := l.gen.Generate(l.fares, now)
		if !ok {
			return
		}
		l.fares = append(l.fares, fare)
	}
}

// Snapshot serializes the ledger in insertion order.
func (l *FareLedger) Snapshot(extended, includeInactive bool) []domain.FareView {
	views := make([]domain.FareView, 0, len(l.fares))
	for idx, fare := range l.fares {
		if !fare.IsActive && !includeInactive {
			continue
		}
		views = append(views, fare.View(idx, extended))
	}
	return views
}
