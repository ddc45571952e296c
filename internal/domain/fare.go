package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FareType categorizes a fare for payout and generation bias.
type FareType int

const (
	FareNormal FareType = iota
	FareSubsidized
	FareSenior
)

// AllFareTypes lists every fare type in a fixed order.
var AllFareTypes = []FareType{FareNormal, FareSubsidized, FareSenior}

func (t FareType) String() string {
	switch t {
	case FareNormal:
		return "NORMAL"
	case FareSubsidized:
		return "SUBSIDIZED"
	case FareSenior:
		return "SENIOR"
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the fare type as its name.
func (t FareType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a fare type from its name.
func (t *FareType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, ft := range AllFareTypes {
		if ft.String() == s {
			*t = ft
			return nil
		}
	}
	return fmt.Errorf("unknown fare type %q", s)
}

// FarePhase is the progress of a claimed fare through its lifecycle.
type FarePhase int

const (
	// PhaseWaiting means the fare is on the board, claimed or not,
	// with no pickup in progress.
	PhaseWaiting FarePhase = iota
	// PhasePickingUp means the claiming team is dwelling at the pickup point.
	PhasePickingUp
	// PhaseEnroute means the passenger is aboard and heading to the dropoff.
	PhaseEnroute
	// PhaseDone means the fare completed and paid out.
	PhaseDone
	// PhaseExpired means the fare lapsed before completion.
	PhaseExpired
)

func (p FarePhase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhasePickingUp:
		return "PICKING_UP"
	case PhaseEnroute:
		return "ENROUTE"
	case PhaseDone:
		return "DONE"
	case PhaseExpired:
		return "EXPIRED"
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the phase as its name.
func (p FarePhase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Fare is a single transport job. Its identity is its index in the
// ledger, which is stable for the life of the process.
type Fare struct {
	Src  Point
	Dest Point
	Type FareType

	// IsActive is true while the fare is on the board. Once it flips
	// false the fare is never reactivated.
	IsActive bool
	Phase    FarePhase

	// Claimant is the team holding the claim, nil while unclaimed.
	Claimant *Team

	Created     time.Time
	ClaimedAt   *time.Time
	PickupStart *time.Time
	Completed   *time.Time

	// Payout is the money awarded on completion, zero until then.
	Payout float64
}

// Claimed reports whether any team holds this fare.
func (f *Fare) Claimed() bool {
	return f.Claimant != nil
}

// FareView is the serialized form of a fare. Extended fields are only
// populated for dashboard/operator queries.
type FareView struct {
	ID         int      `json:"id"`
	Src        Point    `json:"src"`
	Dest       Point    `json:"dest"`
	Type       FareType `json:"type"`
	Claimed    bool     `json:"claimed"`
	Active     bool     `json:"active"`
	Pay        float64  `json:"pay"`
	Reputation int      `json:"reputation"`

	// Extended (dashboard) fields.
	Phase     string     `json:"phase,omitempty"`
	ClaimedBy *int       `json:"claimedBy,omitempty"`
	Created   *time.Time `json:"created,omitempty"`
	ClaimedAt *time.Time `json:"claimedAt,omitempty"`
	Completed *time.Time `json:"completed,omitempty"`
	Paid      *float64   `json:"paid,omitempty"`
}

// Expectation returns the advertised payout and reputation reward for
// completing this fare, based on its type and route distance.
func (f *Fare) Expectation() (money float64, reputation int) {
	dist := f.Src.Dist(f.Dest)
	switch f.Type {
	case FareSubsidized:
		return BaseFare + dist*DistFareSubsidized, ReputationSubsidized
	case FareSenior:
		return BaseFare + dist*DistFareSenior, ReputationSenior
	default:
		return BaseFare + dist*DistFareNormal, ReputationNormal
	}
}

// View serializes the fare at a given ledger index.
func (f *Fare) View(id int, extended bool) FareView {
	pay, rep := f.Expectation()
	v := FareView{
		ID:         id,
		Src:        f.Src,
		Dest:       f.Dest,
		Type:       f.Type,
		Claimed:    f.Claimed(),
		Active:     f.IsActive,
		Pay:        pay,
		Reputation: rep,
	}
	if extended {
		v.Phase = f.Phase.String()
		if f.Claimant != nil {
			n := f.Claimant.Number
			v.ClaimedBy = &n
		}
		created := f.Created
		v.Created = &created
		v.ClaimedAt = f.ClaimedAt
		v.Completed = f.Completed
		if f.Phase == PhaseDone {
			paid := f.Payout
			v.Paid = &paid
		}
	}
	return v
}
