package domain

import "time"

// Team is a registered participant. Teams are created and removed only
// by operator roster actions, never implicitly by gameplay traffic.
type Team struct {
	Number     int
	Money      float64
	Reputation int

	// CurrentFare is the ledger index of the fare the team holds, nil
	// when the team has no claim.
	CurrentFare *int

	Pos           Point
	LastPosUpdate time.Time
	LastStatus    time.Time
}

// NewTeam creates a team with a fresh score.
func NewTeam(number int) *Team {
	return &Team{Number: number}
}

// PositionUpdate is one entry of a batched telemetry update.
type PositionUpdate struct {
	Team int     `json:"team"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// TeamView is the dashboard serialization of a team.
type TeamView struct {
	Number        int       `json:"number"`
	Money         float64   `json:"money"`
	Reputation    int       `json:"rep"`
	CurrentFare   *int      `json:"currentFare"`
	Position      Point     `json:"position"`
	LastPosUpdate time.Time `json:"lastPosUpdate"`
	LastStatus    time.Time `json:"lastStatus"`
}

// View serializes the team for dashboards.
func (t *Team) View() TeamView {
	return TeamView{
		Number:        t.Number,
		Money:         t.Money,
		Reputation:    t.Reputation,
		CurrentFare:   t.CurrentFare,
		Position:      t.Pos,
		LastPosUpdate: t.LastPosUpdate,
		LastStatus:    t.LastStatus,
	}
}
