package service

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

// Roster errors.
var (
	ErrTeamExists  = errors.New("registry: team already registered")
	ErrTeamUnknown = errors.New("registry: team not registered")
)

// TeamRegistry owns the roster of participating teams. Like the
// ledger, it relies on the engine lock for serialization.
type TeamRegistry struct {
	teams map[int]*domain.Team
}

// NewTeamRegistry creates an empty roster.
func NewTeamRegistry() *TeamRegistry {
	return &TeamRegistry{teams: make(map[int]*domain.Team)}
}

// Add registers a team number.
func (r *TeamRegistry) Add(number int) error {
	if _, ok := r.teams[number]; ok {
		return ErrTeamExists
	}
	r.teams[number] = domain.NewTeam(number)
	return nil
}

// Remove unregisters a team number.
func (r *TeamRegistry) Remove(number int) error {
	if _, ok := r.teams[number]; !ok {
		return ErrTeamUnknown
	}
	delete(r.teams, number)
	return nil
}

// Get looks up a team by number.
func (r *TeamRegistry) Get(number int) (*domain.Team, bool) {
	t, ok := r.teams[number]
	return t, ok
}

// Len returns the roster size.
func (r *TeamRegistry) Len() int {
	return len(r.teams)
}

// UpdatePosition overwrites a team's telemetry. Unknown teams are
// logged and skipped so one bad entry cannot abort a batch.
func (r *TeamRegistry) UpdatePosition(number int, pos domain.Point, now time.Time) {
	team, ok := r.teams[number]
	if !ok {
		log.Printf("registry: position update for unknown team %d", number)
		return
	}
	team.Pos = pos
	team.LastPosUpdate = now
}

// Snapshot serializes the roster ordered by team number.
func (r *TeamRegistry) Snapshot() []domain.TeamView {
	views := make([]domain.TeamView, 0, len(r.teams))
	for _, team := range r.teams {
		views = append(views, team.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Number < views[j].Number })
	return views
}

// Standings ranks teams by money, reputation breaking ties.
func (r *TeamRegistry) Standings() []domain.TeamStanding {
	standings := make([]domain.TeamStanding, 0, len(r.teams))
	for _, team := range r.teams {
		standings = append(standings, domain.TeamStanding{
			Number:     team.Number,
			Money:      team.Money,
			Reputation: team.Reputation,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Money != standings[j].Money {
			return standings[i].Money > standings[j].Money
		}
		if standings[i].Reputation != standings[j].Reputation {
			return standings[i].Reputation > standings[j].Reputation
		}
		return standings[i].Number < standings[j].Number
	})
	return standings
}
