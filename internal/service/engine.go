package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

// Config holds everything the engine needs at construction time.
type Config struct {
	Mode        domain.OperatingMode
	SpawnPoints []domain.SpawnPoint
	TargetFares int
	DistMin     float64
	DistMax     float64
	Merge       domain.MergeStrategy

	// Seed fixes the generator RNG for tests; zero means seed from
	// the clock.
	Seed int64
}

// Engine is the orchestration core: one instance owning the match
// controller, team roster, and fare ledger behind a single lock. Every
// public method acquires the lock for its whole duration; the
// components underneath never lock on their own.
type Engine struct {
	mu sync.Mutex

	mode   domain.OperatingMode
	match  *MatchController
	teams  *TeamRegistry
	ledger *FareLedger

	repo domain.AuditRepository
	wgBg sync.WaitGroup // tracks background audit writes for graceful shutdown
}

// NewEngine wires the components together. repo must not be nil; pass
// the no-op repository when there is no database.
func NewEngine(cfg Config, repo domain.AuditRepository) *Engine {
	if cfg.TargetFares <= 0 {
		cfg.TargetFares = domain.DefaultTargetFares
	}
	if cfg.DistMin == 0 && cfg.DistMax == 0 {
		cfg.DistMin = domain.DefaultDistMin
		cfg.DistMax = domain.DefaultDistMax
	}
	if len(cfg.SpawnPoints) == 0 {
		cfg.SpawnPoints = domain.DefaultSpawnPoints()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := NewFareGenerator(GeneratorConfig{
		SpawnPoints: cfg.SpawnPoints,
		DistMin:     cfg.DistMin,
		DistMax:     cfg.DistMax,
		TargetFares: cfg.TargetFares,
		Merge:       cfg.Merge,
	}, rand.New(rand.NewSource(seed)))

	return &Engine{
		mode:   cfg.Mode,
		match:  NewMatchController(),
		teams:  NewTeamRegistry(),
		ledger: NewFareLedger(gen, cfg.TargetFares),
		repo:   repo,
	}
}

// Mode returns the operating mode. Immutable after construction.
func (e *Engine) Mode() domain.OperatingMode {
	return e.mode
}

// ConfigureMatch sets up a match, implicitly cancelling any prior one.
func (e *Engine) ConfigureMatch(number int, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.match.Configure(number, duration)
	log.Printf("engine: match %d configured for %s", number, duration)
}

// StartMatch begins the configured match.
func (e *Engine) StartMatch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.match.Start(time.Now()); err != nil {
		return err
	}
	log.Printf("engine: match %d started", e.match.Number())
	return nil
}

// CancelMatch aborts the current match.
func (e *Engine) CancelMatch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.match.Cancel(); err != nil {
		return err
	}
	log.Printf("engine: match cancelled")
	return nil
}

// Tick is the periodic maintenance step: advance the match timer, run
// the fare lifecycle, expire lapsed fares, and replenish the board.
// Fare churn runs regardless of match state so practice sessions work
// without a configured match.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()

	ended := e.match.Tick(now)
	completed := e.ledger.Advance(now)
	expired := e.ledger.Expire(now)
	e.ledger.Replenish(now)

	matchNumber := e.match.Number()
	var result *domain.MatchResult
	if ended {
		result = &domain.MatchResult{
			Number:    matchNumber,
			Duration:  e.match.Duration(),
			StartedAt: e.match.StartedAt(),
			EndedAt:   now,
			Standings: e.teams.Standings(),
		}
		log.Printf("engine: match %d ended with %d teams", matchNumber, e.teams.Len())
	}

	e.mu.Unlock()

	for _, rf := range completed {
		e.auditFare(matchNumber, rf, "DONE")
	}
	for _, rf := range expired {
		e.auditFare(matchNumber, rf, "EXPIRED")
	}
	if result != nil {
		e.auditMatch(*result)
	}
}

// AddTeam registers a team. Roster changes are operator actions; the
// transport layer decides who may call this.
func (e *Engine) AddTeam(number int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.teams.Add(number); err != nil {
		return err
	}
	log.Printf("engine: added team %d", number)
	return nil
}

// RemoveTeam unregisters a team.
func (e *Engine) RemoveTeam(number int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.teams.Remove(number); err != nil {
		return err
	}
	log.Printf("engine: removed team %d", number)
	return nil
}

// ClaimFare attempts to claim the fare at idx for a team. The outcome
// is a success flag plus a message suitable for the client; claim
// races resolve under the lock, so exactly one concurrent claimant
// wins.
func (e *Engine) ClaimFare(idx int, teamNumber int) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	team, ok := e.teams.Get(teamNumber)
	if !ok {
		return false, fmt.Sprintf("Team %d not in this match", teamNumber)
	}
	if err := e.ledger.Claim(idx, team, time.Now()); err != nil {
		switch {
		case errors.Is(err, ErrFareNotFound):
			return false, fmt.Sprintf("Could not find fare with ID %d", idx)
		case errors.Is(err, ErrFareInactive):
			return false, fmt.Sprintf("Fare %d is no longer active", idx)
		case errors.Is(err, ErrFareClaimed):
			return false, fmt.Sprintf("Fare %d is already claimed", idx)
		case errors.Is(err, ErrTeamBusy):
			return false, fmt.Sprintf("Team %d already has a fare", teamNumber)
		}
		return false, err.Error()
	}
	log.Printf("engine: team %d claimed fare %d", teamNumber, idx)
	return true, ""
}

// UpdatePositions applies a telemetry batch under one lock
// acquisition. Unknown teams are skipped, not fatal.
func (e *Engine) UpdatePositions(batch []domain.PositionUpdate) {
	now := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range batch {
		e.teams.UpdatePosition(entry.Team, domain.Point{X: entry.X, Y: entry.Y}, now)
	}
}

// Status builds the polled match status for a team, marking the team
// as seen. team may be TeamUnauthenticated.
func (e *Engine) Status(team int) domain.MatchStatus {
	now := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	inMatch := false
	if t, ok := e.teams.Get(team); ok {
		t.LastStatus = now
		inMatch = true
	}
	return domain.MatchStatus{
		Mode:       e.mode.String(),
		Match:      e.match.Number(),
		MatchStart: e.match.Started(),
		TimeRemain: e.match.TimeRemain(now),
		InMatch:    inMatch,
		Team:       team,
	}
}

// MatchState returns the controller state, for operator dashboards.
func (e *Engine) MatchState() domain.MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match.State()
}

// Teams returns a roster snapshot ordered by team number.
func (e *Engine) Teams() []domain.TeamView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.teams.Snapshot()
}

// Fares returns a fare-list snapshot in ledger order. extended adds
// operator-only fields; includeInactive keeps retired fares in.
func (e *Engine) Fares(extended, includeInactive bool) []domain.FareView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Snapshot(extended, includeInactive)
}

// CurrentFare returns the extended view of the fare a team holds, or a
// message explaining why there is none.
func (e *Engine) CurrentFare(teamNumber int) (*domain.FareView, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	team, ok := e.teams.Get(teamNumber)
	if !ok {
		return nil, fmt.Sprintf("Team %d not in this match", teamNumber)
	}
	if team.CurrentFare == nil {
		return nil, fmt.Sprintf("Team %d does not have an active fare", teamNumber)
	}
	fare, ok := e.ledger.Get(*team.CurrentFare)
	if !ok {
		return nil, fmt.Sprintf("Team %d does not have an active fare", teamNumber)
	}
	view := fare.View(*team.CurrentFare, true)
	return &view, ""
}

// WhereAmI returns a team's last known position and update time.
func (e *Engine) WhereAmI(teamNumber int) (*domain.Point, time.Time, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	team, ok := e.teams.Get(teamNumber)
	if !ok {
		return nil, time.Time{}, fmt.Sprintf("Team %d not in this match", teamNumber)
	}
	pos := team.Pos
	return &pos, team.LastPosUpdate, ""
}

// WaitBackground blocks until pending audit writes complete. Call
// during graceful shutdown to avoid dropped records.
func (e *Engine) WaitBackground() {
	e.wgBg.Wait()
}

// auditFare persists a retired fare asynchronously.
func (e *Engine) auditFare(matchNumber int, rf RetiredFare, outcome string) {
	fare := rf.Fare
	rec := domain.FareRecord{
		MatchNumber: matchNumber,
		FareID:      rf.Index,
		Type:        fare.Type.String(),
		Src:         fare.Src,
		Dest:        fare.Dest,
		Distance:    fare.Src.Dist(fare.Dest),
		Outcome:     outcome,
		Payout:      fare.Payout,
		Created:     fare.Created,
	}
	if fare.Completed != nil {
		rec.Closed = *fare.Completed
	}
	if fare.Claimant != nil {
		n := fare.Claimant.Number
		rec.Team = &n
	}

	e.wgBg.Add(1)
	go func() {
		defer e.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.repo.SaveFareRecord(ctx, rec); err != nil {
			log.Printf("engine: failed to save fare record: %v", err)
		}
	}()
}

// auditMatch persists a match result asynchronously.
func (e *Engine) auditMatch(res domain.MatchResult) {
	e.wgBg.Add(1)
	go func() {
		defer e.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.repo.SaveMatchResult(ctx, res); err != nil {
			log.Printf("engine: failed to save match result: %v", err)
		}
	}()
}
