package domain

import (
	"context"
	"time"
)

// FareRecord is the audit row written when a fare leaves the board.
type FareRecord struct {
	MatchNumber int       `json:"match"`
	FareID      int       `json:"fareId"`
	Type        string    `json:"type"`
	Src         Point     `json:"src"`
	Dest        Point     `json:"dest"`
	Distance    float64   `json:"distance"`
	Outcome     string    `json:"outcome"` // DONE or EXPIRED
	Team        *int      `json:"team,omitempty"`
	Payout      float64   `json:"payout"`
	Created     time.Time `json:"created"`
	Closed      time.Time `json:"closed"`
}

// TeamStanding is one team's final score line.
type TeamStanding struct {
	Number     int     `json:"number"`
	Money      float64 `json:"money"`
	Reputation int     `json:"rep"`
}

// MatchResult is the audit row written when a match ends.
type MatchResult struct {
	Number    int            `json:"number"`
	Duration  time.Duration  `json:"duration"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   time.Time      `json:"endedAt"`
	Standings []TeamStanding `json:"standings"`
}

// AuditRepository is a write-mostly sink for historical records. All
// gameplay state lives in memory; nothing here is read back to restore
// state; the history queries exist only for dashboards.
// The domain defines the interface; implementations live in
// internal/repository.
type AuditRepository interface {
	// SaveFareRecord persists one retired fare.
	SaveFareRecord(ctx context.Context, rec FareRecord) error

	// SaveMatchResult persists the outcome of a finished match.
	SaveMatchResult(ctx context.Context, res MatchResult) error

	// GetFareHistory retrieves retired fares within a time range.
	GetFareHistory(ctx context.Context, from, to time.Time) ([]FareRecord, error)

	// Health checks connectivity to the backing store.
	Health(ctx context.Context) error
}
