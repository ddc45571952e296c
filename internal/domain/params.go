package domain

import "time"

// Gameplay constants. Distances are meters in the arena frame.
const (
	// PositionTolerance is how close a team must be to a fare endpoint
	// to count as "there".
	PositionTolerance = 0.15

	// PickupDuration is how long a team must dwell at the pickup point
	// before the passenger boards.
	PickupDuration = 5 * time.Second

	// BaseFare is paid on every completed fare regardless of type.
	BaseFare = 10.0

	// Per-meter payout rates by fare type. Subsidized fares pay a
	// reduced distance rate but a larger reputation reward.
	DistFareNormal     = 10.0
	DistFareSubsidized = 5.0
	DistFareSenior     = 10.0

	// Reputation rewards by fare type.
	ReputationNormal     = 5
	ReputationSubsidized = 10
	ReputationSenior     = 15

	// FareLifetime is how long an unclaimed fare stays on the board.
	FareLifetime = 5 * time.Minute

	// ClaimWindow is how long a claiming team has to begin pickup
	// before the fare lapses.
	ClaimWindow = 2 * time.Minute
)

// Generation defaults, overridable through configuration.
const (
	DefaultTargetFares = 8
	DefaultDistMin     = 2.5
	DefaultDistMax     = 999
)
