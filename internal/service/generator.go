package service

import (
	"math"
	"math/rand"
	"time"

	"github.com/vpfs/backend/internal/domain"
	"github.com/vpfs/backend/pkg/utils"
)

// generateAttempts caps the rejection-sampling loop so a crowded board
// cannot stall a tick.
const generateAttempts = 10

// GeneratorConfig holds the static inputs of fare generation.
type GeneratorConfig struct {
	SpawnPoints []domain.SpawnPoint
	DistMin     float64
	DistMax     float64
	TargetFares int
	Merge       domain.MergeStrategy
}

// FareGenerator produces at most one new fare per invocation. It is
// pure computation; callers are expected to hold the engine lock.
type FareGenerator struct {
	points  []domain.SpawnPoint
	distMin float64
	distMax float64
	merge   domain.MergeStrategy
	rng     *rand.Rand

	// target is the desired share of active fares per type. Aims for
	// one or two of each special type at a time; normal is the rest.
	target map[domain.FareType]float64
}

// NewFareGenerator creates a generator. The rand source is injected so
// tests can seed it.
func NewFareGenerator(cfg GeneratorConfig, rng *rand.Rand) *FareGenerator {
	target := map[domain.FareType]float64{
		domain.FareSubsidized: 1.5 / float64(cfg.TargetFares),
		domain.FareSenior:     1.5 / float64(cfg.TargetFares),
	}
	target[domain.FareNormal] = 1 - target[domain.FareSubsidized] - target[domain.FareSenior]

	return &FareGenerator{
		points:  cfg.SpawnPoints,
		distMin: cfg.DistMin,
		distMax: cfg.DistMax,
		merge:   cfg.Merge,
		rng:     rng,
		target:  target,
	}
}

// Generate tries to build a new fare against the current fare list.
// It returns ok=false when no legal spawn pairing was found within the
// attempt budget; the caller retries on a later tick.
func (g *FareGenerator) Generate(existing []*domain.Fare, now time.Time) (*domain.Fare, bool) {
	// Endpoints of active fares are off limits, and the live type mix
	// feeds the balancing multipliers.
	used := make(map[domain.Point]struct{})
	counts := make(map[domain.FareType]float64)
	activeFares := 0
	for _, fare := range existing {
		if !fare.IsActive {
			continue
		}
		activeFares++
		used[fare.Src] = struct{}{}
		used[fare.Dest] = struct{}{}
		counts[fare.Type]++
	}

	var src, dest domain.SpawnPoint
	found := false
	for i := 0; i < generateAttempts && !found; i++ {
		p1 := g.points[g.rng.Intn(len(g.points))]
		p2 := g.points[g.rng.Intn(len(g.points))]
		dist := p1.Point.Dist(p2.Point)
		if p1.Point == p2.Point || dist < g.distMin || dist > g.distMax {
			continue
		}
		if _, taken := used[p1.Point]; taken {
			continue
		}
		if _, taken := used[p2.Point]; taken {
			continue
		}
		src, dest = p1, p2
		found = true
	}
	if !found {
		return nil, false
	}

	// Pull the type mix toward the target composition: an
	// under-represented type gets a >1x multiplier, an over-represented
	// one <1x. The clamp keeps the feedback loop from running away.
	mul := make(map[domain.FareType]float64, len(g.target))
	for _, t := range domain.AllFareTypes {
		currRatio := counts[t] / math.Max(float64(activeFares), 1)
		if currRatio == 0 {
			currRatio = 0.01
		}
		mul[t] = utils.Clamp(g.target[t]/currRatio, 0.25, 10)
	}

	prob := domain.Merge(src.Biases, dest.Biases, g.merge).Reweight(mul)

	return &domain.Fare{
		Src:      src.Point,
		Dest:     dest.Point,
		Type:     prob.Roll(g.rng),
		IsActive: true,
		Phase:    domain.PhaseWaiting,
		Created:  now,
	}, true
}
