package domain

import "math/rand"

// FareProbability is a weight per fare type. Weights are relative; they
// do not need to sum to 1.
type FareProbability struct {
	Normal     float64 `json:"normal"`
	Subsidized float64 `json:"subsidized"`
	Senior     float64 `json:"senior"`
}

// DefaultBias is the neutral spawn-point bias: mostly normal fares with
// an occasional special.
func DefaultBias() FareProbability {
	return FareProbability{Normal: 1, Subsidized: 0.25, Senior: 0.25}
}

// Weight returns the weight for a fare type.
func (p FareProbability) Weight(t FareType) float64 {
	switch t {
	case FareSubsidized:
		return p.Subsidized
	case FareSenior:
		return p.Senior
	default:
		return p.Normal
	}
}

func (p *FareProbability) setWeight(t FareType, w float64) {
	switch t {
	case FareSubsidized:
		p.Subsidized = w
	case FareSenior:
		p.Senior = w
	default:
		p.Normal = w
	}
}

// MergeStrategy combines the biases of a fare's two endpoints into the
// base distribution for the new fare.
type MergeStrategy int

const (
	// MergeAverage takes the per-type mean, so one heavily biased
	// endpoint cannot drown out a neutral one.
	MergeAverage MergeStrategy = iota
	// MergeSum adds weights per type.
	MergeSum
)

// ParseMergeStrategy maps a config string to a strategy, defaulting to
// MergeAverage for unrecognized values.
func ParseMergeStrategy(s string) MergeStrategy {
	if s == "sum" {
		return MergeSum
	}
	return MergeAverage
}

// Merge combines two distributions per the strategy.
func Merge(a, b FareProbability, strategy MergeStrategy) FareProbability {
	var out FareProbability
	for _, t := range AllFareTypes {
		w := a.Weight(t) + b.Weight(t)
		if strategy == MergeAverage {
			w /= 2
		}
		out.setWeight(t, w)
	}
	return out
}

// Reweight multiplies each type's weight by the supplied multiplier.
// Types missing from mul keep their weight.
func (p FareProbability) Reweight(mul map[FareType]float64) FareProbability {
	out := p
	for t, m := range mul {
		out.setWeight(t, out.Weight(t)*m)
	}
	return out
}

// Roll draws one fare type with probability proportional to its weight.
// If every weight is zero the draw is uniform over all types.
func (p FareProbability) Roll(rng *rand.Rand) FareType {
	total := 0.0
	for _, t := range AllFareTypes {
		total += p.Weight(t)
	}
	if total <= 0 {
		return AllFareTypes[rng.Intn(len(AllFareTypes))]
	}
	r := rng.Float64() * total
	for _, t := range AllFareTypes {
		r -= p.Weight(t)
		if r < 0 {
			return t
		}
	}
	// Float round-off can leave r at exactly zero after the loop.
	return AllFareTypes[len(AllFareTypes)-1]
}
