package assignment

import "math/rand"

// BuildCycle arranges the roster into a single closed hunter→target loop:
// the roster is shuffled with the supplied seed and consecutive elements are
// linked circularly. Every participant appears exactly once as hunter and
// exactly once as target, so self-targeting and partial cycles are impossible
// by construction.
//
// The seed is injected rather than read from a global generator so the same
// roster and seed always reproduce the same cycle.
func BuildCycle(roster []ParticipantID, seed int64) []Edge {
	if len(roster) < 2 {
		return nil
	}

	order := make([]ParticipantID, len(roster))
	copy(order, roster)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	edges := make([]Edge, len(order))

	for i, hunter := range order {
		edges[i] = Edge{
			Hunter: hunter,
			Target: order[(i+1)%len(order)],
		}
	}

	return edges
}
