package standingsdomain

import (
	"slices"
	"sort"
	"time"
)

// AssignPlacements numbers an already sorted list from 1 and marks the first
// breakCount competitors as breaking, seeded in list order.
func AssignPlacements(sorted []ComputedStanding, breakCount int) []ComputedStanding {
	out := slices.Clone(sorted)
	for i := range out {
		pos := i + 1
		out[i].PrelimRank = intPtr(pos)
		out[i].OverallRank = intPtr(pos)
		out[i].IsBreaking = i < breakCount
		out[i].BreakSeed = nil
		if out[i].IsBreaking {
			out[i].BreakSeed = intPtr(pos)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }

// TabInput is everything needed to compute the standings of one event.
type TabInput struct {
	TournamentID string
	EventID      string
	// Registrations lists competitors that must appear even without results.
	Registrations []string
	Ballots       []Ballot
	Order         []TiebreakerType
	BreakCount    int
	ComputedAt    time.Time
}

// TabOutput is the result of a full standings pass.
type TabOutput struct {
	Standings  []ComputedStanding
	HeadToHead []HeadToHead
	// Tiers groups competitors that tie on every criterion except coin_flip.
	Tiers [][]ComputedStanding
}

// ComputeStandings runs aggregation, head-to-head derivation, sorting and
// placement for one event. The same input always yields the same output.
// An empty order falls back to DefaultTiebreakerOrder.
func ComputeStandings(in TabInput) TabOutput {
	order := in.Order
	if len(order) == 0 {
		order = DefaultTiebreakerOrder
	}

	results := ResultsByRegistration(in.Ballots)

	ids := make([]string, 0, len(results)+len(in.Registrations))
	seen := make(map[string]struct{}, cap(ids))
	for _, id := range in.Registrations {
		if _, ok := seen[id]; !ok && id != "" {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for id := range results {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	all := make(map[string]AggregatedStats, len(ids))
	for _, id := range ids {
		all[id] = Aggregate(id, results[id])
	}

	standings := make([]ComputedStanding, 0, len(ids))
	for _, id := range ids {
		s := BuildComputedStanding(StandingKey{
			TournamentID:   in.TournamentID,
			EventID:        in.EventID,
			RegistrationID: id,
		}, all[id], all)
		s.CreatedAt = in.ComputedAt
		s.UpdatedAt = in.ComputedAt
		standings = append(standings, s)
	}

	h2h := DeriveHeadToHead(results)
	placed := AssignPlacements(SortByTiebreakers(standings, order, h2h), in.BreakCount)

	return TabOutput{
		Standings:  placed,
		HeadToHead: h2h,
		Tiers:      GroupIntoTiers(placed, WithoutCoinFlip(order), h2h),
	}
}
