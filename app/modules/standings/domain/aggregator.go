package standingsdomain

import (
	"cmp"
	"slices"
)

// Aggregate folds every round result of one competitor into a single summary.
// Pending rounds contribute neither to win/loss totals, rounds completed nor
// the opponent list.
func Aggregate(registrationID string, results []RoundResult) AggregatedStats {
	stats := AggregatedStats{RegistrationID: registrationID}
	if len(results) == 0 {
		return stats
	}

	ordered := make([]RoundResult, len(results))
	copy(ordered, results)
	slices.SortStableFunc(ordered, func(a, b RoundResult) int {
		return cmp.Compare(a.RoundNumber, b.RoundNumber)
	})

	for _, r := range ordered {
		switch r.Side {
		case SideAff:
			stats.AffRounds++
			stats.LastSide = SideAff
		case SideNeg:
			stats.NegRounds++
			stats.LastSide = SideNeg
		}

		switch r.Outcome {
		case OutcomeWin:
			stats.Wins++
		case OutcomeLoss:
			stats.Losses++
		case OutcomeBye:
			stats.Byes++
		case OutcomeForfeitGiven:
			stats.ForfeitsGiven++
			stats.Losses++
		case OutcomeForfeitReceived:
			stats.ForfeitsReceived++
			stats.Wins++
		default:
			// pending or unrecognized: nothing recorded yet
			continue
		}

		stats.RoundsCompleted++
		if r.OpponentID != "" && r.Outcome != OutcomeBye {
			stats.Opponents = append(stats.Opponents, r.OpponentID)
		}
		if r.Speaks != nil {
			stats.Speaks = append(stats.Speaks, *r.Speaks)
		}
		if r.Rank != nil {
			stats.Ranks = append(stats.Ranks, *r.Rank)
		}
	}

	return stats
}

// CalculateAdjusted sums values after dropping the single lowest and highest entry.
// With fewer than three values nothing is dropped.
func CalculateAdjusted(values []float64) float64 {
	return trimmedSum(values, 1)
}

// CalculateDoubleAdjusted drops the two lowest and two highest entries.
// With fewer than five values it falls back to CalculateAdjusted.
func CalculateDoubleAdjusted(values []float64) float64 {
	if len(values) < 5 {
		return CalculateAdjusted(values)
	}
	return trimmedSum(values, 2)
}

// trimmedSum drops n entries from each end of the sorted values. The drop is
// positional, so repeated extreme values are removed one at a time.
func trimmedSum(values []float64, n int) float64 {
	if len(values) < 2*n+1 {
		return sum(values)
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sum(sorted[n : len(sorted)-n])
}

// CalculateAdjustedValue is CalculateAdjusted with an explicit zero for no data.
func CalculateAdjustedValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return CalculateAdjusted(values)
}

// CalculateAdjustedSpeaks returns the adjusted speaker-point total of a competitor.
func CalculateAdjustedSpeaks(stats AggregatedStats) float64 {
	return CalculateAdjustedValue(stats.Speaks)
}

// CalculateAdjustedRanks returns the adjusted rank total of a competitor.
func CalculateAdjustedRanks(stats AggregatedStats) float64 {
	return CalculateAdjustedValue(stats.Ranks)
}

// CalculateOpponentStrength sums opponent wins and averages opponent win percentage.
// An opponent with no completed rounds counts as 0%.
func CalculateOpponentStrength(opponents []OpponentRecord) OpponentStrength {
	if len(opponents) == 0 {
		return OpponentStrength{}
	}

	var strength OpponentStrength
	var pctSum float64
	for _, o := range opponents {
		strength.OppWins += o.Wins
		if o.RoundsCompleted > 0 {
			pctSum += float64(o.Wins) / float64(o.RoundsCompleted)
		}
	}
	strength.OppWinPct = pctSum / float64(len(opponents))
	return strength
}

// BuildComputedStanding derives the rankable standing of one competitor.
// all holds the aggregated stats of every competitor in the event and is used
// to look up opponent records; unknown opponents count as winless.
func BuildComputedStanding(key StandingKey, stats AggregatedStats, all map[string]AggregatedStats) ComputedStanding {
	s := ComputedStanding{
		TournamentID:     key.TournamentID,
		EventID:          key.EventID,
		RegistrationID:   key.RegistrationID,
		Wins:             stats.Wins,
		Losses:           stats.Losses,
		Byes:             stats.Byes,
		ForfeitsGiven:    stats.ForfeitsGiven,
		ForfeitsReceived: stats.ForfeitsReceived,
		AffRounds:        stats.AffRounds,
		NegRounds:        stats.NegRounds,
		RoundsCompleted:  stats.RoundsCompleted,

		TotalSpeaks:          sum(stats.Speaks),
		AvgSpeaks:            mean(stats.Speaks),
		AdjustedSpeaks:       CalculateAdjustedSpeaks(stats),
		DoubleAdjustedSpeaks: CalculateDoubleAdjusted(stats.Speaks),

		TotalRanks:          sum(stats.Ranks),
		AvgRanks:            mean(stats.Ranks),
		AdjustedRanks:       CalculateAdjustedRanks(stats),
		DoubleAdjustedRanks: CalculateDoubleAdjusted(stats.Ranks),
	}
	if s.RegistrationID == "" {
		s.RegistrationID = stats.RegistrationID
	}

	seen := make(map[string]struct{}, len(stats.Opponents))
	records := make([]OpponentRecord, 0, len(stats.Opponents))
	for _, id := range stats.Opponents {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		opp := all[id]
		records = append(records, OpponentRecord{Wins: opp.Wins, RoundsCompleted: opp.RoundsCompleted})
	}
	strength := CalculateOpponentStrength(records)
	s.OppWins = strength.OppWins
	s.OppWinPct = strength.OppWinPct

	return s
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}
