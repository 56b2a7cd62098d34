package standingsdomain

import (
	"cmp"
	"math"
	"slices"
)

// TiebreakerType names one comparison criterion.
type TiebreakerType string

const (
	TiebreakerWins                 TiebreakerType = "wins"
	TiebreakerLosses               TiebreakerType = "losses"
	TiebreakerSpeaks               TiebreakerType = "speaks"
	TiebreakerRanks                TiebreakerType = "ranks"
	TiebreakerAdjustedSpeaks       TiebreakerType = "adjusted_speaks"
	TiebreakerAdjustedRanks        TiebreakerType = "adjusted_ranks"
	TiebreakerDoubleAdjustedSpeaks TiebreakerType = "double_adjusted_speaks"
	TiebreakerDoubleAdjustedRanks  TiebreakerType = "double_adjusted_ranks"
	TiebreakerOppWins              TiebreakerType = "opp_wins"
	TiebreakerOppWinPct            TiebreakerType = "opp_win_pct"
	TiebreakerHeadToHead           TiebreakerType = "head_to_head"
	TiebreakerCoinFlip             TiebreakerType = "coin_flip"
)

// direction of a numeric criterion.
type direction int

const (
	higherIsBetter direction = iota
	lowerIsBetter
)

var numericCriteria = map[TiebreakerType]direction{
	TiebreakerWins:                 higherIsBetter,
	TiebreakerLosses:               lowerIsBetter,
	TiebreakerSpeaks:               higherIsBetter,
	TiebreakerRanks:                lowerIsBetter,
	TiebreakerAdjustedSpeaks:       higherIsBetter,
	TiebreakerAdjustedRanks:        lowerIsBetter,
	TiebreakerDoubleAdjustedSpeaks: higherIsBetter,
	TiebreakerDoubleAdjustedRanks:  lowerIsBetter,
	TiebreakerOppWins:              higherIsBetter,
	TiebreakerOppWinPct:            higherIsBetter,
}

// tiebreakerValue is the single accessor for numeric criteria. Missing or
// non-finite values read as 0.
func tiebreakerValue(s *ComputedStanding, t TiebreakerType) float64 {
	if s == nil {
		return 0
	}
	var v float64
	switch t {
	case TiebreakerWins:
		v = float64(s.Wins)
	case TiebreakerLosses:
		v = float64(s.Losses)
	case TiebreakerSpeaks:
		v = s.TotalSpeaks
	case TiebreakerRanks:
		v = s.TotalRanks
	case TiebreakerAdjustedSpeaks:
		v = s.AdjustedSpeaks
	case TiebreakerAdjustedRanks:
		v = s.AdjustedRanks
	case TiebreakerDoubleAdjustedSpeaks:
		v = s.DoubleAdjustedSpeaks
	case TiebreakerDoubleAdjustedRanks:
		v = s.DoubleAdjustedRanks
	case TiebreakerOppWins:
		v = float64(s.OppWins)
	case TiebreakerOppWinPct:
		v = s.OppWinPct
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CompareTiebreaker compares a and b on one criterion. It returns -1 when a
// ranks ahead of b, 1 when b ranks ahead, and 0 when the criterion cannot
// separate them. Unknown criteria always tie.
func CompareTiebreaker(a, b ComputedStanding, criterion TiebreakerType, h2h HeadToHeadMap) int {
	if dir, ok := numericCriteria[criterion]; ok {
		c := cmp.Compare(tiebreakerValue(&a, criterion), tiebreakerValue(&b, criterion))
		if dir == higherIsBetter {
			return -c
		}
		return c
	}

	switch criterion {
	case TiebreakerHeadToHead:
		return compareHeadToHead(a.RegistrationID, b.RegistrationID, h2h)
	case TiebreakerCoinFlip:
		return coinFlip(a.RegistrationID, b.RegistrationID)
	default:
		return 0
	}
}

// compareHeadToHead ranks the competitor with more wins in direct meetings first.
// A record in either direction is enough; the missing side is inferred from it.
func compareHeadToHead(a, b string, h2h HeadToHeadMap) int {
	if h2h == nil {
		return 0
	}
	ab, abOK := findHeadToHead(h2h, a, b)
	ba, baOK := findHeadToHead(h2h, b, a)
	if !abOK && !baOK {
		return 0
	}

	var aWins, bWins int
	switch {
	case abOK && baOK:
		aWins, bWins = ab.Wins, ba.Wins
	case abOK:
		aWins, bWins = ab.Wins, ab.Losses
	default:
		aWins, bWins = ba.Losses, ba.Wins
	}
	return -cmp.Compare(aWins, bWins)
}

func findHeadToHead(h2h HeadToHeadMap, registrationID, opponentID string) (HeadToHead, bool) {
	for _, rec := range h2h[registrationID] {
		if rec.OpponentID == opponentID {
			return rec, true
		}
	}
	return HeadToHead{}, false
}

// coinFlip picks a reproducible winner between two registrations. The two IDs
// are put in canonical order before hashing so the winner does not depend on
// which one is passed first.
func coinFlip(a, b string) int {
	if a == b {
		return 0
	}
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}

	var h uint32
	for _, c := range lo + "|" + hi {
		h = h*31 + uint32(c)
	}

	winner := lo
	if h%2 == 1 {
		winner = hi
	}
	if winner == a {
		return -1
	}
	return 1
}

// GetDecidingTiebreaker returns the first criterion in order that separates a
// and b. The boolean is false when every criterion ties.
func GetDecidingTiebreaker(a, b ComputedStanding, order []TiebreakerType, h2h HeadToHeadMap) (TiebreakerType, bool) {
	res := CompareTiebreakerOrder(a, b, order, h2h)
	return res.DecidedBy, res.DecidedBy != ""
}

// CompareTiebreakerOrder walks order left to right and reports the first
// deciding criterion together with its result.
func CompareTiebreakerOrder(a, b ComputedStanding, order []TiebreakerType, h2h HeadToHeadMap) TiebreakerResult {
	for _, criterion := range order {
		if r := CompareTiebreaker(a, b, criterion, h2h); r != 0 {
			return TiebreakerResult{DecidedBy: criterion, Result: r}
		}
	}
	return TiebreakerResult{}
}

// BuildHeadToHeadMap indexes records by registration.
func BuildHeadToHeadMap(records []HeadToHead) HeadToHeadMap {
	if len(records) == 0 {
		return nil
	}
	m := make(HeadToHeadMap, len(records))
	for _, rec := range records {
		m[rec.RegistrationID] = append(m[rec.RegistrationID], rec)
	}
	return m
}

// CreateTiebreakerComparator returns a comparator for slices.SortStableFunc and
// friends. The head-to-head index is built once.
func CreateTiebreakerComparator(order []TiebreakerType, records []HeadToHead) func(a, b ComputedStanding) int {
	order = slices.Clone(order)
	h2h := BuildHeadToHeadMap(records)
	return func(a, b ComputedStanding) int {
		return CompareTiebreakerOrder(a, b, order, h2h).Result
	}
}

// SortByTiebreakers returns a stably sorted copy of standings. The input is
// not modified.
func SortByTiebreakers(standings []ComputedStanding, order []TiebreakerType, records []HeadToHead) []ComputedStanding {
	sorted := slices.Clone(standings)
	if len(sorted) < 2 || len(order) == 0 {
		return sorted
	}
	slices.SortStableFunc(sorted, CreateTiebreakerComparator(order, records))
	return sorted
}

// GroupIntoTiers splits an already sorted list into maximal runs of adjacent
// competitors that tie on every criterion in order.
func GroupIntoTiers(sorted []ComputedStanding, order []TiebreakerType, records []HeadToHead) [][]ComputedStanding {
	if len(sorted) == 0 {
		return [][]ComputedStanding{}
	}
	h2h := BuildHeadToHeadMap(records)

	tiers := [][]ComputedStanding{{sorted[0]}}
	for i := 1; i < len(sorted); i++ {
		last := len(tiers) - 1
		if CompareTiebreakerOrder(sorted[i-1], sorted[i], order, h2h).Result == 0 {
			tiers[last] = append(tiers[last], sorted[i])
			continue
		}
		tiers = append(tiers, []ComputedStanding{sorted[i]})
	}
	return tiers
}
