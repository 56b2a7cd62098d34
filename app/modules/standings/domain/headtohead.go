package standingsdomain

import (
	"cmp"
	"slices"
)

// DeriveHeadToHead builds directed head-to-head records from every
// competitor's round results. Byes and pending rounds are ignored. Speaks
// against are read from the opponent's result for the same round.
func DeriveHeadToHead(resultsByRegistration map[string][]RoundResult) []HeadToHead {
	type pairKey struct{ reg, opp string }
	type roundKey struct {
		reg   string
		round int
		opp   string
	}

	speaksIndex := make(map[roundKey]float64)
	for reg, results := range resultsByRegistration {
		for _, r := range results {
			if r.Speaks != nil {
				speaksIndex[roundKey{reg, r.RoundNumber, r.OpponentID}] += *r.Speaks
			}
		}
	}

	records := make(map[pairKey]*HeadToHead)
	for reg, results := range resultsByRegistration {
		for _, r := range results {
			if r.OpponentID == "" || r.Outcome == OutcomeBye || !r.Outcome.Resolved() {
				continue
			}
			k := pairKey{reg, r.OpponentID}
			rec, ok := records[k]
			if !ok {
				rec = &HeadToHead{RegistrationID: reg, OpponentID: r.OpponentID}
				records[k] = rec
			}

			switch r.Outcome {
			case OutcomeWin, OutcomeForfeitReceived:
				rec.Wins++
			case OutcomeLoss, OutcomeForfeitGiven:
				rec.Losses++
			}
			if r.Speaks != nil {
				rec.SpeaksFor += *r.Speaks
			}
			rec.SpeaksAgainst += speaksIndex[roundKey{r.OpponentID, r.RoundNumber, reg}]
		}
	}

	out := make([]HeadToHead, 0, len(records))
	for _, rec := range records {
		out = append(out, *rec)
	}
	slices.SortFunc(out, func(a, b HeadToHead) int {
		if c := cmp.Compare(a.RegistrationID, b.RegistrationID); c != 0 {
			return c
		}
		return cmp.Compare(a.OpponentID, b.OpponentID)
	})
	return out
}
