package standingsdomain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func f(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregate(t *testing.T) {
	t.Run("counts outcomes and ignores pending rounds", func(t *testing.T) {
		stats := Aggregate("reg-a", []RoundResult{
			{RoundNumber: 3, Side: SideNeg, OpponentID: "reg-c", Outcome: OutcomeLoss, Speaks: f(27), Rank: f(2)},
			{RoundNumber: 1, Side: SideAff, OpponentID: "reg-b", Outcome: OutcomeWin, Speaks: f(28.5), Rank: f(1)},
			{RoundNumber: 2, Outcome: OutcomeBye},
			{RoundNumber: 4, Side: SideAff, OpponentID: "reg-d", Outcome: OutcomePending, Speaks: f(29)},
			{RoundNumber: 5, Side: SideNeg, OpponentID: "reg-e", Outcome: OutcomeForfeitReceived},
			{RoundNumber: 6, Side: SideAff, OpponentID: "reg-f", Outcome: OutcomeForfeitGiven},
		})

		if stats.Wins != 2 || stats.Losses != 2 || stats.Byes != 1 {
			t.Fatalf("unexpected record: %+v", stats)
		}
		if stats.ForfeitsGiven != 1 || stats.ForfeitsReceived != 1 {
			t.Fatalf("unexpected forfeits: given=%d received=%d", stats.ForfeitsGiven, stats.ForfeitsReceived)
		}
		if stats.RoundsCompleted != 5 {
			t.Fatalf("expected 5 completed rounds, got %d", stats.RoundsCompleted)
		}
		if diff := cmp.Diff([]float64{28.5, 27}, stats.Speaks); diff != "" {
			t.Fatalf("speaks mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]float64{1, 2}, stats.Ranks); diff != "" {
			t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"reg-b", "reg-c", "reg-e", "reg-f"}, stats.Opponents); diff != "" {
			t.Fatalf("opponents mismatch (-want +got):\n%s", diff)
		}
		if stats.LastSide != SideAff {
			t.Fatalf("expected last side aff, got %q", stats.LastSide)
		}
		if stats.Wins+stats.Losses+stats.Byes > stats.RoundsCompleted {
			t.Fatalf("record exceeds completed rounds: %+v", stats)
		}
	})

	t.Run("keeps a recorded zero", func(t *testing.T) {
		stats := Aggregate("reg-a", []RoundResult{
			{RoundNumber: 1, Side: SideAff, OpponentID: "reg-b", Outcome: OutcomeLoss, Speaks: f(0)},
			{RoundNumber: 2, Side: SideNeg, OpponentID: "reg-c", Outcome: OutcomeLoss},
		})
		if len(stats.Speaks) != 1 || stats.Speaks[0] != 0 {
			t.Fatalf("expected single recorded zero, got %v", stats.Speaks)
		}
	})

	t.Run("preserves repeated opponents", func(t *testing.T) {
		stats := Aggregate("reg-a", []RoundResult{
			{RoundNumber: 1, Side: SideAff, OpponentID: "reg-b", Outcome: OutcomeWin},
			{RoundNumber: 2, Side: SideNeg, OpponentID: "reg-b", Outcome: OutcomeLoss},
		})
		if len(stats.Opponents) != 2 {
			t.Fatalf("expected duplicate opponent entries, got %v", stats.Opponents)
		}
	})

	t.Run("unknown outcome degrades to pending", func(t *testing.T) {
		stats := Aggregate("reg-a", []RoundResult{
			{RoundNumber: 1, Side: SideAff, OpponentID: "reg-b", Outcome: Outcome("draw"), Speaks: f(28)},
		})
		if stats.RoundsCompleted != 0 || len(stats.Speaks) != 0 {
			t.Fatalf("expected nothing recorded, got %+v", stats)
		}
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		in := []RoundResult{{RoundNumber: 2}, {RoundNumber: 1}}
		Aggregate("reg-a", in)
		if in[0].RoundNumber != 2 {
			t.Fatalf("input was mutated: %+v", in)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		stats := Aggregate("reg-a", nil)
		if stats.RegistrationID != "reg-a" || stats.RoundsCompleted != 0 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
	})
}

func TestCalculateAdjusted(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single value", []float64{27}, 27},
		{"two values are not trimmed", []float64{27, 28}, 55},
		{"drops min and max", []float64{1, 5, 9}, 5},
		{"unsorted input", []float64{9, 1, 5, 7}, 12},
		{"drop is positional on repeated extremes", []float64{1, 1, 1, 5}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateAdjusted(tt.values); !almostEqual(got, tt.want) {
				t.Fatalf("CalculateAdjusted(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestCalculateDoubleAdjusted(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"falls back below five values", []float64{1, 2, 3, 4}, 5},
		{"five values keep the median", []float64{5, 4, 3, 2, 1}, 3},
		{"six values keep the middle two", []float64{1, 2, 3, 4, 5, 6}, 7},
		{"two values", []float64{1, 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDoubleAdjusted(tt.values); !almostEqual(got, tt.want) {
				t.Fatalf("CalculateDoubleAdjusted(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestCalculateAdjustedWrappers(t *testing.T) {
	if got := CalculateAdjustedValue(nil); got != 0 {
		t.Fatalf("expected 0 for empty list, got %v", got)
	}
	stats := AggregatedStats{Speaks: []float64{26, 28, 29}, Ranks: []float64{1, 2, 4}}
	if got := CalculateAdjustedSpeaks(stats); got != 28 {
		t.Fatalf("adjusted speaks = %v, want 28", got)
	}
	if got := CalculateAdjustedRanks(stats); got != 2 {
		t.Fatalf("adjusted ranks = %v, want 2", got)
	}
}

func TestCalculateOpponentStrength(t *testing.T) {
	t.Run("sums wins and averages percentages", func(t *testing.T) {
		got := CalculateOpponentStrength([]OpponentRecord{
			{Wins: 3, RoundsCompleted: 4},
			{Wins: 0, RoundsCompleted: 0},
			{Wins: 2, RoundsCompleted: 4},
		})
		if got.OppWins != 5 {
			t.Fatalf("expected 5 opponent wins, got %d", got.OppWins)
		}
		if !almostEqual(got.OppWinPct, (0.75+0+0.5)/3) {
			t.Fatalf("unexpected opp win pct %v", got.OppWinPct)
		}
	})

	t.Run("no opponents", func(t *testing.T) {
		if got := CalculateOpponentStrength(nil); got != (OpponentStrength{}) {
			t.Fatalf("expected zero strength, got %+v", got)
		}
	})
}

func TestBuildComputedStanding(t *testing.T) {
	all := map[string]AggregatedStats{
		"reg-b": {RegistrationID: "reg-b", Wins: 2, RoundsCompleted: 4},
		"reg-c": {RegistrationID: "reg-c", Wins: 4, RoundsCompleted: 4},
	}
	stats := AggregatedStats{
		RegistrationID:  "reg-a",
		Wins:            3,
		Losses:          1,
		Speaks:          []float64{27, 28, 29, 30},
		Ranks:           []float64{1, 2, 2, 3},
		AffRounds:       2,
		NegRounds:       2,
		Opponents:       []string{"reg-b", "reg-c", "reg-b", "reg-x"},
		RoundsCompleted: 4,
	}

	got := BuildComputedStanding(StandingKey{TournamentID: "t1", EventID: "e1"}, stats, all)

	if got.RegistrationID != "reg-a" || got.TournamentID != "t1" || got.EventID != "e1" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.TotalSpeaks != 114 || got.AvgSpeaks != 28.5 || got.AdjustedSpeaks != 57 {
		t.Fatalf("unexpected speaks: total=%v avg=%v adj=%v", got.TotalSpeaks, got.AvgSpeaks, got.AdjustedSpeaks)
	}
	if got.DoubleAdjustedSpeaks != 57 {
		t.Fatalf("double adjusted should fall back to adjusted, got %v", got.DoubleAdjustedSpeaks)
	}
	if got.TotalRanks != 8 || got.AvgRanks != 2 || got.AdjustedRanks != 4 {
		t.Fatalf("unexpected ranks: total=%v avg=%v adj=%v", got.TotalRanks, got.AvgRanks, got.AdjustedRanks)
	}
	// distinct opponents b, c and an unknown x: wins 2+4+0, pct (0.5+1+0)/3
	if got.OppWins != 6 || !almostEqual(got.OppWinPct, 0.5) {
		t.Fatalf("unexpected opponent strength: wins=%d pct=%v", got.OppWins, got.OppWinPct)
	}
}

func TestOpponentStrengthSkipsUnplayedPairings(t *testing.T) {
	stats := Aggregate("reg-a", []RoundResult{
		{RoundNumber: 1, Side: SideAff, OpponentID: "reg-b", Outcome: OutcomeWin, Speaks: f(28)},
		{RoundNumber: 2, Side: SideNeg, OpponentID: "reg-c", Outcome: OutcomePending},
	})
	if diff := cmp.Diff([]string{"reg-b"}, stats.Opponents); diff != "" {
		t.Fatalf("opponents mismatch (-want +got):\n%s", diff)
	}

	all := map[string]AggregatedStats{
		"reg-b": {RegistrationID: "reg-b", Wins: 1, RoundsCompleted: 2},
		"reg-c": {RegistrationID: "reg-c", Wins: 2, RoundsCompleted: 2},
	}
	got := BuildComputedStanding(StandingKey{TournamentID: "t1", EventID: "e1"}, stats, all)
	if got.OppWins != 1 || !almostEqual(got.OppWinPct, 0.5) {
		t.Fatalf("pending opponent counted: wins=%d pct=%v", got.OppWins, got.OppWinPct)
	}
	if got.AffRounds != 1 || got.NegRounds != 1 {
		t.Fatalf("side counts should still include the pending round: aff=%d neg=%d", got.AffRounds, got.NegRounds)
	}
}
