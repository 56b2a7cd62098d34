package standingsdomain

import "time"

// Outcome is the resolved result of one pairing from a competitor's point of view.
type Outcome string

const (
	OutcomeWin             Outcome = "win"
	OutcomeLoss            Outcome = "loss"
	OutcomeBye             Outcome = "bye"
	OutcomeForfeitGiven    Outcome = "forfeit_given"
	OutcomeForfeitReceived Outcome = "forfeit_received"
	OutcomePending         Outcome = "pending"
)

// Resolved reports whether the outcome counts toward rounds completed.
func (o Outcome) Resolved() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeBye, OutcomeForfeitGiven, OutcomeForfeitReceived:
		return true
	default:
		return false
	}
}

// Side is the side a competitor argued in a round.
type Side string

const (
	SideAff Side = "aff"
	SideNeg Side = "neg"
)

// Opposite returns the other side. Empty stays empty.
func (s Side) Opposite() Side {
	switch s {
	case SideAff:
		return SideNeg
	case SideNeg:
		return SideAff
	default:
		return ""
	}
}

// RoundResult is one pairing a competitor took part in.
type RoundResult struct {
	RoundNumber int
	Side        Side
	OpponentID  string // empty for a bye
	Outcome     Outcome
	Speaks      *float64 // nil when no value was entered
	Rank        *float64 // lower is better
}

// AggregatedStats summarizes every round result of one competitor.
type AggregatedStats struct {
	RegistrationID   string
	Wins             int
	Losses           int
	Byes             int
	ForfeitsGiven    int
	ForfeitsReceived int
	Speaks           []float64
	Ranks            []float64
	AffRounds        int
	NegRounds        int
	Opponents        []string
	RoundsCompleted  int
	LastSide         Side
}

// StandingKey identifies a standing row.
type StandingKey struct {
	TournamentID   string
	EventID        string
	RegistrationID string
}

// ComputedStanding is the unit the tiebreaker engine ranks.
type ComputedStanding struct {
	TournamentID   string `json:"tournament_id"`
	EventID        string `json:"event_id"`
	RegistrationID string `json:"registration_id"`

	Wins             int `json:"wins"`
	Losses           int `json:"losses"`
	Byes             int `json:"byes"`
	ForfeitsGiven    int `json:"forfeits_given"`
	ForfeitsReceived int `json:"forfeits_received"`

	TotalSpeaks          float64 `json:"total_speaks"`
	AvgSpeaks            float64 `json:"avg_speaks"`
	AdjustedSpeaks       float64 `json:"adjusted_speaks"`
	DoubleAdjustedSpeaks float64 `json:"double_adjusted_speaks"`

	TotalRanks          float64 `json:"total_ranks"`
	AvgRanks            float64 `json:"avg_ranks"`
	AdjustedRanks       float64 `json:"adjusted_ranks"`
	DoubleAdjustedRanks float64 `json:"double_adjusted_ranks"`

	OppWins   int     `json:"opp_wins"`
	OppWinPct float64 `json:"opp_win_pct"`

	AffRounds int `json:"aff_rounds"`
	NegRounds int `json:"neg_rounds"`

	PrelimRank  *int `json:"prelim_rank,omitempty"`
	OverallRank *int `json:"overall_rank,omitempty"`
	IsBreaking  bool `json:"is_breaking"`
	BreakSeed   *int `json:"break_seed,omitempty"`

	RoundsCompleted int `json:"rounds_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HeadToHead is a directed record of RegistrationID's results against OpponentID.
type HeadToHead struct {
	RegistrationID string  `json:"registration_id"`
	OpponentID     string  `json:"opponent_id"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	SpeaksFor      float64 `json:"speaks_for"`
	SpeaksAgainst  float64 `json:"speaks_against"`
}

// HeadToHeadMap indexes head-to-head records by registration.
type HeadToHeadMap map[string][]HeadToHead

// OpponentRecord is the part of an opponent's record used for schedule strength.
type OpponentRecord struct {
	Wins            int
	RoundsCompleted int
}

// OpponentStrength holds the schedule-strength metrics of a competitor.
type OpponentStrength struct {
	OppWins   int
	OppWinPct float64
}

// TiebreakerResult is the outcome of walking a tiebreaker order for one pair.
// DecidedBy is empty when every criterion tied.
type TiebreakerResult struct {
	DecidedBy TiebreakerType `json:"decided_by,omitempty"`
	Result    int            `json:"result"`
}
