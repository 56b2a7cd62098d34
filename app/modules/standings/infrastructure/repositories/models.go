package standingsdb

import (
	"time"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	"github.com/uptrace/bun"
)

// EventConfig is the tabulation setup of one event.
type EventConfig struct {
	bun.BaseModel   `bun:"table:event_configs,alias:ec"`
	EventID         string    `bun:"event_id,pk,type:varchar(64)"`
	TournamentID    string    `bun:"tournament_id,notnull,type:varchar(64)"`
	Name            string    `bun:"name,notnull,default:''"`
	TiebreakerOrder []string  `bun:"tiebreaker_order,array,notnull"`
	RegistrationIDs []string  `bun:"registration_ids,array,notnull"`
	BreakCount      int       `bun:"break_count,notnull,default:0"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Ballot is a stored judge decision keyed by event and pairing. The latest
// write for a pairing within an event wins.
type Ballot struct {
	bun.BaseModel `bun:"table:ballots,alias:b"`
	EventID       string    `bun:"event_id,pk,type:varchar(64)"`
	PairingID     string    `bun:"pairing_id,pk,type:varchar(64)"`
	TournamentID  string    `bun:"tournament_id,notnull,type:varchar(64)"`
	RoundNumber   int       `bun:"round_number,notnull"`
	AffID         string    `bun:"aff_id,notnull,type:varchar(64)"`
	NegID         string    `bun:"neg_id,nullzero,type:varchar(64)"`
	Winner        string    `bun:"winner,nullzero,type:varchar(8)"`
	Forfeit       string    `bun:"forfeit,nullzero,type:varchar(8)"`
	AffSpeaks     *float64  `bun:"aff_speaks"`
	NegSpeaks     *float64  `bun:"neg_speaks"`
	AffRank       *float64  `bun:"aff_rank"`
	NegRank       *float64  `bun:"neg_rank"`
	Final         bool      `bun:"final,notnull,default:false"`
	SubmittedAt   time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
}

// Standing is a persisted row of the computed standings.
type Standing struct {
	bun.BaseModel  `bun:"table:standings,alias:s"`
	EventID        string `bun:"event_id,pk,type:varchar(64)"`
	RegistrationID string `bun:"registration_id,pk,type:varchar(64)"`
	TournamentID   string `bun:"tournament_id,notnull,type:varchar(64)"`

	Wins             int `bun:"wins,notnull"`
	Losses           int `bun:"losses,notnull"`
	Byes             int `bun:"byes,notnull"`
	ForfeitsGiven    int `bun:"forfeits_given,notnull"`
	ForfeitsReceived int `bun:"forfeits_received,notnull"`

	TotalSpeaks          float64 `bun:"total_speaks,notnull"`
	AvgSpeaks            float64 `bun:"avg_speaks,notnull"`
	AdjustedSpeaks       float64 `bun:"adjusted_speaks,notnull"`
	DoubleAdjustedSpeaks float64 `bun:"double_adjusted_speaks,notnull"`

	TotalRanks          float64 `bun:"total_ranks,notnull"`
	AvgRanks            float64 `bun:"avg_ranks,notnull"`
	AdjustedRanks       float64 `bun:"adjusted_ranks,notnull"`
	DoubleAdjustedRanks float64 `bun:"double_adjusted_ranks,notnull"`

	OppWins   int     `bun:"opp_wins,notnull"`
	OppWinPct float64 `bun:"opp_win_pct,notnull"`
	AffRounds int     `bun:"aff_rounds,notnull"`
	NegRounds int     `bun:"neg_rounds,notnull"`

	PrelimRank  *int `bun:"prelim_rank"`
	OverallRank *int `bun:"overall_rank"`
	IsBreaking  bool `bun:"is_breaking,notnull"`
	BreakSeed   *int `bun:"break_seed"`

	RoundsCompleted int       `bun:"rounds_completed,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// HeadToHeadRecord is a directed head-to-head row.
type HeadToHeadRecord struct {
	bun.BaseModel  `bun:"table:head_to_head,alias:h"`
	EventID        string  `bun:"event_id,pk,type:varchar(64)"`
	RegistrationID string  `bun:"registration_id,pk,type:varchar(64)"`
	OpponentID     string  `bun:"opponent_id,pk,type:varchar(64)"`
	Wins           int     `bun:"wins,notnull"`
	Losses         int     `bun:"losses,notnull"`
	SpeaksFor      float64 `bun:"speaks_for,notnull"`
	SpeaksAgainst  float64 `bun:"speaks_against,notnull"`
}

// BallotFromDomain maps a domain ballot to its row.
func BallotFromDomain(b standingsdomain.Ballot) *Ballot {
	return &Ballot{
		PairingID:    b.PairingID,
		TournamentID: b.TournamentID,
		EventID:      b.EventID,
		RoundNumber:  b.RoundNumber,
		AffID:        b.AffID,
		NegID:        b.NegID,
		Winner:       string(b.Winner),
		Forfeit:      string(b.Forfeit),
		AffSpeaks:    b.AffSpeaks,
		NegSpeaks:    b.NegSpeaks,
		AffRank:      b.AffRank,
		NegRank:      b.NegRank,
		Final:        b.Final,
	}
}

// ToDomain maps the row back to a domain ballot.
func (b *Ballot) ToDomain() standingsdomain.Ballot {
	return standingsdomain.Ballot{
		PairingID:    b.PairingID,
		TournamentID: b.TournamentID,
		EventID:      b.EventID,
		RoundNumber:  b.RoundNumber,
		AffID:        b.AffID,
		NegID:        b.NegID,
		Winner:       standingsdomain.Side(b.Winner),
		Forfeit:      standingsdomain.Side(b.Forfeit),
		AffSpeaks:    b.AffSpeaks,
		NegSpeaks:    b.NegSpeaks,
		AffRank:      b.AffRank,
		NegRank:      b.NegRank,
		Final:        b.Final,
	}
}

// StandingFromDomain maps a computed standing to its row.
func StandingFromDomain(s standingsdomain.ComputedStanding) Standing {
	return Standing{
		EventID:              s.EventID,
		RegistrationID:       s.RegistrationID,
		TournamentID:         s.TournamentID,
		Wins:                 s.Wins,
		Losses:               s.Losses,
		Byes:                 s.Byes,
		ForfeitsGiven:        s.ForfeitsGiven,
		ForfeitsReceived:     s.ForfeitsReceived,
		TotalSpeaks:          s.TotalSpeaks,
		AvgSpeaks:            s.AvgSpeaks,
		AdjustedSpeaks:       s.AdjustedSpeaks,
		DoubleAdjustedSpeaks: s.DoubleAdjustedSpeaks,
		TotalRanks:           s.TotalRanks,
		AvgRanks:             s.AvgRanks,
		AdjustedRanks:        s.AdjustedRanks,
		DoubleAdjustedRanks:  s.DoubleAdjustedRanks,
		OppWins:              s.OppWins,
		OppWinPct:            s.OppWinPct,
		AffRounds:            s.AffRounds,
		NegRounds:            s.NegRounds,
		PrelimRank:           s.PrelimRank,
		OverallRank:          s.OverallRank,
		IsBreaking:           s.IsBreaking,
		BreakSeed:            s.BreakSeed,
		RoundsCompleted:      s.RoundsCompleted,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// ToDomain maps the row back to a computed standing.
func (s *Standing) ToDomain() standingsdomain.ComputedStanding {
	return standingsdomain.ComputedStanding{
		TournamentID:         s.TournamentID,
		EventID:              s.EventID,
		RegistrationID:       s.RegistrationID,
		Wins:                 s.Wins,
		Losses:               s.Losses,
		Byes:                 s.Byes,
		ForfeitsGiven:        s.ForfeitsGiven,
		ForfeitsReceived:     s.ForfeitsReceived,
		TotalSpeaks:          s.TotalSpeaks,
		AvgSpeaks:            s.AvgSpeaks,
		AdjustedSpeaks:       s.AdjustedSpeaks,
		DoubleAdjustedSpeaks: s.DoubleAdjustedSpeaks,
		TotalRanks:           s.TotalRanks,
		AvgRanks:             s.AvgRanks,
		AdjustedRanks:        s.AdjustedRanks,
		DoubleAdjustedRanks:  s.DoubleAdjustedRanks,
		OppWins:              s.OppWins,
		OppWinPct:            s.OppWinPct,
		AffRounds:            s.AffRounds,
		NegRounds:            s.NegRounds,
		PrelimRank:           s.PrelimRank,
		OverallRank:          s.OverallRank,
		IsBreaking:           s.IsBreaking,
		BreakSeed:            s.BreakSeed,
		RoundsCompleted:      s.RoundsCompleted,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// HeadToHeadFromDomain maps a directed record of eventID to its row.
func HeadToHeadFromDomain(eventID string, h standingsdomain.HeadToHead) HeadToHeadRecord {
	return HeadToHeadRecord{
		EventID:        eventID,
		RegistrationID: h.RegistrationID,
		OpponentID:     h.OpponentID,
		Wins:           h.Wins,
		Losses:         h.Losses,
		SpeaksFor:      h.SpeaksFor,
		SpeaksAgainst:  h.SpeaksAgainst,
	}
}

func (h *HeadToHeadRecord) ToDomain() standingsdomain.HeadToHead {
	return standingsdomain.HeadToHead{
		RegistrationID: h.RegistrationID,
		OpponentID:     h.OpponentID,
		Wins:           h.Wins,
		Losses:         h.Losses,
		SpeaksFor:      h.SpeaksFor,
		SpeaksAgainst:  h.SpeaksAgainst,
	}
}
