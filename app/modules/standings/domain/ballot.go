package standingsdomain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidBallot = errors.New("invalid ballot")

var validate = validator.New()

// Ballot is a judge's decision for one pairing as it enters the system.
// NegID is empty for a bye. Forfeit names the side that forfeited.
type Ballot struct {
	PairingID    string   `json:"pairing_id" yaml:"pairing_id" validate:"required,max=64"`
	TournamentID string   `json:"tournament_id" yaml:"tournament_id" validate:"required,max=64"`
	EventID      string   `json:"event_id" yaml:"event_id" validate:"required,max=64"`
	RoundNumber  int      `json:"round_number" yaml:"round_number" validate:"min=1"`
	AffID        string   `json:"aff_id" yaml:"aff_id" validate:"required,max=64"`
	NegID        string   `json:"neg_id,omitempty" yaml:"neg_id" validate:"omitempty,max=64,nefield=AffID"`
	Winner       Side     `json:"winner,omitempty" yaml:"winner" validate:"omitempty,oneof=aff neg"`
	AffSpeaks    *float64 `json:"aff_speaks,omitempty" yaml:"aff_speaks" validate:"omitempty,min=0,max=100"`
	NegSpeaks    *float64 `json:"neg_speaks,omitempty" yaml:"neg_speaks" validate:"omitempty,min=0,max=100"`
	AffRank      *float64 `json:"aff_rank,omitempty" yaml:"aff_rank" validate:"omitempty,min=1"`
	NegRank      *float64 `json:"neg_rank,omitempty" yaml:"neg_rank" validate:"omitempty,min=1"`
	Forfeit      Side     `json:"forfeit,omitempty" yaml:"forfeit" validate:"omitempty,oneof=aff neg"`
	Final        bool     `json:"final" yaml:"final"`
}

// IsBye reports whether the pairing had no opponent.
func (b Ballot) IsBye() bool { return b.NegID == "" }

// Validate checks field constraints and the cross-field rules a tag cannot express.
func (b Ballot) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBallot, err)
	}
	if b.IsBye() {
		if b.Forfeit != "" {
			return fmt.Errorf("%w: a bye cannot be forfeited", ErrInvalidBallot)
		}
		return nil
	}
	if b.Forfeit != "" && b.Winner == b.Forfeit {
		return fmt.Errorf("%w: forfeiting side cannot win", ErrInvalidBallot)
	}
	if b.Final && b.Forfeit == "" && b.Winner == "" {
		return fmt.Errorf("%w: final ballot has no winner", ErrInvalidBallot)
	}
	return nil
}

// ParticipantResult pairs a registration with its view of a ballot.
type ParticipantResult struct {
	RegistrationID string
	Result         RoundResult
}

// RoundResults converts the ballot into one RoundResult per participant.
// Non-final ballots produce pending results.
func (b Ballot) RoundResults() []ParticipantResult {
	if b.IsBye() {
		r := RoundResult{RoundNumber: b.RoundNumber, Outcome: OutcomePending}
		if b.Final {
			r.Outcome = OutcomeBye
			r.Speaks = b.AffSpeaks
			r.Rank = b.AffRank
		}
		return []ParticipantResult{{RegistrationID: b.AffID, Result: r}}
	}

	aff := RoundResult{RoundNumber: b.RoundNumber, Side: SideAff, OpponentID: b.NegID, Outcome: OutcomePending}
	neg := RoundResult{RoundNumber: b.RoundNumber, Side: SideNeg, OpponentID: b.AffID, Outcome: OutcomePending}
	if b.Final {
		aff.Outcome, neg.Outcome = b.outcomes()
		aff.Speaks, neg.Speaks = b.AffSpeaks, b.NegSpeaks
		aff.Rank, neg.Rank = b.AffRank, b.NegRank
	}
	return []ParticipantResult{
		{RegistrationID: b.AffID, Result: aff},
		{RegistrationID: b.NegID, Result: neg},
	}
}

func (b Ballot) outcomes() (aff, neg Outcome) {
	switch {
	case b.Forfeit == SideAff:
		return OutcomeForfeitGiven, OutcomeForfeitReceived
	case b.Forfeit == SideNeg:
		return OutcomeForfeitReceived, OutcomeForfeitGiven
	case b.Winner == SideAff:
		return OutcomeWin, OutcomeLoss
	case b.Winner == SideNeg:
		return OutcomeLoss, OutcomeWin
	default:
		return OutcomePending, OutcomePending
	}
}

// ResultsByRegistration groups the round results of many ballots by
// registration. When a pairing appears more than once the last ballot wins.
func ResultsByRegistration(ballots []Ballot) map[string][]RoundResult {
	latest := make(map[string]Ballot, len(ballots))
	ids := make([]string, 0, len(ballots))
	for _, b := range ballots {
		if _, ok := latest[b.PairingID]; !ok {
			ids = append(ids, b.PairingID)
		}
		latest[b.PairingID] = b
	}
	sort.Strings(ids)

	out := make(map[string][]RoundResult)
	for _, id := range ids {
		for _, pr := range latest[id].RoundResults() {
			out[pr.RegistrationID] = append(out[pr.RegistrationID], pr.Result)
		}
	}
	return out
}
