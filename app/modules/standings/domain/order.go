package standingsdomain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrEmptyTiebreakerOrder = errors.New("tiebreaker order is empty")
	ErrUnknownTiebreaker    = errors.New("unknown tiebreaker")
	ErrDuplicateTiebreaker  = errors.New("duplicate tiebreaker")
)

// DefaultTiebreakerOrder is used for events that never configured one.
var DefaultTiebreakerOrder = []TiebreakerType{
	TiebreakerWins,
	TiebreakerHeadToHead,
	TiebreakerAdjustedSpeaks,
	TiebreakerOppWinPct,
	TiebreakerCoinFlip,
}

// AllTiebreakers lists every supported criterion.
var AllTiebreakers = []TiebreakerType{
	TiebreakerWins,
	TiebreakerLosses,
	TiebreakerSpeaks,
	TiebreakerRanks,
	TiebreakerAdjustedSpeaks,
	TiebreakerAdjustedRanks,
	TiebreakerDoubleAdjustedSpeaks,
	TiebreakerDoubleAdjustedRanks,
	TiebreakerOppWins,
	TiebreakerOppWinPct,
	TiebreakerHeadToHead,
	TiebreakerCoinFlip,
}

// Known reports whether t is a supported criterion.
func (t TiebreakerType) Known() bool {
	return slices.Contains(AllTiebreakers, t)
}

// ParseTiebreakerOrder converts names into a validated order. Names are
// trimmed and lowercased; blanks are skipped.
func ParseTiebreakerOrder(names []string) ([]TiebreakerType, error) {
	order := make([]TiebreakerType, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		order = append(order, TiebreakerType(n))
	}
	if err := ValidateTiebreakerOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// ValidateTiebreakerOrder rejects empty orders, unknown names and repeats.
func ValidateTiebreakerOrder(order []TiebreakerType) error {
	if len(order) == 0 {
		return ErrEmptyTiebreakerOrder
	}
	seen := make(map[TiebreakerType]struct{}, len(order))
	for _, t := range order {
		if !t.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownTiebreaker, t)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTiebreaker, t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// WithoutCoinFlip returns order minus coin_flip, for detecting true ties.
func WithoutCoinFlip(order []TiebreakerType) []TiebreakerType {
	out := make([]TiebreakerType, 0, len(order))
	for _, t := range order {
		if t != TiebreakerCoinFlip {
			out = append(out, t)
		}
	}
	return out
}

// OrderStrings converts an order to plain strings for storage.
func OrderStrings(order []TiebreakerType) []string {
	out := make([]string, len(order))
	for i, t := range order {
		out[i] = string(t)
	}
	return out
}
