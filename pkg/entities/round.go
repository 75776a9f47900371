package entities

import (
	"github.com/fadedpez/cccounter/internal/types"
)

// Limits of a single round's capture facts
const (
	MaxDiamonds = 13
	MaxQueens   = 4
)

// RoundData holds what the scoring team captured in one round, before scoring.
type RoundData struct {
	TotalCardsCaptured int
	DiamondCount       int

	// Queens captured by the scoring team
	Queens []SpecialCard
	// KingOfHearts is nil unless the scoring team captured it
	KingOfHearts *SpecialCard

	// DoubledToOpponent holds special cards the scoring team declared doubled
	// that the opposing team captured. They earn the scoring team a bonus.
	DoubledToOpponent []SpecialCard
}

// HasQueen reports whether the scoring team captured the Queen of suit
func (r *RoundData) HasQueen(suit Suit) bool {
	for _, q := range r.Queens {
		if q.Suit == suit {
			return true
		}
	}
	return false
}

// Validate checks the contract the scorer relies on. Every violation is an
// INVALID_INPUT GameError.
func (r *RoundData) Validate() error {
	if r.TotalCardsCaptured < 0 {
		return types.InvalidInput("total cards captured cannot be negative (got %d)", r.TotalCardsCaptured)
	}
	if r.DiamondCount < 0 {
		return types.InvalidInput("diamond count cannot be negative (got %d)", r.DiamondCount)
	}
	if r.DiamondCount > MaxDiamonds {
		return types.InvalidInput("diamond count %d exceeds %d", r.DiamondCount, MaxDiamonds)
	}
	if len(r.Queens) > MaxQueens {
		return types.InvalidInput("at most %d queens can be captured (got %d)", MaxQueens, len(r.Queens))
	}

	captured := make(map[Suit]bool, len(r.Queens))
	for _, q := range r.Queens {
		if !q.IsQueen() || !q.Suit.Valid() {
			return types.InvalidInput("%s is not a queen", q.Code())
		}
		if captured[q.Suit] {
			return types.InvalidInput("queen of %s listed twice", q.Suit)
		}
		captured[q.Suit] = true
	}

	if r.KingOfHearts != nil && !r.KingOfHearts.IsKingOfHearts() {
		return types.InvalidInput("%s is not the king of hearts", r.KingOfHearts.Code())
	}

	seen := make(map[string]bool, len(r.DoubledToOpponent))
	for _, c := range r.DoubledToOpponent {
		if !c.IsSpecial() || !c.Suit.Valid() {
			return types.InvalidInput("%s carries no points and cannot be doubled onto the opponent", c.Code())
		}
		if seen[c.Code()] {
			return types.InvalidInput("%s listed twice as doubled onto the opponent", c.Code())
		}
		seen[c.Code()] = true

		if c.IsQueen() && captured[c.Suit] {
			return types.InvalidInput("queen of %s cannot be both captured and doubled onto the opponent", c.Suit)
		}
		if c.IsKingOfHearts() && r.KingOfHearts != nil {
			return types.InvalidInput("king of hearts cannot be both captured and doubled onto the opponent")
		}
	}

	return nil
}
