package entities

import "fmt"

// Base values of the cards that carry scoring weight
const (
	QueenBaseValue        = 25
	KingOfHeartsBaseValue = 75
)

// SpecialCard is a Queen of any suit or the King of Hearts, plus whether it
// was doubled during the round.
type SpecialCard struct {
	Rank      Rank
	Suit      Suit
	IsDoubled bool
}

// NewQueen creates the Queen of the given suit
func NewQueen(suit Suit, doubled bool) SpecialCard {
	return SpecialCard{Rank: Queen, Suit: suit, IsDoubled: doubled}
}

// NewKingOfHearts creates the King of Hearts
func NewKingOfHearts(doubled bool) SpecialCard {
	return SpecialCard{Rank: King, Suit: Hearts, IsDoubled: doubled}
}

// NewSpecialCard converts a plain card; ok is false when the card has no
// scoring weight.
func NewSpecialCard(c *Card, doubled bool) (SpecialCard, bool) {
	sc := SpecialCard{Rank: c.Rank, Suit: c.Suit, IsDoubled: doubled}
	return sc, sc.IsSpecial()
}

// IsQueen reports whether the card is a Queen
func (c SpecialCard) IsQueen() bool {
	return c.Rank == Queen
}

// IsKingOfHearts reports whether the card is the King of Hearts
func (c SpecialCard) IsKingOfHearts() bool {
	return c.Rank == King && c.Suit == Hearts
}

// IsSpecial reports whether the card has a non-zero base value
func (c SpecialCard) IsSpecial() bool {
	return c.BaseValue() > 0
}

// BaseValue is 25 for a Queen, 75 for the King of Hearts and 0 otherwise
func (c SpecialCard) BaseValue() int {
	switch {
	case c.IsQueen():
		return QueenBaseValue
	case c.IsKingOfHearts():
		return KingOfHeartsBaseValue
	}
	return 0
}

// ActualValue is the base value, doubled when the card was doubled
func (c SpecialCard) ActualValue() int {
	if c.IsDoubled {
		return c.BaseValue() * 2
	}
	return c.BaseValue()
}

// Card returns the plain card
func (c SpecialCard) Card() *Card {
	return NewCard(c.Suit, c.Rank)
}

// Code returns the compact card code, e.g. QH
func (c SpecialCard) Code() string {
	return c.Card().Code()
}

func (c SpecialCard) String() string {
	if c.IsDoubled {
		return fmt.Sprintf("%s%s (doubled)", c.Rank, c.Suit.Symbol())
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}
