package entities

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "SPADES"
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
)

// Suits lists every suit in display order
func Suits() []Suit {
	return []Suit{Spades, Hearts, Diamonds, Clubs}
}

// Code returns the one-letter suit code used in card codes
func (s Suit) Code() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	}
	return "?"
}

// Symbol returns the suit glyph
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return "?"
}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

// ParseSuit accepts a suit code (H), name (heart, hearts) or glyph (♥)
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SPADE", "SPADES", "♠":
		return Spades, nil
	case "H", "HEART", "HEARTS", "♥":
		return Hearts, nil
	case "D", "DIAMOND", "DIAMONDS", "♦":
		return Diamonds, nil
	case "C", "CLUB", "CLUBS", "♣":
		return Clubs, nil
	}
	return "", fmt.Errorf("unknown suit %q", s)
}

// Rank represents a card rank
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists all thirteen ranks
func Ranks() []Rank {
	return []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
}

// ParseRank accepts a rank code, with T and 1 as aliases for Ten
func ParseRank(s string) (Rank, error) {
	r := strings.ToUpper(strings.TrimSpace(s))
	switch r {
	case "T", "1":
		return Ten, nil
	}
	for _, rank := range Ranks() {
		if string(rank) == r {
			return rank, nil
		}
	}
	return "", fmt.Errorf("unknown rank %q", s)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) *Card {
	return &Card{
		Suit: suit,
		Rank: rank,
	}
}

// String returns the string representation of the card
func (c *Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Code returns the compact rank+suit code, e.g. QH or 10D
func (c *Card) Code() string {
	return string(c.Rank) + c.Suit.Code()
}

// ParseCard parses a rank+suit code such as QH, KH, 10D or 7c
func ParseCard(code string) (*Card, error) {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return nil, fmt.Errorf("card code %q is too short", code)
	}

	suit, err := ParseSuit(code[len(code)-1:])
	if err != nil {
		return nil, fmt.Errorf("card code %q: %w", code, err)
	}
	rank, err := ParseRank(code[:len(code)-1])
	if err != nil {
		return nil, fmt.Errorf("card code %q: %w", code, err)
	}
	return NewCard(suit, rank), nil
}
