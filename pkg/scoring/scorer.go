// Package scoring turns one round's captured-card facts into signed points.
//
// Every term is computed on its own and summed, so the result does not depend
// on the order in which the facts were recorded. Scoring never mutates the
// round it is given.
package scoring

import (
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
)

// Scoring constants
const (
	PointsPerTrick     = 15
	CardsPerTrick      = 4
	PointsPerDiamond   = 10
	PointsPerQueen     = entities.QueenBaseValue
	PointsKingOfHearts = entities.KingOfHeartsBaseValue
	RoundTotal         = entities.RoundTotal
	BonusPerQueen      = entities.QueenBaseValue
	BonusKingOfHearts  = entities.KingOfHeartsBaseValue
)

// CountLine is a counted term of the breakdown
type CountLine struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

// CardsLine is a term made of individual special cards
type CardsLine struct {
	Cards  []string `json:"cards"`
	Points int      `json:"points"`
}

// KingLine is the King of Hearts term
type KingLine struct {
	Exists  bool `json:"exists"`
	Doubled bool `json:"doubled"`
	Points  int  `json:"points"`
}

// Breakdown is the scored result of one round for the scoring team
type Breakdown struct {
	Tricks       CountLine `json:"tricks"`
	Diamonds     CountLine `json:"diamonds"`
	Queens       CardsLine `json:"queens"`
	KingOfHearts KingLine  `json:"king_heart"`
	DoubledBonus CardsLine `json:"doubled_bonus"`
	Total        int       `json:"total"`

	// LeftoverCards is how many captured cards did not make a whole trick.
	// Always zero when the scorer runs with strict tricks.
	LeftoverCards int `json:"leftover_cards,omitempty"`
}

// OpponentTotal is the other team's score for the same round
func (b *Breakdown) OpponentTotal() int {
	return RoundTotal - b.Total
}

// Option configures a Scorer
type Option func(*Scorer)

// WithStrictTricks makes the scorer reject card counts that are not a
// multiple of CardsPerTrick instead of dropping the remainder.
func WithStrictTricks() Option {
	return func(s *Scorer) {
		s.strictTricks = true
	}
}

// Scorer scores rounds. The zero value truncates partial tricks.
type Scorer struct {
	strictTricks bool
}

// NewScorer creates a scorer
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StrictTricks reports whether partial tricks are rejected
func (s *Scorer) StrictTricks() bool {
	return s.strictTricks
}

// Score validates the round and returns its breakdown
func (s *Scorer) Score(round *entities.RoundData) (*Breakdown, error) {
	if round == nil {
		return nil, types.InvalidInput("round data is required")
	}
	if err := round.Validate(); err != nil {
		return nil, err
	}
	leftover := round.TotalCardsCaptured % CardsPerTrick
	if s.strictTricks && leftover != 0 {
		return nil, types.InvalidInput("%d cards do not make whole tricks of %d", round.TotalCardsCaptured, CardsPerTrick)
	}

	b := &Breakdown{
		Tricks:        CountLine{Count: TrickCount(round.TotalCardsCaptured), Points: TricksPoints(round.TotalCardsCaptured)},
		Diamonds:      CountLine{Count: round.DiamondCount, Points: DiamondPoints(round.DiamondCount)},
		Queens:        CardsLine{Cards: labels(round.Queens), Points: QueensPoints(round.Queens)},
		KingOfHearts:  KingLine{Exists: round.KingOfHearts != nil, Points: KingPoints(round.KingOfHearts)},
		DoubledBonus:  CardsLine{Cards: labels(round.DoubledToOpponent), Points: BonusPoints(round.DoubledToOpponent)},
		LeftoverCards: leftover,
	}
	if round.KingOfHearts != nil {
		b.KingOfHearts.Doubled = round.KingOfHearts.IsDoubled
	}

	b.Total = b.Tricks.Points + b.Diamonds.Points + b.Queens.Points + b.KingOfHearts.Points + b.DoubledBonus.Points
	return b, nil
}

var defaultScorer = NewScorer()

// Score scores a round with the default, truncating scorer
func Score(round *entities.RoundData) (*Breakdown, error) {
	return defaultScorer.Score(round)
}

// TrickCount is the number of whole tricks in a card count
func TrickCount(totalCards int) int {
	return totalCards / CardsPerTrick
}

// TricksPoints is -15 per whole trick
func TricksPoints(totalCards int) int {
	return -TrickCount(totalCards) * PointsPerTrick
}

// DiamondPoints is -10 per diamond
func DiamondPoints(diamonds int) int {
	return -diamonds * PointsPerDiamond
}

// QueensPoints subtracts each captured queen's actual (possibly doubled) value
func QueensPoints(queens []entities.SpecialCard) int {
	total := 0
	for _, q := range queens {
		total -= q.ActualValue()
	}
	return total
}

// KingPoints subtracts the captured King of Hearts' actual value
func KingPoints(king *entities.SpecialCard) int {
	if king == nil {
		return 0
	}
	return -king.ActualValue()
}

// BonusPoints adds the base value of each card doubled onto the opponent.
// The doubled flag is ignored: the bonus is never doubled again.
func BonusPoints(doubledToOpponent []entities.SpecialCard) int {
	total := 0
	for _, c := range doubledToOpponent {
		total += c.BaseValue()
	}
	return total
}

func labels(cards []entities.SpecialCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
