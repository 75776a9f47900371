package scoring

import (
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
)

// MissingSpecialCards lists the special cards the scoring team did not
// capture. Only these can be declared doubled onto the opponent.
func MissingSpecialCards(round *entities.RoundData) []entities.SpecialCard {
	var missing []entities.SpecialCard
	for _, suit := range entities.Suits() {
		if !round.HasQueen(suit) {
			missing = append(missing, entities.NewQueen(suit, false))
		}
	}
	if round.KingOfHearts == nil {
		missing = append(missing, entities.NewKingOfHearts(false))
	}
	return missing
}

// ValidateDoubledToOpponent checks that every bonus card is among the cards
// the scoring team did not capture.
func ValidateDoubledToOpponent(round *entities.RoundData) error {
	allowed := make(map[string]bool)
	for _, c := range MissingSpecialCards(round) {
		allowed[c.Code()] = true
	}
	for _, c := range round.DoubledToOpponent {
		if !allowed[c.Code()] {
			return types.InvalidInput("%s was captured by the scoring team or carries no points, so it cannot be doubled onto the opponent", c.Code())
		}
	}
	return nil
}
