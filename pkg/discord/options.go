package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/fadedpez/cccounter/pkg/scoring"
)

// Round option names shared by /round and /preview
const (
	optCards    = "cards"
	optDiamonds = "diamonds"
	optQueens   = "queens"
	optKing     = "king"
	optDoubled  = "doubled"
	optBonus    = "bonus"
)

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := m[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func badOption(format string, args ...interface{}) error {
	return types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// splitCodes splits "QH, KH" or "h d s" into tokens
func splitCodes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '/'
	})
}

// parseQueenSuits accepts suits ("H", "hearts", "♥") or queen codes ("QH")
func parseQueenSuits(s string) ([]entities.Suit, error) {
	var suits []entities.Suit
	seen := make(map[entities.Suit]bool)
	for _, token := range splitCodes(s) {
		suit, err := entities.ParseSuit(token)
		if err != nil {
			card, cardErr := entities.ParseCard(token)
			if cardErr != nil || card.Rank != entities.Queen {
				return nil, badOption("%q is not a queen suit, use H D C S or codes like QH", token)
			}
			suit = card.Suit
		}
		if seen[suit] {
			return nil, badOption("queen of %s listed twice", suit)
		}
		seen[suit] = true
		suits = append(suits, suit)
	}
	return suits, nil
}

// parseSpecialCards parses codes of queens or the king of hearts
func parseSpecialCards(s, option string) ([]entities.SpecialCard, error) {
	var out []entities.SpecialCard
	for _, token := range splitCodes(s) {
		card, err := entities.ParseCard(token)
		if err != nil {
			return nil, badOption("%s: %q is not a card code like QH or KH", option, token)
		}
		special, ok := entities.NewSpecialCard(card, false)
		if !ok {
			return nil, badOption("%s: %s carries no points, only queens and KH count", option, card.Code())
		}
		out = append(out, special)
	}
	return out, nil
}

// parseRoundOptions turns /round and /preview options into round data.
// doubled names captured cards the opponent doubled; bonus names cards the
// team doubled that the opponent ended up taking.
func parseRoundOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) (*entities.RoundData, error) {
	m := optionMap(opts)

	cards, ok := m[optCards]
	if !ok {
		return nil, badOption("cards is required")
	}
	diamonds, ok := m[optDiamonds]
	if !ok {
		return nil, badOption("diamonds is required")
	}

	round := &entities.RoundData{
		TotalCardsCaptured: int(cards.IntValue()),
		DiamondCount:       int(diamonds.IntValue()),
	}

	suits, err := parseQueenSuits(stringOption(m, optQueens))
	if err != nil {
		return nil, err
	}
	for _, suit := range suits {
		round.Queens = append(round.Queens, entities.NewQueen(suit, false))
	}

	if king, ok := m[optKing]; ok && king.BoolValue() {
		kh := entities.NewKingOfHearts(false)
		round.KingOfHearts = &kh
	}

	doubled, err := parseSpecialCards(stringOption(m, optDoubled), optDoubled)
	if err != nil {
		return nil, err
	}
	for _, c := range doubled {
		if err := markDoubled(round, c); err != nil {
			return nil, err
		}
	}

	round.DoubledToOpponent, err = parseSpecialCards(stringOption(m, optBonus), optBonus)
	if err != nil {
		return nil, err
	}
	for i := range round.DoubledToOpponent {
		round.DoubledToOpponent[i].IsDoubled = true
	}
	if err := scoring.ValidateDoubledToOpponent(round); err != nil {
		return nil, err
	}

	return round, nil
}

func markDoubled(round *entities.RoundData, c entities.SpecialCard) error {
	if c.IsKingOfHearts() {
		if round.KingOfHearts == nil {
			return badOption("doubled: KH was not captured, set king:true or use bonus")
		}
		round.KingOfHearts.IsDoubled = true
		return nil
	}
	for i := range round.Queens {
		if round.Queens[i].Suit == c.Suit {
			round.Queens[i].IsDoubled = true
			return nil
		}
	}
	return badOption("doubled: %s was not captured, add it to queens or use bonus", c.Code())
}
