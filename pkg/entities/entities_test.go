package entities

import (
	"testing"
	"time"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func TestParseCard(t *testing.T) {
	testCases := []struct {
		code string
		suit Suit
		rank Rank
	}{
		{"QH", Hearts, Queen},
		{"kh", Hearts, King},
		{"10D", Diamonds, Ten},
		{"TD", Diamonds, Ten},
		{"7c", Clubs, Seven},
		{"AS", Spades, Ace},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			card, err := ParseCard(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.suit, card.Suit)
			assert.Equal(t, tc.rank, card.Rank)
		})
	}

	for _, bad := range []string{"", "Q", "QX", "ZH", "11S"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "code %q should not parse", bad)
	}
}

func TestCardCodeRoundTrip(t *testing.T) {
	for _, suit := range Suits() {
		for _, rank := range Ranks() {
			card := NewCard(suit, rank)
			parsed, err := ParseCard(card.Code())
			require.NoError(t, err)
			assert.Equal(t, card, parsed)
		}
	}
}

func TestSpecialCardValues(t *testing.T) {
	testCases := []struct {
		name   string
		card   SpecialCard
		base   int
		actual int
	}{
		{"queen", NewQueen(Spades, false), 25, 25},
		{"doubled queen", NewQueen(Hearts, true), 25, 50},
		{"king of hearts", NewKingOfHearts(false), 75, 75},
		{"doubled king of hearts", NewKingOfHearts(true), 75, 150},
		{"king of spades", SpecialCard{Rank: King, Suit: Spades}, 0, 0},
		{"doubled king of clubs", SpecialCard{Rank: King, Suit: Clubs, IsDoubled: true}, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.base, tc.card.BaseValue())
			assert.Equal(t, tc.actual, tc.card.ActualValue())
			assert.Equal(t, tc.base > 0, tc.card.IsSpecial())
		})
	}
}

func TestNewSpecialCard(t *testing.T) {
	sc, ok := NewSpecialCard(NewCard(Clubs, Queen), true)
	assert.True(t, ok)
	assert.Equal(t, 50, sc.ActualValue())

	_, ok = NewSpecialCard(NewCard(Diamonds, King), false)
	assert.False(t, ok)
}

func TestRoundDataValidate(t *testing.T) {
	kh := NewKingOfHearts(false)
	jack := SpecialCard{Rank: Jack, Suit: Hearts}

	testCases := []struct {
		name  string
		round RoundData
		ok    bool
	}{
		{"empty round", RoundData{}, true},
		{"typical round", RoundData{TotalCardsCaptured: 20, DiamondCount: 3, Queens: []SpecialCard{NewQueen(Hearts, true)}, KingOfHearts: &kh}, true},
		{"bonus on missing cards", RoundData{Queens: []SpecialCard{NewQueen(Hearts, false)}, DoubledToOpponent: []SpecialCard{NewQueen(Clubs, true), NewKingOfHearts(true)}}, true},
		{"uneven card count is allowed here", RoundData{TotalCardsCaptured: 18}, true},
		{"negative cards", RoundData{TotalCardsCaptured: -4}, false},
		{"negative diamonds", RoundData{DiamondCount: -1}, false},
		{"too many diamonds", RoundData{DiamondCount: 14}, false},
		{"five queens", RoundData{Queens: []SpecialCard{NewQueen(Hearts, false), NewQueen(Spades, false), NewQueen(Clubs, false), NewQueen(Diamonds, false), NewQueen(Hearts, false)}}, false},
		{"duplicate queen", RoundData{Queens: []SpecialCard{NewQueen(Hearts, false), NewQueen(Hearts, true)}}, false},
		{"non-queen in queens", RoundData{Queens: []SpecialCard{kh}}, false},
		{"wrong king", RoundData{KingOfHearts: &SpecialCard{Rank: King, Suit: Spades}}, false},
		{"queen captured and doubled onto opponent", RoundData{Queens: []SpecialCard{NewQueen(Clubs, false)}, DoubledToOpponent: []SpecialCard{NewQueen(Clubs, true)}}, false},
		{"king captured and doubled onto opponent", RoundData{KingOfHearts: &kh, DoubledToOpponent: []SpecialCard{NewKingOfHearts(true)}}, false},
		{"worthless card doubled onto opponent", RoundData{DoubledToOpponent: []SpecialCard{jack}}, false},
		{"duplicate bonus card", RoundData{DoubledToOpponent: []SpecialCard{NewQueen(Clubs, true), NewQueen(Clubs, false)}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.round.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, types.IsGameError(err, types.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestNewRoundRecord(t *testing.T) {
	game := &GameRecord{ID: "g1", ChannelID: "c1"}
	result := &RoundResult{RoundNumber: 2, Team1Score: -180, Team2Score: -320}

	rec := NewRoundRecord(game, result, fixedTime)

	assert.Equal(t, "g1", rec.GameID)
	assert.Equal(t, "c1", rec.ChannelID)
	assert.Equal(t, 2, rec.Round)
	assert.Equal(t, -180, rec.Team1Score)
	assert.Equal(t, -320, rec.Team2Score)
	assert.Equal(t, RoundTotal, rec.Team1Score+rec.Team2Score)
}
