// Package detection talks to a remote playing-card classifier and reduces
// its output to the counts a round needs.
//
// Classifier failures are returned as EXTERNAL_SUPPLIER errors and stop here.
// Scoring only ever sees the derived counts.
package detection

import (
	"context"
	"sort"

	"github.com/fadedpez/cccounter/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_detection

// DetectedCard is one card the classifier recognized
type DetectedCard struct {
	Card       *entities.Card
	Confidence float64
	// Class is the classifier's raw label
	Class string
}

// Detector identifies cards in an image
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]DetectedCard, error)
}

// RoundFacts are the counts derived from a detection
type RoundFacts struct {
	TotalCards   int
	Diamonds     int
	QueenSuits   []entities.Suit
	KingOfHearts bool
	// Ignored counts detections dropped for low confidence or as duplicates
	Ignored int
	Cards   []string
}

// ToRoundFacts keeps detections at or above minConfidence, counts each card
// once and derives the round counts.
func ToRoundFacts(cards []DetectedCard, minConfidence float64) *RoundFacts {
	facts := &RoundFacts{}
	seen := make(map[string]bool)
	queens := make(map[entities.Suit]bool)

	for _, dc := range cards {
		if dc.Card == nil || dc.Confidence < minConfidence {
			facts.Ignored++
			continue
		}
		code := dc.Card.Code()
		if seen[code] {
			facts.Ignored++
			continue
		}
		seen[code] = true

		facts.TotalCards++
		facts.Cards = append(facts.Cards, code)
		if dc.Card.Suit == entities.Diamonds {
			facts.Diamonds++
		}
		switch {
		case dc.Card.Rank == entities.Queen:
			queens[dc.Card.Suit] = true
		case dc.Card.Rank == entities.King && dc.Card.Suit == entities.Hearts:
			facts.KingOfHearts = true
		}
	}

	for _, suit := range entities.Suits() {
		if queens[suit] {
			facts.QueenSuits = append(facts.QueenSuits, suit)
		}
	}
	sort.Strings(facts.Cards)
	return facts
}

// Tricks is the whole number of tricks the detected cards make
func (f *RoundFacts) Tricks() int {
	return f.TotalCards / 4
}

// ToRoundData builds round input from the facts. Nothing is marked doubled:
// the photo cannot show declarations. Counts are passed through unchecked,
// so a misdetection fails RoundData.Validate.
func (f *RoundFacts) ToRoundData() *entities.RoundData {
	round := &entities.RoundData{
		TotalCardsCaptured: f.TotalCards,
		DiamondCount:       f.Diamonds,
	}
	for _, suit := range f.QueenSuits {
		round.Queens = append(round.Queens, entities.NewQueen(suit, false))
	}
	if f.KingOfHearts {
		king := entities.NewKingOfHearts(false)
		round.KingOfHearts = &king
	}
	return round
}
