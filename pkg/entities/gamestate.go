package entities

import (
	"encoding/json"
	"time"
)

// RoundTotal is what both teams' scores in a round always add up to
const RoundTotal = -500

// LedgerPhase is where a game ledger sits in its round cycle
type LedgerPhase string

const (
	PhaseAwaitingRoundData LedgerPhase = "AWAITING_ROUND_DATA"
	PhaseRoundClosed       LedgerPhase = "ROUND_CLOSED"
)

// RoundResult is the outcome of finalizing one round
type RoundResult struct {
	RoundNumber   int  `json:"round_number"`
	Team1Score    int  `json:"team1_round_score"`
	Team2Score    int  `json:"team2_round_score"`
	Team1Total    int  `json:"team1_total"`
	Team2Total    int  `json:"team2_total"`
	ExpectedTotal int  `json:"expected_total"`
	ActualTotal   int  `json:"actual_total"`
	IsValid       bool `json:"is_valid"`
}

// GameStatus is the lifecycle of a persisted game
type GameStatus string

const (
	GameStatusActive   GameStatus = "ACTIVE"
	GameStatusArchived GameStatus = "ARCHIVED"
)

// GameRecord describes one game session in a channel
type GameRecord struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channel_id"`
	Team1Name string     `json:"team1_name"`
	Team2Name string     `json:"team2_name"`
	Status    GameStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RoundRecord is one line of the persisted round log
type RoundRecord struct {
	GameID     string    `json:"game_id"`
	ChannelID  string    `json:"channel_id"`
	Round      int       `json:"round"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
	RecordedAt time.Time `json:"recorded_at"`

	// Breakdown is the scoring breakdown as JSON, when one was recorded
	Breakdown json.RawMessage `json:"breakdown,omitempty"`
}

// NewRoundRecord builds the log line for a finalized round
func NewRoundRecord(game *GameRecord, result *RoundResult, at time.Time) *RoundRecord {
	return &RoundRecord{
		GameID:     game.ID,
		ChannelID:  game.ChannelID,
		Round:      result.RoundNumber,
		Team1Score: result.Team1Score,
		Team2Score: result.Team2Score,
		RecordedAt: at,
	}
}
