package session

import (
	"context"

	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/fadedpez/cccounter/pkg/ledger"
	"github.com/fadedpez/cccounter/pkg/scoring"
)

// RoundOutcome is what playing one round produced
type RoundOutcome struct {
	Game      *entities.GameRecord
	Breakdown *scoring.Breakdown
	Result    *entities.RoundResult
	// Persisted is false when the round log write failed. The in-memory
	// ledger still counts the round and the write is retried before the
	// next round is saved.
	Persisted bool
	// Unsaved is the number of rounds waiting to be written
	Unsaved int
}

// GameView is a read-only view of a channel's game
type GameView struct {
	Game   *entities.GameRecord
	Ledger ledger.Snapshot
}

// GameService runs channel games for the bot
type GameService interface {
	NewGame(ctx context.Context, channelID, team1Name, team2Name string) (*entities.GameRecord, error)
	PlayRound(ctx context.Context, channelID string, round *entities.RoundData) (*RoundOutcome, error)
	Preview(round *entities.RoundData) (*scoring.Breakdown, error)
	View(ctx context.Context, channelID string) (*GameView, error)
	Reset(ctx context.Context, channelID string) (*entities.GameRecord, error)
}
