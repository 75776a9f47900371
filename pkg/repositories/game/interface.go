package game

import (
	"context"

	"github.com/fadedpez/cccounter/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository defines storage operations for games and their round logs
type Repository interface {
	// Games
	SaveGame(ctx context.Context, game *entities.GameRecord) error
	GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error)
	// GetActiveGame returns nil, nil when the channel has no active game
	GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error)
	ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error)
	// GetChannelGames returns the most recent games of a channel, newest first
	GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error)

	// Round log
	SaveRound(ctx context.Context, round *entities.RoundRecord) error
	// GetRounds returns a game's rounds ordered by round number
	GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error)
	DeleteRounds(ctx context.Context, gameID string) error

	// Close closes any resources used by the repository
	Close() error
}
