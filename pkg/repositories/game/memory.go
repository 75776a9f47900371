package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Map of gameID to game
	games map[string]*entities.GameRecord
	// Map of gameID to its round log
	rounds map[string][]*entities.RoundRecord
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		games:  make(map[string]*entities.GameRecord),
		rounds: make(map[string][]*entities.RoundRecord),
	}
}

func errGameNotFound(gameID string) error {
	return types.NewGameError(types.ErrGameNotFound, fmt.Sprintf("game %s not found", gameID))
}

// SaveGame stores or replaces a game
func (r *MemoryRepository) SaveGame(ctx context.Context, game *entities.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *game
	r.games[game.ID] = &stored
	return nil
}

// GetGame retrieves a game by ID
func (r *MemoryRepository) GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, exists := r.games[gameID]
	if !exists {
		return nil, errGameNotFound(gameID)
	}
	out := *game
	return &out, nil
}

// GetActiveGame retrieves the active game of a channel
func (r *MemoryRepository) GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *entities.GameRecord
	for _, game := range r.games {
		if game.ChannelID != channelID || game.Status != entities.GameStatusActive {
			continue
		}
		if latest == nil || game.CreatedAt.After(latest.CreatedAt) {
			latest = game
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// ListActiveGames returns every active game
func (r *MemoryRepository) ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]*entities.GameRecord, 0)
	for _, game := range r.games {
		if game.Status == entities.GameStatusActive {
			out := *game
			games = append(games, &out)
		}
	}
	sortNewestFirst(games)
	return games, nil
}

// GetChannelGames retrieves the recent games of a channel
func (r *MemoryRepository) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]*entities.GameRecord, 0)
	for _, game := range r.games {
		if game.ChannelID == channelID {
			out := *game
			games = append(games, &out)
		}
	}
	sortNewestFirst(games)

	if limit > 0 && len(games) > limit {
		return games[:limit], nil
	}
	return games, nil
}

// SaveRound appends a round to its game's log
func (r *MemoryRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[round.GameID]; !exists {
		return errGameNotFound(round.GameID)
	}
	for _, existing := range r.rounds[round.GameID] {
		if existing.Round == round.Round {
			return types.NewGameError(types.ErrDatabaseError, fmt.Sprintf("round %d of game %s already recorded", round.Round, round.GameID))
		}
	}

	stored := *round
	r.rounds[round.GameID] = append(r.rounds[round.GameID], &stored)
	return nil
}

// GetRounds retrieves a game's round log
func (r *MemoryRepository) GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.rounds[gameID]
	rounds := make([]*entities.RoundRecord, 0, len(stored))
	for _, round := range stored {
		out := *round
		rounds = append(rounds, &out)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Round < rounds[j].Round })
	return rounds, nil
}

// DeleteRounds clears a game's round log
func (r *MemoryRepository) DeleteRounds(ctx context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rounds, gameID)
	return nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}

func sortNewestFirst(games []*entities.GameRecord) {
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
}
