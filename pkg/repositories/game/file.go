package game

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fadedpez/cccounter/pkg/entities"
)

// fileSnapshot is the on-disk layout of a FileRepository
type fileSnapshot struct {
	Games  map[string]*entities.GameRecord    `json:"games"`
	Rounds map[string][]*entities.RoundRecord `json:"rounds"`
}

// FileRepository keeps everything in memory and rewrites a JSON file after
// every change
type FileRepository struct {
	path string
	mu   sync.Mutex
	mem  *MemoryRepository
}

// NewFileRepository loads the file at path, if present
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{
		path: path,
		mem:  NewMemoryRepository(),
	}

	if err := r.load(); err != nil {
		return nil, fmt.Errorf("failed to load history file: %w", err)
	}

	return r, nil
}

// SaveGame stores or replaces a game
func (r *FileRepository) SaveGame(ctx context.Context, game *entities.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mem.SaveGame(ctx, game); err != nil {
		return err
	}
	return r.save()
}

// GetGame retrieves a game by ID
func (r *FileRepository) GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error) {
	return r.mem.GetGame(ctx, gameID)
}

// GetActiveGame retrieves the active game of a channel
func (r *FileRepository) GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	return r.mem.GetActiveGame(ctx, channelID)
}

// ListActiveGames returns every active game
func (r *FileRepository) ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error) {
	return r.mem.ListActiveGames(ctx)
}

// GetChannelGames retrieves the recent games of a channel
func (r *FileRepository) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error) {
	return r.mem.GetChannelGames(ctx, channelID, limit)
}

// SaveRound appends a round to its game's log
func (r *FileRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mem.SaveRound(ctx, round); err != nil {
		return err
	}
	return r.save()
}

// GetRounds retrieves a game's round log
func (r *FileRepository) GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error) {
	return r.mem.GetRounds(ctx, gameID)
}

// DeleteRounds clears a game's round log
func (r *FileRepository) DeleteRounds(ctx context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mem.DeleteRounds(ctx, gameID); err != nil {
		return err
	}
	return r.save()
}

// Close flushes the file one last time
func (r *FileRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save()
}

// Helper functions

func (r *FileRepository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	for id, game := range snap.Games {
		r.mem.games[id] = game
	}
	for id, rounds := range snap.Rounds {
		r.mem.rounds[id] = rounds
	}
	return nil
}

func (r *FileRepository) save() error {
	r.mem.mu.RLock()
	data, err := json.Marshal(fileSnapshot{Games: r.mem.games, Rounds: r.mem.rounds})
	r.mem.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a temp file and rename it over the old one
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
