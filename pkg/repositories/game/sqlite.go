package game

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/db/migrations"
	"github.com/fadedpez/cccounter/pkg/entities"
	_ "github.com/mattn/go-sqlite3"
)

const gameColumns = `id, channel_id, team1_name, team2_name, status, created_at, updated_at`

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository and applies the
// embedded migrations
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	migrator := migrations.NewEmbeddedMigrator(db)
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// SaveGame inserts or updates a game
func (r *SQLiteRepository) SaveGame(ctx context.Context, game *entities.GameRecord) error {
	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET team1_name = excluded.team1_name, team2_name = excluded.team2_name,
			status = excluded.status, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		game.ID, game.ChannelID, game.Team1Name, game.Team2Name, string(game.Status), game.CreatedAt, game.UpdatedAt)
	if err != nil {
		return types.WrapError(types.ErrDatabaseError, "error saving game", err)
	}
	return nil
}

// GetGame retrieves a game by ID
func (r *SQLiteRepository) GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, gameID)
	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, errGameNotFound(gameID)
	}
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error loading game", err)
	}
	return game, nil
}

// GetActiveGame retrieves the active game of a channel
func (r *SQLiteRepository) GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE channel_id = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, channelID, string(entities.GameStatusActive)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error loading active game", err)
	}
	return game, nil
}

// ListActiveGames returns every active game
func (r *SQLiteRepository) ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE status = ? ORDER BY created_at DESC`
	return r.queryGames(ctx, query, string(entities.GameStatusActive))
}

// GetChannelGames retrieves the recent games of a channel
func (r *SQLiteRepository) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE channel_id = ?
		ORDER BY created_at DESC
		LIMIT ?`
	return r.queryGames(ctx, query, channelID, limit)
}

func (r *SQLiteRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*entities.GameRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error querying games", err)
	}
	defer rows.Close()

	games := make([]*entities.GameRecord, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "error scanning game", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(s scanner) (*entities.GameRecord, error) {
	var (
		game   entities.GameRecord
		status string
	)
	err := s.Scan(&game.ID, &game.ChannelID, &game.Team1Name, &game.Team2Name, &status, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, err
	}
	game.Status = entities.GameStatus(status)
	return &game, nil
}

// SaveRound appends a round to its game's log
func (r *SQLiteRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	query := `
		INSERT INTO rounds (
			game_id, channel_id, round, team1_score, team2_score, recorded_at, breakdown
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	var breakdown interface{}
	if len(round.Breakdown) > 0 {
		breakdown = string(round.Breakdown)
	}

	_, err := r.db.ExecContext(ctx, query,
		round.GameID, round.ChannelID, round.Round, round.Team1Score, round.Team2Score, round.RecordedAt, breakdown)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return errGameNotFound(round.GameID)
		}
		return types.WrapError(types.ErrDatabaseError, "error saving round", err)
	}
	return nil
}

// GetRounds retrieves a game's round log
func (r *SQLiteRepository) GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error) {
	query := `
		SELECT game_id, channel_id, round, team1_score, team2_score, recorded_at, breakdown
		FROM rounds
		WHERE game_id = ?
		ORDER BY round ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error querying rounds", err)
	}
	defer rows.Close()

	rounds := make([]*entities.RoundRecord, 0)
	for rows.Next() {
		var (
			round     entities.RoundRecord
			breakdown sql.NullString
		)
		err := rows.Scan(&round.GameID, &round.ChannelID, &round.Round,
			&round.Team1Score, &round.Team2Score, &round.RecordedAt, &breakdown)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "error scanning round", err)
		}
		if breakdown.Valid {
			round.Breakdown = []byte(breakdown.String)
		}
		rounds = append(rounds, &round)
	}

	return rounds, rows.Err()
}

// DeleteRounds clears a game's round log
func (r *SQLiteRepository) DeleteRounds(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE game_id = ?`, gameID)
	if err != nil {
		return types.WrapError(types.ErrDatabaseError, "error deleting rounds", err)
	}
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
