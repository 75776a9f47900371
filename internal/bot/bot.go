package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/fadedpez/cccounter/internal/config"
	"github.com/fadedpez/cccounter/internal/discord"
	"github.com/fadedpez/cccounter/internal/logging"
	"github.com/fadedpez/cccounter/pkg/detection"
	pkgdiscord "github.com/fadedpez/cccounter/pkg/discord"
	"github.com/fadedpez/cccounter/pkg/repositories/game"
	"github.com/fadedpez/cccounter/pkg/scheduler"
	"github.com/fadedpez/cccounter/pkg/services/session"
	"github.com/fadedpez/cccounter/pkg/services/statistics"
)

// Bot represents the Discord bot and its dependencies
type Bot struct {
	config *config.Config
	logger *logging.Logger

	repo      game.Repository
	games     *session.Service
	discord   *pkgdiscord.Bot
	scheduler *scheduler.Scheduler
	indexing  *scheduler.ElasticsearchMaintenanceScheduler

	cancel context.CancelFunc
}

// New creates a new instance of Bot
func New(cfg *config.Config) (*Bot, error) {
	s, err := discord.NewSession(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return newWithSession(cfg, s)
}

func newWithSession(cfg *config.Config, s discord.SessionHandler) (*Bot, error) {
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	repo, err := OpenRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		config:    cfg,
		logger:    logger,
		scheduler: scheduler.NewScheduler().WithLogger(logger),
	}

	if cfg.ElasticsearchEnabled() {
		esRepo, err := game.NewElasticsearchRepository(repo, &game.ElasticsearchConfig{
			URL:         cfg.ESURL,
			Username:    cfg.ESUsername,
			Password:    cfg.ESPassword,
			IndexPrefix: cfg.ESIndexPrefix,
		})
		if err != nil {
			logger.Warn("Failed to initialize Elasticsearch, rounds will not be indexed: %v", err)
		} else {
			repo = esRepo
			b.indexing = scheduler.NewElasticsearchMaintenanceScheduler(esRepo, esRepo.GetConfig().RotationPeriod)
			logger.Info("Indexing rounds into Elasticsearch at %s", cfg.ESURL)
		}
	}
	b.repo = repo

	b.games = session.NewService(repo,
		session.WithLogger(logger),
		session.WithIdleTimeout(cfg.SessionIdleTimeout))
	b.scheduler.AddTask("session_eviction", evictionInterval(cfg.SessionIdleTimeout), b.games.EvictIdle)

	opts := []pkgdiscord.Option{
		pkgdiscord.WithApplication(cfg.AppID, cfg.GuildID),
		pkgdiscord.WithLogger(logger),
	}
	if cfg.DetectorEnabled() {
		client, err := detection.NewClient(detection.ClientConfig{
			URL:    cfg.DetectorURL,
			APIKey: cfg.DetectorAPIKey,
		})
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to create card detector: %w", err)
		}
		opts = append(opts, pkgdiscord.WithDetector(client, cfg.DetectorMinConfidence))
		logger.Info("Card detection enabled (min confidence %.2f)", cfg.DetectorMinConfidence)
	}

	b.discord = pkgdiscord.NewBot(s, b.games, statistics.NewService(repo), opts...)
	return b, nil
}

// OpenRepository opens the round log store selected by STORAGE_TYPE
func OpenRepository(cfg *config.Config, logger *logging.Logger) (game.Repository, error) {
	switch cfg.StorageType {
	case config.StorageSQLite:
		path := cfg.DatabasePath()
		logger.Info("Initializing SQLite repository at %s", path)
		repo, err := game.NewSQLiteRepository(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil

	case config.StorageFile:
		path := cfg.HistoryFilePath()
		logger.Info("Initializing file repository at %s", path)
		repo, err := game.NewFileRepository(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file repository: %w", err)
		}
		return repo, nil

	default:
		logger.Info("Using in-memory repository for game data (data will be lost on restart)")
		return game.NewMemoryRepository(), nil
	}
}

// evictionInterval checks for idle sessions a few times per timeout
func evictionInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	if interval > time.Hour {
		interval = time.Hour
	}
	return interval
}

// Start initializes the bot and connects to Discord
func (b *Bot) Start() error {
	if err := b.discord.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.scheduler.Start(ctx)
	if b.indexing != nil {
		b.indexing.Start(ctx)
	}
	return nil
}

// Shutdown gracefully shuts down the bot
func (b *Bot) Shutdown() {
	if b.cancel != nil {
		b.cancel()
	}
	b.scheduler.Stop()
	if b.indexing != nil {
		b.indexing.Stop()
	}

	// Cleanup commands if in development
	if b.config.IsDevelopment() {
		if err := b.discord.UnregisterCommands(); err != nil {
			b.logger.Warn("Failed to remove commands: %v", err)
		}
	}

	if err := b.discord.Stop(); err != nil {
		b.logger.Error("Error closing Discord session: %v", err)
	}
	if err := b.repo.Close(); err != nil {
		b.logger.Error("Error closing repository: %v", err)
	}
}
