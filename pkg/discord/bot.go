package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/cccounter/internal/discord"
	"github.com/fadedpez/cccounter/internal/logging"
	"github.com/fadedpez/cccounter/pkg/detection"
	"github.com/fadedpez/cccounter/pkg/discord/commands"
	"github.com/fadedpez/cccounter/pkg/services/session"
	"github.com/fadedpez/cccounter/pkg/services/statistics"
)

// StatsService summarizes stored games
type StatsService interface {
	commands.StandingsProvider
	GetGameSummary(ctx context.Context, gameID string) (*statistics.GameSummary, error)
}

// Bot represents the Discord bot instance
type Bot struct {
	session discord.SessionHandler
	appID   string
	guildID string

	games     session.GameService
	stats     StatsService
	standings *commands.StandingsCommand

	// Optional card detection for /detect
	detector      detection.Detector
	minConfidence float64

	logger  *logging.Logger
	timeout time.Duration

	// Interaction tracking to prevent duplicates
	interactionMu         sync.Mutex
	processedInteractions map[string]time.Time
	now                   func() time.Time
}

// Option configures a Bot
type Option func(*Bot)

// WithApplication sets the application and guild commands are registered
// under. An empty guild registers them globally.
func WithApplication(appID, guildID string) Option {
	return func(b *Bot) {
		b.appID = appID
		b.guildID = guildID
	}
}

// WithDetector enables /detect
func WithDetector(d detection.Detector, minConfidence float64) Option {
	return func(b *Bot) {
		b.detector = d
		b.minConfidence = minConfidence
	}
}

// WithLogger replaces the default logger
func WithLogger(logger *logging.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// NewBot creates a new instance of the bot
func NewBot(s discord.SessionHandler, games session.GameService, stats StatsService, opts ...Option) *Bot {
	b := &Bot{
		session:               s,
		games:                 games,
		stats:                 stats,
		standings:             commands.NewStandingsCommand(stats),
		logger:                logging.Default,
		timeout:               30 * time.Second,
		processedInteractions: make(map[string]time.Time),
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start connects to Discord and registers the slash commands
func (b *Bot) Start() error {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

func (b *Bot) applicationID() (string, error) {
	if b.appID != "" {
		return b.appID, nil
	}
	state := b.session.State()
	if state == nil || state.User == nil {
		return "", fmt.Errorf("application ID unknown, set APP_ID")
	}
	return state.User.ID, nil
}

func (b *Bot) registerCommands() error {
	appID, err := b.applicationID()
	if err != nil {
		return err
	}

	cmds := b.Commands()
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, cmds); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	b.logger.Info("Registered %d slash commands", len(cmds))
	return nil
}

// UnregisterCommands removes the bot's slash commands
func (b *Bot) UnregisterCommands() error {
	appID, err := b.applicationID()
	if err != nil {
		return err
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, []*discordgo.ApplicationCommand{}); err != nil {
		return fmt.Errorf("error removing commands: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the bot and closes the Discord connection
func (b *Bot) Stop() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Bot is ready: %v#%v", r.User.Username, r.User.Discriminator)
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.handleInteraction(ctx, i); err != nil {
		b.logger.Error("Failed to answer interaction %s: %v", i.ID, err)
	}
}

// markProcessed reports whether the interaction is new and remembers it
func (b *Bot) markProcessed(id string) bool {
	b.interactionMu.Lock()
	defer b.interactionMu.Unlock()

	now := b.now()
	if _, seen := b.processedInteractions[id]; seen {
		return false
	}
	b.processedInteractions[id] = now

	// Discord stops accepting replies after 15 minutes
	if len(b.processedInteractions) > 100 {
		for old, at := range b.processedInteractions {
			if now.Sub(at) > 15*time.Minute {
				delete(b.processedInteractions, old)
			}
		}
	}
	return true
}
