// Package session keeps one running game per Discord channel.
//
// Each channel's ledger is held in memory and backed by the round log in the
// game repository, so a session evicted for idleness, or lost to a restart,
// is rebuilt from storage the next time the channel is used. Rounds whose log
// write failed stay queued on the session and are written, in order, before
// any later round. A session with queued rounds is never evicted, so the
// stored log is always a gap-free prefix of the ledger history.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fadedpez/cccounter/internal/logging"
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/fadedpez/cccounter/pkg/ledger"
	"github.com/fadedpez/cccounter/pkg/repositories/game"
	"github.com/fadedpez/cccounter/pkg/scoring"
	"github.com/google/uuid"
)

// Default team names
const (
	DefaultTeam1Name = "Team 1"
	DefaultTeam2Name = "Team 2"
	maxTeamNameLen   = 32
)

// channelSession is the live state of one channel's game
type channelSession struct {
	mu         sync.Mutex
	game       *entities.GameRecord
	ledger     *ledger.Ledger
	lastActive time.Time
	evicted    bool

	// unsaved holds rounds not yet in the round log, oldest first
	unsaved []*entities.RoundRecord
}

// brokenLogError marks a stored round log the ledger cannot be rebuilt from
type brokenLogError struct {
	game *entities.GameRecord
	err  error
}

func (e *brokenLogError) Error() string { return e.err.Error() }
func (e *brokenLogError) Unwrap() error { return e.err }

// Service handles game session business logic
type Service struct {
	repo        game.Repository
	scorer      *scoring.Scorer
	logger      *logging.Logger
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*channelSession
}

// Option configures a Service
type Option func(*Service)

// WithScorer replaces the default truncating scorer
func WithScorer(scorer *scoring.Scorer) Option {
	return func(s *Service) { s.scorer = scorer }
}

// WithLogger replaces the default logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithIdleTimeout sets how long an unused session stays in memory
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Service) { s.idleTimeout = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new session service
func NewService(repo game.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		scorer:      scoring.NewScorer(),
		logger:      logging.Default,
		idleTimeout: 24 * time.Hour,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		sessions:    make(map[string]*channelSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cleanTeamName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if len([]rune(name)) > maxTeamNameLen {
		name = string([]rune(name)[:maxTeamNameLen])
	}
	return name
}

// NewGame starts a fresh game in the channel. Any active game there is
// archived first.
func (s *Service) NewGame(ctx context.Context, channelID, team1Name, team2Name string) (*entities.GameRecord, error) {
	team1Name = cleanTeamName(team1Name, DefaultTeam1Name)
	team2Name = cleanTeamName(team2Name, DefaultTeam2Name)
	if strings.EqualFold(team1Name, team2Name) {
		return nil, types.NewGameError(types.ErrInvalidArgument, "the two teams need different names")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[channelID]; ok {
		sess.mu.Lock()
		if err := s.flush(ctx, sess); err != nil {
			s.logger.Warn("Dropping %d unsaved rounds of game %s: %v", len(sess.unsaved), sess.game.ID, err)
		}
		sess.evicted = true
		sess.mu.Unlock()
		delete(s.sessions, channelID)
	}

	now := s.now()
	active, err := s.repo.GetActiveGame(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		active.Status = entities.GameStatusArchived
		active.UpdatedAt = now
		if err := s.repo.SaveGame(ctx, active); err != nil {
			return nil, err
		}
		s.logger.Info("Archived game %s in channel %s", active.ID, channelID)
	}

	record := &entities.GameRecord{
		ID:        s.newID(),
		ChannelID: channelID,
		Team1Name: team1Name,
		Team2Name: team2Name,
		Status:    entities.GameStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveGame(ctx, record); err != nil {
		return nil, err
	}

	s.sessions[channelID] = &channelSession{
		game:       record,
		ledger:     ledger.New(),
		lastActive: now,
	}
	s.logger.Info("Started game %s in channel %s (%s vs %s)", record.ID, channelID, team1Name, team2Name)

	out := *record
	return &out, nil
}

// load returns the channel's session, rebuilding it from the repository
// when it is not in memory
func (s *Service) load(ctx context.Context, channelID string) (*channelSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[channelID]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[channelID]; ok {
		return sess, nil
	}

	record, err := s.repo.GetActiveGame(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, types.NewGameError(types.ErrGameNotFound, "no game in this channel, start one with /newgame")
	}

	rounds, err := s.repo.GetRounds(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	l := ledger.New()
	if err := l.Restore(rounds); err != nil {
		return nil, types.WrapError(types.ErrInternalError, "stored round log is inconsistent, /reset clears it",
			&brokenLogError{game: record, err: err})
	}

	sess = &channelSession{game: record, ledger: l, lastActive: s.now()}
	s.sessions[channelID] = sess
	s.logger.Debug("Restored game %s in channel %s at round %d", record.ID, channelID, l.RoundNumber())
	return sess, nil
}

// withSession runs fn holding the channel's session lock
func (s *Service) withSession(ctx context.Context, channelID string, fn func(*channelSession) error) error {
	for {
		sess, err := s.load(ctx, channelID)
		if err != nil {
			return err
		}

		sess.mu.Lock()
		if sess.evicted {
			// replaced or evicted while we waited, load again
			sess.mu.Unlock()
			continue
		}
		sess.lastActive = s.now()
		err = fn(sess)
		sess.mu.Unlock()
		return err
	}
}

// PlayRound scores the round and books it in the channel's ledger
func (s *Service) PlayRound(ctx context.Context, channelID string, round *entities.RoundData) (*RoundOutcome, error) {
	breakdown, err := s.scorer.Score(round)
	if err != nil {
		return nil, err
	}

	var outcome *RoundOutcome
	err = s.withSession(ctx, channelID, func(sess *channelSession) error {
		if err := sess.ledger.StartNewRound(); err != nil {
			return err
		}
		result, err := sess.ledger.FinalizeRound(breakdown.Total)
		if err != nil {
			return err
		}

		game := *sess.game
		outcome = &RoundOutcome{
			Game:      &game,
			Breakdown: breakdown,
			Result:    result,
			Persisted: true,
		}

		record := entities.NewRoundRecord(sess.game, result, s.now())
		if data, err := json.Marshal(breakdown); err == nil {
			record.Breakdown = data
		}
		sess.unsaved = append(sess.unsaved, record)
		if err := s.flush(ctx, sess); err != nil {
			outcome.Persisted = false
			outcome.Unsaved = len(sess.unsaved)
			s.logger.Error("Failed to save round %d of game %s, %d rounds queued: %v",
				sess.unsaved[0].Round, sess.game.ID, len(sess.unsaved), err)
		}

		sess.game.UpdatedAt = record.RecordedAt
		if err := s.repo.SaveGame(ctx, sess.game); err != nil {
			s.logger.Warn("Failed to touch game %s: %v", sess.game.ID, err)
		}

		if !result.IsValid {
			s.logger.Warn("Game %s totals drifted: expected %d, actual %d", sess.game.ID, result.ExpectedTotal, result.ActualTotal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// flush writes the session's queued rounds in order. It stops at the first
// failure and keeps that round and everything after it queued. Callers hold
// sess.mu.
func (s *Service) flush(ctx context.Context, sess *channelSession) error {
	for len(sess.unsaved) > 0 {
		if err := s.repo.SaveRound(ctx, sess.unsaved[0]); err != nil {
			return err
		}
		sess.unsaved = sess.unsaved[1:]
	}
	sess.unsaved = nil
	return nil
}

// Preview scores a round without touching any ledger
func (s *Service) Preview(round *entities.RoundData) (*scoring.Breakdown, error) {
	return s.scorer.Score(round)
}

// View returns the channel's game and ledger state
func (s *Service) View(ctx context.Context, channelID string) (*GameView, error) {
	var view *GameView
	err := s.withSession(ctx, channelID, func(sess *channelSession) error {
		game := *sess.game
		view = &GameView{Game: &game, Ledger: sess.ledger.Snapshot()}
		return nil
	})
	return view, err
}

// Reset clears the channel's ledger and its stored round log. The game and
// its team names are kept. It also works when the stored log cannot be
// restored.
func (s *Service) Reset(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	var out *entities.GameRecord
	err := s.withSession(ctx, channelID, func(sess *channelSession) error {
		if err := s.repo.DeleteRounds(ctx, sess.game.ID); err != nil {
			return err
		}
		sess.unsaved = nil
		sess.ledger.ResetGame()
		game := *sess.game
		out = &game
		s.logger.Info("Reset game %s in channel %s", sess.game.ID, channelID)
		return nil
	})

	var broken *brokenLogError
	if errors.As(err, &broken) {
		return s.resetBrokenLog(ctx, channelID, broken.game)
	}
	return out, err
}

// resetBrokenLog clears a round log that could not be restored and starts
// the game over with an empty ledger
func (s *Service) resetBrokenLog(ctx context.Context, channelID string, record *entities.GameRecord) (*entities.GameRecord, error) {
	s.mu.Lock()
	if _, ok := s.sessions[channelID]; ok {
		// loaded or replaced meanwhile, reset that session instead
		s.mu.Unlock()
		return s.Reset(ctx, channelID)
	}
	defer s.mu.Unlock()

	if err := s.repo.DeleteRounds(ctx, record.ID); err != nil {
		return nil, err
	}
	s.sessions[channelID] = &channelSession{
		game:       record,
		ledger:     ledger.New(),
		lastActive: s.now(),
	}
	s.logger.Warn("Cleared inconsistent round log of game %s in channel %s", record.ID, channelID)

	out := *record
	return &out, nil
}

// EvictIdle retries queued round log writes and drops sessions unused for
// longer than the idle timeout. Sessions busy with a round or still holding
// unsaved rounds are skipped. It has the scheduler task signature.
func (s *Service) EvictIdle(ctx context.Context) error {
	s.retryUnsaved(ctx)

	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for channelID, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastActive.Before(cutoff) && len(sess.unsaved) == 0 {
			sess.evicted = true
			delete(s.sessions, channelID)
			evicted++
		}
		sess.mu.Unlock()
	}

	if evicted > 0 {
		s.logger.Info("Evicted %d idle sessions", evicted)
	}
	return nil
}

func (s *Service) retryUnsaved(ctx context.Context) {
	s.mu.RLock()
	sessions := make([]*channelSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		if !sess.evicted && len(sess.unsaved) > 0 {
			if err := s.flush(ctx, sess); err != nil {
				s.logger.Warn("Game %s still has %d unsaved rounds: %v", sess.game.ID, len(sess.unsaved), err)
			} else {
				s.logger.Info("Saved queued rounds of game %s", sess.game.ID)
			}
		}
		sess.mu.Unlock()
	}
}

// ActiveSessions is the number of sessions held in memory
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
