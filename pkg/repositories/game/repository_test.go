package game

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/stretchr/testify/suite"
)

var baseTime = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

// RepositoryTestSuite runs the same contract against every implementation
type RepositoryTestSuite struct {
	suite.Suite
	newRepo func(t *testing.T) Repository
	repo    Repository
	ctx     context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.newRepo(s.T())
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func newGame(id, channelID string, created time.Time) *entities.GameRecord {
	return &entities.GameRecord{
		ID:        id,
		ChannelID: channelID,
		Team1Name: "Team 1",
		Team2Name: "Team 2",
		Status:    entities.GameStatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newRound(gameID string, n, team1 int) *entities.RoundRecord {
	return &entities.RoundRecord{
		GameID:     gameID,
		ChannelID:  "channel1",
		Round:      n,
		Team1Score: team1,
		Team2Score: entities.RoundTotal - team1,
		RecordedAt: baseTime.Add(time.Duration(n) * time.Minute),
	}
}

func (s *RepositoryTestSuite) TestSaveAndGetGame() {
	game := newGame("g1", "channel1", baseTime)
	s.Require().NoError(s.repo.SaveGame(s.ctx, game))

	got, err := s.repo.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal("channel1", got.ChannelID)
	s.Equal("Team 1", got.Team1Name)
	s.Equal(entities.GameStatusActive, got.Status)
	s.True(baseTime.Equal(got.CreatedAt))

	game.Team1Name = "Sharks"
	game.Status = entities.GameStatusArchived
	s.Require().NoError(s.repo.SaveGame(s.ctx, game))

	got, err = s.repo.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal("Sharks", got.Team1Name)
	s.Equal(entities.GameStatusArchived, got.Status)
}

func (s *RepositoryTestSuite) TestGetMissingGame() {
	_, err := s.repo.GetGame(s.ctx, "missing")
	s.Error(err)
	s.True(types.IsGameError(err, types.ErrGameNotFound))
}

func (s *RepositoryTestSuite) TestActiveGames() {
	active, err := s.repo.GetActiveGame(s.ctx, "channel1")
	s.Require().NoError(err)
	s.Nil(active)

	old := newGame("g1", "channel1", baseTime)
	old.Status = entities.GameStatusArchived
	s.Require().NoError(s.repo.SaveGame(s.ctx, old))
	s.Require().NoError(s.repo.SaveGame(s.ctx, newGame("g2", "channel1", baseTime.Add(time.Hour))))
	s.Require().NoError(s.repo.SaveGame(s.ctx, newGame("g3", "channel2", baseTime.Add(2*time.Hour))))

	active, err = s.repo.GetActiveGame(s.ctx, "channel1")
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal("g2", active.ID)

	all, err := s.repo.ListActiveGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("g3", all[0].ID)
	s.Equal("g2", all[1].ID)

	channelGames, err := s.repo.GetChannelGames(s.ctx, "channel1", 10)
	s.Require().NoError(err)
	s.Require().Len(channelGames, 2)
	s.Equal("g2", channelGames[0].ID)

	limited, err := s.repo.GetChannelGames(s.ctx, "channel1", 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

func (s *RepositoryTestSuite) TestRoundLog() {
	s.Require().NoError(s.repo.SaveGame(s.ctx, newGame("g1", "channel1", baseTime)))

	// saved out of order on purpose
	second := newRound("g1", 2, -230)
	second.Breakdown = []byte(`{"total":-230}`)
	s.Require().NoError(s.repo.SaveRound(s.ctx, second))
	s.Require().NoError(s.repo.SaveRound(s.ctx, newRound("g1", 1, -180)))

	rounds, err := s.repo.GetRounds(s.ctx, "g1")
	s.Require().NoError(err)
	s.Require().Len(rounds, 2)
	s.Equal(1, rounds[0].Round)
	s.Equal(-180, rounds[0].Team1Score)
	s.Equal(-320, rounds[0].Team2Score)
	s.Equal(2, rounds[1].Round)
	s.JSONEq(`{"total":-230}`, string(rounds[1].Breakdown))

	s.Error(s.repo.SaveRound(s.ctx, newRound("g1", 2, -100)))

	s.Require().NoError(s.repo.DeleteRounds(s.ctx, "g1"))
	rounds, err = s.repo.GetRounds(s.ctx, "g1")
	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *RepositoryTestSuite) TestSaveRoundForUnknownGame() {
	err := s.repo.SaveRound(s.ctx, newRound("nope", 1, -100))
	s.Error(err)
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(t *testing.T) Repository {
		return NewMemoryRepository()
	}})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(t *testing.T) Repository {
		repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
		if err != nil {
			t.Fatalf("Error creating SQLite repository: %v", err)
		}
		return repo
	}})
}

func TestFileRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(t *testing.T) Repository {
		repo, err := NewFileRepository(filepath.Join(t.TempDir(), "history.json"))
		if err != nil {
			t.Fatalf("Error creating file repository: %v", err)
		}
		return repo
	}})
}

func TestFileRepositoryReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")

	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveGame(ctx, newGame("g1", "channel1", baseTime)); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveRound(ctx, newRound("g1", 1, -180)); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileRepository(path)
	if err != nil {
		t.Fatal(err)
	}

	active, err := reopened.GetActiveGame(ctx, "channel1")
	if err != nil || active == nil || active.ID != "g1" {
		t.Fatalf("expected active game g1 after reload, got %v (%v)", active, err)
	}
	rounds, err := reopened.GetRounds(ctx, "g1")
	if err != nil || len(rounds) != 1 || rounds[0].Team1Score != -180 {
		t.Fatalf("expected one round after reload, got %v (%v)", rounds, err)
	}
}
