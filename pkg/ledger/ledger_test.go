package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
	ledger *Ledger
}

func (s *LedgerTestSuite) SetupTest() {
	s.ledger = New()
}

func (s *LedgerTestSuite) playRound(team1 int) *entities.RoundResult {
	s.Require().NoError(s.ledger.StartNewRound())
	result, err := s.ledger.FinalizeRound(team1)
	s.Require().NoError(err)
	return result
}

func (s *LedgerTestSuite) TestNewLedger() {
	s.Equal(0, s.ledger.RoundNumber())
	s.Equal(0, s.ledger.Team1Total())
	s.Equal(0, s.ledger.Team2Total())
	s.Equal(0, s.ledger.ExpectedTotal())
	s.Empty(s.ledger.History())
	s.Equal(entities.PhaseRoundClosed, s.ledger.Phase())
}

func (s *LedgerTestSuite) TestFinalizeDerivesTeam2Score() {
	result := s.playRound(-180)

	s.Equal(1, result.RoundNumber)
	s.Equal(-180, result.Team1Score)
	s.Equal(-320, result.Team2Score)
	s.Equal(-180, result.Team1Total)
	s.Equal(-320, result.Team2Total)
	s.Equal(-500, result.ExpectedTotal)
	s.Equal(-500, result.ActualTotal)
	s.True(result.IsValid)
}

func (s *LedgerTestSuite) TestFixedSumForAnyScore() {
	for _, team1 := range []int{-500, -230, 0, 100, -725, 25} {
		result := s.playRound(team1)
		s.Equal(entities.RoundTotal, result.Team1Score+result.Team2Score)
		s.True(result.IsValid)
	}
}

func (s *LedgerTestSuite) TestMonotonicRoundNumbering() {
	const rounds = 7
	for i := 1; i <= rounds; i++ {
		result := s.playRound(-100)
		s.Equal(i, result.RoundNumber)
	}

	s.Equal(rounds, s.ledger.RoundNumber())
	s.Equal(rounds*-500, s.ledger.ExpectedTotal())
	s.Equal(s.ledger.ExpectedTotal(), s.ledger.Team1Total()+s.ledger.Team2Total())
	s.Len(s.ledger.History(), rounds)
}

func (s *LedgerTestSuite) TestFinalizeWithoutStart() {
	_, err := s.ledger.FinalizeRound(-100)
	s.Error(err)
	s.True(types.IsGameError(err, types.ErrInvalidState))
	s.Empty(s.ledger.History())
}

func (s *LedgerTestSuite) TestDoubleFinalize() {
	s.playRound(-100)

	_, err := s.ledger.FinalizeRound(-100)
	s.Error(err)
	s.True(types.IsGameError(err, types.ErrInvalidState))
	s.Equal(-100, s.ledger.Team1Total())
	s.Len(s.ledger.History(), 1)
}

func (s *LedgerTestSuite) TestDoubleStart() {
	s.Require().NoError(s.ledger.StartNewRound())

	err := s.ledger.StartNewRound()
	s.Error(err)
	s.True(types.IsGameError(err, types.ErrInvalidState))
	s.Equal(1, s.ledger.RoundNumber())
	s.Equal(entities.PhaseAwaitingRoundData, s.ledger.Phase())
}

func (s *LedgerTestSuite) TestResetClearsState() {
	s.playRound(-180)
	s.playRound(-230)
	s.Require().NoError(s.ledger.StartNewRound())

	s.ledger.ResetGame()

	s.Equal(0, s.ledger.RoundNumber())
	s.Equal(0, s.ledger.Team1Total())
	s.Equal(0, s.ledger.Team2Total())
	s.Empty(s.ledger.History())
	s.Equal(0, s.ledger.ExpectedTotal())
	s.Equal(entities.PhaseRoundClosed, s.ledger.Phase())

	_, err := s.ledger.FinalizeRound(-100)
	s.True(types.IsGameError(err, types.ErrInvalidState))

	result := s.playRound(-50)
	s.Equal(1, result.RoundNumber)
}

func (s *LedgerTestSuite) TestAdjustTotalsShowsDrift() {
	s.playRound(-180)
	s.ledger.AdjustTotals(10, 0)

	result := s.playRound(-200)
	s.False(result.IsValid)
	s.Equal(-1000, result.ExpectedTotal)
	s.Equal(-990, result.ActualTotal)

	s.ledger.AdjustTotals(-10, 0)
	result = s.playRound(-200)
	s.True(result.IsValid)
}

func (s *LedgerTestSuite) TestHistoryIsACopy() {
	s.playRound(-180)

	history := s.ledger.History()
	history[0].Team1Score = 999

	s.Equal(-180, s.ledger.History()[0].Team1Score)
}

func (s *LedgerTestSuite) TestSnapshot() {
	s.playRound(-180)
	s.Require().NoError(s.ledger.StartNewRound())

	snap := s.ledger.Snapshot()
	s.Equal(2, snap.RoundNumber)
	s.Equal(-1000, snap.ExpectedTotal)
	s.Equal(entities.PhaseAwaitingRoundData, snap.Phase)
	s.Len(snap.History, 1)
}

func (s *LedgerTestSuite) TestRestore() {
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	records := []*entities.RoundRecord{
		{GameID: "g1", Round: 1, Team1Score: -180, Team2Score: -320, RecordedAt: at},
		{GameID: "g1", Round: 2, Team1Score: -230, Team2Score: -270, RecordedAt: at},
	}

	s.Require().NoError(s.ledger.Restore(records))

	s.Equal(2, s.ledger.RoundNumber())
	s.Equal(-410, s.ledger.Team1Total())
	s.Equal(-590, s.ledger.Team2Total())
	s.Equal(entities.PhaseRoundClosed, s.ledger.Phase())

	result := s.playRound(-100)
	s.Equal(3, result.RoundNumber)
	s.True(result.IsValid)
}

func (s *LedgerTestSuite) TestRestoreRejectsGaps() {
	s.playRound(-180)

	err := s.ledger.Restore([]*entities.RoundRecord{{Round: 1}, {Round: 3}})
	s.Error(err)
	s.True(types.IsGameError(err, types.ErrInvalidInput))
	s.Equal(1, s.ledger.RoundNumber())
}

func (s *LedgerTestSuite) TestConcurrentAccessorsDuringRounds() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			snap := s.ledger.Snapshot()
			if snap.Phase == entities.PhaseRoundClosed {
				s.Equal(snap.ExpectedTotal, snap.Team1Total+snap.Team2Total)
			}
		}
	}()

	for i := 0; i < 100; i++ {
		s.playRound(-100)
	}
	wg.Wait()
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
