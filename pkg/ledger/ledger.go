// Package ledger sequences rounds of a game and keeps the running totals of
// both teams.
//
// Team 2's score is always derived from team 1's, so every finalized round
// sums to entities.RoundTotal by construction.
package ledger

import (
	"sync"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
)

// Snapshot is a point-in-time copy of the ledger state
type Snapshot struct {
	RoundNumber   int                    `json:"round_number"`
	Team1Total    int                    `json:"team1_total"`
	Team2Total    int                    `json:"team2_total"`
	ExpectedTotal int                    `json:"expected_total"`
	Phase         entities.LedgerPhase   `json:"phase"`
	History       []entities.RoundResult `json:"history"`
}

// Ledger accumulates finalized rounds for one game
type Ledger struct {
	mu          sync.Mutex
	roundNumber int
	team1Total  int
	team2Total  int
	history     []entities.RoundResult
	phase       entities.LedgerPhase
}

// New creates an empty ledger ready for its first round
func New() *Ledger {
	return &Ledger{phase: entities.PhaseRoundClosed}
}

// StartNewRound opens the next round
func (l *Ledger) StartNewRound() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase == entities.PhaseAwaitingRoundData {
		return types.StateError("round %d has not been finalized", l.roundNumber)
	}
	l.roundNumber++
	l.phase = entities.PhaseAwaitingRoundData
	return nil
}

// FinalizeRound closes the open round with team 1's score
func (l *Ledger) FinalizeRound(team1Score int) (*entities.RoundResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase != entities.PhaseAwaitingRoundData {
		if l.roundNumber == 0 {
			return nil, types.StateError("no round has been started")
		}
		return nil, types.StateError("round %d is already finalized", l.roundNumber)
	}

	result := l.apply(team1Score)
	l.phase = entities.PhaseRoundClosed
	return &result, nil
}

// apply books a round score. Caller holds mu.
func (l *Ledger) apply(team1Score int) entities.RoundResult {
	team2Score := entities.RoundTotal - team1Score
	l.team1Total += team1Score
	l.team2Total += team2Score

	expected := l.roundNumber * entities.RoundTotal
	actual := l.team1Total + l.team2Total
	result := entities.RoundResult{
		RoundNumber:   l.roundNumber,
		Team1Score:    team1Score,
		Team2Score:    team2Score,
		Team1Total:    l.team1Total,
		Team2Total:    l.team2Total,
		ExpectedTotal: expected,
		ActualTotal:   actual,
		IsValid:       expected == actual,
	}
	l.history = append(l.history, result)
	return result
}

// ExpectedTotal is what both teams' totals should add up to so far
func (l *Ledger) ExpectedTotal() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roundNumber * entities.RoundTotal
}

// ResetGame clears the ledger. It is valid in any phase. The ledger is left
// at round 0 in PhaseRoundClosed, the same state as New: the next call must
// be StartNewRound, and a FinalizeRound with no round open fails.
func (l *Ledger) ResetGame() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roundNumber = 0
	l.team1Total = 0
	l.team2Total = 0
	l.history = nil
	l.phase = entities.PhaseRoundClosed
}

// AdjustTotals applies a manual correction to the running totals. Corrections
// that do not cancel out show up as drift on the next finalized round.
func (l *Ledger) AdjustTotals(team1Delta, team2Delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.team1Total += team1Delta
	l.team2Total += team2Delta
}

// Restore rebuilds the ledger from a persisted round log. Records must be
// ordered and numbered from 1 without gaps.
func (l *Ledger) Restore(records []*entities.RoundRecord) error {
	for i, r := range records {
		if r.Round != i+1 {
			return types.InvalidInput("round log is out of order: expected round %d, got %d", i+1, r.Round)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.roundNumber = 0
	l.team1Total = 0
	l.team2Total = 0
	l.history = nil
	for _, r := range records {
		l.roundNumber++
		l.apply(r.Team1Score)
	}
	l.phase = entities.PhaseRoundClosed
	return nil
}

func (l *Ledger) RoundNumber() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roundNumber
}

func (l *Ledger) Team1Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.team1Total
}

func (l *Ledger) Team2Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.team2Total
}

func (l *Ledger) Phase() entities.LedgerPhase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// History returns a copy of the finalized rounds, oldest first
func (l *Ledger) History() []entities.RoundResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.historyCopy()
}

// Snapshot returns the whole state under one lock
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		RoundNumber:   l.roundNumber,
		Team1Total:    l.team1Total,
		Team2Total:    l.team2Total,
		ExpectedTotal: l.roundNumber * entities.RoundTotal,
		Phase:         l.phase,
		History:       l.historyCopy(),
	}
}

func (l *Ledger) historyCopy() []entities.RoundResult {
	out := make([]entities.RoundResult, len(l.history))
	copy(out, l.history)
	return out
}
