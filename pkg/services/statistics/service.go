package statistics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/fadedpez/cccounter/pkg/repositories/game"
)

// Service provides summaries of persisted round logs
type Service struct {
	repository game.Repository
	now        func() time.Time
}

// NewService creates a new statistics service
func NewService(repository game.Repository) *Service {
	return &Service{
		repository: repository,
		now:        time.Now,
	}
}

// TeamSummary is one team's side of a game summary
type TeamSummary struct {
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Average    float64 `json:"average"`
	BestRound  int     `json:"best_round"`
	BestScore  int     `json:"best_score"`
	WorstRound int     `json:"worst_round"`
	WorstScore int     `json:"worst_score"`
}

// GameSummary describes the state of one game from its round log
type GameSummary struct {
	Game  *entities.GameRecord `json:"game"`
	Team1 TeamSummary          `json:"team1"`
	Team2 TeamSummary          `json:"team2"`
	// Leader is the name of the team with the higher (less negative) total,
	// empty on a tie
	Leader        string `json:"leader"`
	Margin        int    `json:"margin"`
	Rounds        int    `json:"rounds"`
	ExpectedTotal int    `json:"expected_total"`
	// DriftRounds counts logged rounds whose scores do not sum to the round total
	DriftRounds int `json:"drift_rounds"`
}

// GetGameSummary summarizes a game's round log
func (s *Service) GetGameSummary(ctx context.Context, gameID string) (*GameSummary, error) {
	record, err := s.repository.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repository.GetRounds(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return Summarize(record, rounds), nil
}

// Summarize builds a summary from a game and its rounds
func Summarize(record *entities.GameRecord, rounds []*entities.RoundRecord) *GameSummary {
	summary := &GameSummary{
		Game:          record,
		Team1:         TeamSummary{Name: record.Team1Name},
		Team2:         TeamSummary{Name: record.Team2Name},
		Rounds:        len(rounds),
		ExpectedTotal: len(rounds) * entities.RoundTotal,
	}

	for i, r := range rounds {
		track(&summary.Team1, r.Round, r.Team1Score, i == 0)
		track(&summary.Team2, r.Round, r.Team2Score, i == 0)
		if r.Team1Score+r.Team2Score != entities.RoundTotal {
			summary.DriftRounds++
		}
	}

	if n := len(rounds); n > 0 {
		summary.Team1.Average = float64(summary.Team1.Total) / float64(n)
		summary.Team2.Average = float64(summary.Team2.Total) / float64(n)
	}

	switch {
	case summary.Team1.Total > summary.Team2.Total:
		summary.Leader = summary.Team1.Name
		summary.Margin = summary.Team1.Total - summary.Team2.Total
	case summary.Team2.Total > summary.Team1.Total:
		summary.Leader = summary.Team2.Name
		summary.Margin = summary.Team2.Total - summary.Team1.Total
	}

	return summary
}

func track(t *TeamSummary, round, score int, first bool) {
	t.Total += score
	if first || score > t.BestScore {
		t.BestRound, t.BestScore = round, score
	}
	if first || score < t.WorstScore {
		t.WorstRound, t.WorstScore = round, score
	}
}

// TeamRank is a team's record across a channel's games
type TeamRank struct {
	Name        string `json:"name"`
	Rank        int    `json:"rank"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	PointsFor   int    `json:"points_for"`
	IsTopTeam   bool   `json:"is_top_team"`
}

// ChannelStandings ranks the teams that played in a channel
type ChannelStandings struct {
	Teams       []*TeamRank `json:"teams"`
	GamesPlayed int         `json:"games_played"`
	LastUpdated time.Time   `json:"last_updated"`
}

// GetChannelStandings ranks teams by games won over the channel's recent
// games, then by total points. Games without rounds are skipped.
func (s *Service) GetChannelStandings(ctx context.Context, channelID string, limit int) (*ChannelStandings, error) {
	if limit < 1 {
		limit = 25
	}

	games, err := s.repository.GetChannelGames(ctx, channelID, limit)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]*TeamRank)
	team := func(name string) *TeamRank {
		key := strings.ToLower(name)
		if t, ok := teams[key]; ok {
			return t
		}
		t := &TeamRank{Name: name}
		teams[key] = t
		return t
	}

	played := 0
	for _, g := range games {
		rounds, err := s.repository.GetRounds(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		if len(rounds) == 0 {
			continue
		}
		played++

		summary := Summarize(g, rounds)
		t1, t2 := team(g.Team1Name), team(g.Team2Name)
		t1.GamesPlayed++
		t2.GamesPlayed++
		t1.PointsFor += summary.Team1.Total
		t2.PointsFor += summary.Team2.Total
		switch summary.Leader {
		case g.Team1Name:
			t1.Wins++
		case g.Team2Name:
			t2.Wins++
		}
	}

	ranked := make([]*TeamRank, 0, len(teams))
	for _, t := range teams {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Wins != ranked[j].Wins {
			return ranked[i].Wins > ranked[j].Wins
		}
		if ranked[i].PointsFor != ranked[j].PointsFor {
			return ranked[i].PointsFor > ranked[j].PointsFor
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	if len(ranked) > 0 && ranked[0].Wins > 0 {
		ranked[0].IsTopTeam = true
	}

	return &ChannelStandings{
		Teams:       ranked,
		GamesPlayed: played,
		LastUpdated: s.now(),
	}, nil
}
