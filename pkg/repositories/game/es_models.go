package game

import (
	"encoding/json"
	"time"

	"github.com/fadedpez/cccounter/pkg/entities"
)

// ESRoundDocument represents a finalized round in Elasticsearch
type ESRoundDocument struct {
	GameID     string          `json:"game_id"`
	ChannelID  string          `json:"channel_id"`
	Round      int             `json:"round"`
	Team1Score int             `json:"team1_score"`
	Team2Score int             `json:"team2_score"`
	RoundSum   int             `json:"round_sum"`
	RecordedAt time.Time       `json:"recorded_at"`
	Breakdown  json.RawMessage `json:"breakdown,omitempty"`
}

func newESRoundDocument(round *entities.RoundRecord) *ESRoundDocument {
	return &ESRoundDocument{
		GameID:     round.GameID,
		ChannelID:  round.ChannelID,
		Round:      round.Round,
		Team1Score: round.Team1Score,
		Team2Score: round.Team2Score,
		RoundSum:   round.Team1Score + round.Team2Score,
		RecordedAt: round.RecordedAt,
		Breakdown:  round.Breakdown,
	}
}

// roundIndexMapping is applied to every monthly rounds index
const roundIndexMapping = `{
	"mappings": {
		"properties": {
			"game_id": { "type": "keyword" },
			"channel_id": { "type": "keyword" },
			"round": { "type": "integer" },
			"team1_score": { "type": "integer" },
			"team2_score": { "type": "integer" },
			"round_sum": { "type": "integer" },
			"recorded_at": { "type": "date" },
			"breakdown": { "type": "object", "enabled": false }
		}
	}
}`
