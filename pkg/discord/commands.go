package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/cccounter/pkg/entities"
)

// Slash command names
const (
	cmdNewGame   = "newgame"
	cmdRound     = "round"
	cmdPreview   = "preview"
	cmdHistory   = "history"
	cmdStandings = "standings"
	cmdReset     = "reset"
	cmdDetect    = "detect"

	optTeam1 = "team1"
	optTeam2 = "team2"
	optPhoto = "photo"
)

func roundOptions() []*discordgo.ApplicationCommandOption {
	zero := float64(0)
	maxCards := float64(52)
	maxDiamonds := float64(entities.MaxDiamonds)

	return []*discordgo.ApplicationCommandOption{
		{
			Name:        optCards,
			Description: "Cards your team captured",
			Type:        discordgo.ApplicationCommandOptionInteger,
			Required:    true,
			MinValue:    &zero,
			MaxValue:    maxCards,
		},
		{
			Name:        optDiamonds,
			Description: "Diamonds among them",
			Type:        discordgo.ApplicationCommandOptionInteger,
			Required:    true,
			MinValue:    &zero,
			MaxValue:    maxDiamonds,
		},
		{
			Name:        optQueens,
			Description: "Suits of the queens you captured, e.g. H D S",
			Type:        discordgo.ApplicationCommandOptionString,
		},
		{
			Name:        optKing,
			Description: "You captured the king of hearts",
			Type:        discordgo.ApplicationCommandOptionBoolean,
		},
		{
			Name:        optDoubled,
			Description: "Captured cards the opponent doubled, e.g. QH KH",
			Type:        discordgo.ApplicationCommandOptionString,
		},
		{
			Name:        optBonus,
			Description: "Cards you doubled that the opponent took, e.g. QC",
			Type:        discordgo.ApplicationCommandOptionString,
		},
	}
}

// Commands returns the slash commands the bot registers. /detect is only
// offered when a detector is configured.
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        cmdNewGame,
			Description: "Start a new Complex Complex game in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optTeam1,
					Description: "Name of the team that enters scores",
					Type:        discordgo.ApplicationCommandOptionString,
					MaxLength:   32,
				},
				{
					Name:        optTeam2,
					Description: "Name of the other team",
					Type:        discordgo.ApplicationCommandOptionString,
					MaxLength:   32,
				},
			},
		},
		{
			Name:        cmdRound,
			Description: "Score a round and add it to the game",
			Options:     roundOptions(),
		},
		{
			Name:        cmdPreview,
			Description: "Score a round without recording it",
			Options:     roundOptions(),
		},
		{
			Name:        cmdHistory,
			Description: "Round by round scores of the current game",
		},
		b.standings.Command(),
		{
			Name:        cmdReset,
			Description: "Clear the current game's scores",
		},
	}

	if b.detector != nil {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        cmdDetect,
			Description: "Count your captured cards from a photo",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optPhoto,
					Description: "Photo of the cards your team captured",
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Required:    true,
				},
			},
		})
	}
	return cmds
}
