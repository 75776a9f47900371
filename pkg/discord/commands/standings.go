package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/cccounter/internal/discord"
	"github.com/fadedpez/cccounter/pkg/services/statistics"
)

// StandingsLimit is how many recent games /standings looks at
const StandingsLimit = 25

// StandingsProvider ranks the teams that played in a channel
type StandingsProvider interface {
	GetChannelStandings(ctx context.Context, channelID string, limit int) (*statistics.ChannelStandings, error)
}

// StandingsCommand handles the /standings command
type StandingsCommand struct {
	statisticsService StandingsProvider
}

// NewStandingsCommand creates a new standings command handler
func NewStandingsCommand(statisticsService StandingsProvider) *StandingsCommand {
	return &StandingsCommand{statisticsService: statisticsService}
}

// Command returns the command definition for the standings command
func (c *StandingsCommand) Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "standings",
		Description: "Team standings over this channel's recent games",
	}
}

// Handle handles the standings command
func (c *StandingsCommand) Handle(ctx context.Context, s discord.SessionHandler, i *discordgo.InteractionCreate) error {
	standings, err := c.statisticsService.GetChannelStandings(ctx, i.ChannelID, StandingsLimit)
	if err != nil {
		return discord.SendErrorResponse(s, i, err)
	}
	return discord.SendResponse(s, i, discord.NewEmbedResponse(c.createStandingsEmbed(standings)))
}

// createStandingsEmbed creates an embed for the standings
func (c *StandingsCommand) createStandingsEmbed(standings *statistics.ChannelStandings) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🏆 Complex Complex standings 🏆",
		Color:     0x00ff00,
		Timestamp: standings.LastUpdated.Format(time.RFC3339),
	}

	if len(standings.Teams) == 0 {
		embed.Description = "No finished rounds in this channel yet. Start with /newgame."
		return embed
	}

	embed.Description = fmt.Sprintf("%d games with recorded rounds", standings.GamesPlayed)

	fields := make([]*discordgo.MessageEmbedField, 0, len(standings.Teams))
	for _, team := range standings.Teams {
		rankEmoji := ""
		switch team.Rank {
		case 1:
			rankEmoji = "👑 "
		case 2:
			rankEmoji = "🥈 "
		case 3:
			rankEmoji = "🥉 "
		default:
			rankEmoji = fmt.Sprintf("%d. ", team.Rank)
		}

		name := rankEmoji + team.Name
		if team.IsTopTeam && team.Rank != 1 {
			name += " 🏆"
		}

		fields = append(fields, &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("**Games:** %d | **Won:** %d | **Points:** %d",
				team.GamesPlayed, team.Wins, team.PointsFor),
		})
	}
	embed.Fields = fields
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: "Ranked by games won, then by points (closest to zero first)",
	}
	return embed
}
