package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/cccounter/internal/discord"
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/detection"
)

func userID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return "unknown"
}

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	if !b.markProcessed(i.ID) {
		b.logger.Debug("Skipping already processed interaction: %s", i.ID)
		return nil
	}

	name := i.ApplicationCommandData().Name
	b.logger.Debug("Received /%s from %s in %s", name, userID(i), i.ChannelID)

	switch name {
	case cmdNewGame:
		return b.handleNewGame(ctx, i)
	case cmdRound:
		return b.handleRound(ctx, i)
	case cmdPreview:
		return b.handlePreview(i)
	case cmdHistory:
		return b.handleHistory(ctx, i)
	case cmdStandings:
		return b.standings.Handle(ctx, b.session, i)
	case cmdReset:
		return b.handleReset(ctx, i)
	case cmdDetect:
		return b.handleDetect(ctx, i)
	}
	return discord.SendErrorResponse(b.session, i,
		types.NewGameError(types.ErrInvalidCommand, fmt.Sprintf("unknown command /%s", name)))
}

func (b *Bot) handleNewGame(ctx context.Context, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)

	game, err := b.games.NewGame(ctx, i.ChannelID, stringOption(opts, optTeam1), stringOption(opts, optTeam2))
	if err != nil {
		b.logger.LogError(err)
		return discord.SendErrorResponse(b.session, i, err)
	}

	return discord.SendGameResponse(b.session, i, fmt.Sprintf(
		"🎴 New game: **%s** vs **%s**. Record each round with /round from %s's side.",
		game.Team1Name, game.Team2Name, game.Team1Name), nil)
}

func (b *Bot) handleRound(ctx context.Context, i *discordgo.InteractionCreate) error {
	round, err := parseRoundOptions(i.ApplicationCommandData().Options)
	if err != nil {
		return discord.SendErrorResponse(b.session, i, err)
	}

	outcome, err := b.games.PlayRound(ctx, i.ChannelID, round)
	if err != nil {
		b.logger.LogError(err)
		return discord.SendErrorResponse(b.session, i, err)
	}

	return discord.SendGameResponse(b.session, i, formatRoundOutcome(outcome), nil)
}

func (b *Bot) handlePreview(i *discordgo.InteractionCreate) error {
	round, err := parseRoundOptions(i.ApplicationCommandData().Options)
	if err != nil {
		return discord.SendErrorResponse(b.session, i, err)
	}

	breakdown, err := b.games.Preview(round)
	if err != nil {
		return discord.SendErrorResponse(b.session, i, err)
	}

	return discord.SendResponse(b.session, i, discord.NewEphemeralResponse(formatPreview(breakdown, round), nil))
}

func (b *Bot) handleHistory(ctx context.Context, i *discordgo.InteractionCreate) error {
	view, err := b.games.View(ctx, i.ChannelID)
	if err != nil {
		return discord.SendErrorResponse(b.session, i, err)
	}

	summary, err := b.stats.GetGameSummary(ctx, view.Game.ID)
	if err != nil {
		// the ledger view is enough to answer
		b.logger.Warn("Failed to summarize game %s: %v", view.Game.ID, err)
		summary = nil
	}

	return discord.SendGameResponse(b.session, i, formatHistory(view, summary), nil)
}

func (b *Bot) handleReset(ctx context.Context, i *discordgo.InteractionCreate) error {
	game, err := b.games.Reset(ctx, i.ChannelID)
	if err != nil {
		b.logger.LogError(err)
		return discord.SendErrorResponse(b.session, i, err)
	}

	return discord.SendGameResponse(b.session, i, fmt.Sprintf(
		"🔄 Scores cleared for **%s** vs **%s**. The next /round is round 1.",
		game.Team1Name, game.Team2Name), nil)
}

func (b *Bot) handleDetect(ctx context.Context, i *discordgo.InteractionCreate) error {
	if b.detector == nil {
		return discord.SendErrorResponse(b.session, i,
			types.NewGameError(types.ErrInvalidCommand, "card detection is not configured"))
	}

	attachment, err := photoAttachment(i)
	if err != nil {
		return discord.SendErrorResponse(b.session, i, err)
	}

	if err := discord.DeferResponse(b.session, i, false); err != nil {
		return err
	}

	facts, err := b.detect(ctx, attachment)
	if err != nil {
		b.logger.LogError(err)
		return discord.EditResponse(b.session, i, discord.NewErrorResponse(err))
	}

	b.logger.Info("Detected %d cards (%d ignored) in %s", facts.TotalCards, facts.Ignored, i.ChannelID)
	return discord.EditResponse(b.session, i, discord.NewResponse(formatFacts(facts), nil))
}

func (b *Bot) detect(ctx context.Context, attachment *discordgo.MessageAttachment) (*detection.RoundFacts, error) {
	image, err := b.session.Download(ctx, attachment.URL)
	if err != nil {
		return nil, types.WrapError(types.ErrExternalSupplier, "could not download the photo", err)
	}

	cards, err := b.detector.Detect(ctx, image)
	if err != nil {
		return nil, err
	}
	return detection.ToRoundFacts(cards, b.minConfidence), nil
}

func photoAttachment(i *discordgo.InteractionCreate) (*discordgo.MessageAttachment, error) {
	data := i.ApplicationCommandData()
	opt, ok := optionMap(data.Options)[optPhoto]
	if !ok || data.Resolved == nil {
		return nil, types.NewGameError(types.ErrInvalidArgument, "attach a photo of your captured cards")
	}

	id, _ := opt.Value.(string)
	attachment, ok := data.Resolved.Attachments[id]
	if !ok {
		return nil, types.NewGameError(types.ErrInvalidArgument, "attach a photo of your captured cards")
	}
	if attachment.ContentType != "" && !strings.HasPrefix(attachment.ContentType, "image/") {
		return nil, types.NewGameError(types.ErrInvalidArgument, "the attachment must be an image")
	}
	if attachment.Size > discord.MaxAttachmentBytes {
		return nil, types.NewGameError(types.ErrInvalidArgument, "the photo is too large, keep it under 8 MB")
	}
	return attachment, nil
}
