package mock

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// SessionHandler is a mock implementation of discord.SessionHandler
type SessionHandler struct {
	mock.Mock
}

// InteractionRespond implements discord.SessionHandler
func (s *SessionHandler) InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
	args := s.Called(i, r)
	return args.Error(0)
}

// InteractionResponseEdit implements discord.SessionHandler
func (s *SessionHandler) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	args := s.Called(i, edit)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

// ApplicationCommandBulkOverwrite implements discord.SessionHandler
func (s *SessionHandler) ApplicationCommandBulkOverwrite(appID string, guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	args := s.Called(appID, guildID, cmds)
	out, _ := args.Get(0).([]*discordgo.ApplicationCommand)
	return out, args.Error(1)
}

// Download implements discord.SessionHandler
func (s *SessionHandler) Download(ctx context.Context, url string) ([]byte, error) {
	args := s.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Open implements discord.SessionHandler
func (s *SessionHandler) Open() error {
	args := s.Called()
	return args.Error(0)
}

// Close implements discord.SessionHandler
func (s *SessionHandler) Close() error {
	args := s.Called()
	return args.Error(0)
}

// AddHandler implements discord.SessionHandler
func (s *SessionHandler) AddHandler(handler interface{}) func() {
	args := s.Called(handler)
	return args.Get(0).(func())
}

// State implements discord.SessionHandler
func (s *SessionHandler) State() *discordgo.State {
	args := s.Called()
	return args.Get(0).(*discordgo.State)
}
