package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	discordmock "github.com/fadedpez/cccounter/internal/discord/mock"
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
	session     *discordmock.SessionHandler
	interaction *discordgo.InteractionCreate
}

func TestResponseSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) SetupTest() {
	s.session = &discordmock.SessionHandler{}
	s.session.Test(s.T())
	s.interaction = &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:   "test_interaction",
			Type: discordgo.InteractionApplicationCommand,
		},
	}
}

func (s *ResponseTestSuite) TestNewResponse() {
	resp := NewResponse("test content", nil)

	s.NotNil(resp)
	s.Equal("test content", resp.Content)
	s.False(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewEphemeralResponse() {
	resp := NewEphemeralResponse("test content", nil)

	s.NotNil(resp)
	s.Equal("test content", resp.Content)
	s.True(resp.Ephemeral)
}

func (s *ResponseTestSuite) TestNewErrorResponse() {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "simple error",
			err:      errors.New("test error"),
			expected: "❌ An error occurred: test error",
		},
		{
			name:     "ledger state error",
			err:      types.StateError("round already finalized"),
			expected: "⚠️ round already finalized",
		},
		{
			name:     "invalid round",
			err:      types.InvalidInput("diamond count 14 exceeds 13"),
			expected: "❗ diamond count 14 exceeds 13",
		},
		{
			name:     "detection key rejected",
			err:      types.NewGameError(types.ErrPermissionDenied, "the card detection API key was rejected"),
			expected: "🚫 the card detection API key was rejected",
		},
		{
			name:     "detection service down",
			err:      types.NewGameError(types.ErrExternalSupplier, "card detection failed with status 502"),
			expected: "📷 card detection failed with status 502",
		},
		{
			name:     "wrapped game error",
			err:      types.WrapError(types.ErrDatabaseError, "failed to save round", errors.New("disk full")),
			expected: "💾 failed to save round",
		},
		{
			name:     "unknown code",
			err:      types.NewGameError("SOMETHING_ELSE", "odd"),
			expected: "❌ odd",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := NewErrorResponse(tc.err)

			s.NotNil(resp)
			s.Equal(tc.expected, resp.Content)
			s.True(resp.Ephemeral)
		})
	}
}

func (s *ResponseTestSuite) TestSendResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseChannelMessageWithSource &&
			r.Data.Content == "test content" &&
			r.Data.Flags == discordgo.MessageFlagsEphemeral
	})).Return(nil)

	err := SendResponse(s.session, s.interaction, NewEphemeralResponse("test content", nil))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestSendGameResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Content == "game content" && r.Data.Flags == 0
	})).Return(nil)

	err := SendGameResponse(s.session, s.interaction, "game content", nil)

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestDeferAndEditResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Type == discordgo.InteractionResponseDeferredChannelMessageWithSource
	})).Return(nil)
	s.session.On("InteractionResponseEdit", s.interaction.Interaction, mock.MatchedBy(func(e *discordgo.WebhookEdit) bool {
		return e.Content != nil && *e.Content == "done" && e.Components == nil
	})).Return(&discordgo.Message{}, nil)

	s.NoError(DeferResponse(s.session, s.interaction, false))
	s.NoError(EditResponse(s.session, s.interaction, NewResponse("done", nil)))
	s.session.AssertExpectations(s.T())
}

func (s *ResponseTestSuite) TestEditResponseError() {
	s.session.On("InteractionResponseEdit", s.interaction.Interaction, mock.Anything).Return(nil, errors.New("unknown webhook"))

	err := EditResponse(s.session, s.interaction, NewResponse("done", nil))
	s.EqualError(err, "unknown webhook")
}

func (s *ResponseTestSuite) TestSendErrorResponse() {
	s.session.On("InteractionRespond", s.interaction.Interaction, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Content == "❌ An error occurred: test error" && r.Data.Flags == discordgo.MessageFlagsEphemeral
	})).Return(nil)

	err := SendErrorResponse(s.session, s.interaction, errors.New("test error"))

	s.NoError(err)
	s.session.AssertExpectations(s.T())
}
