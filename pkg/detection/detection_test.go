package detection

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detected(code string, confidence float64) DetectedCard {
	card, err := entities.ParseCard(code)
	if err != nil {
		panic(err)
	}
	return DetectedCard{Card: card, Confidence: confidence, Class: code}
}

func TestToRoundFacts(t *testing.T) {
	cards := []DetectedCard{
		detected("QH", 0.95),
		detected("QS", 0.9),
		detected("KH", 0.8),
		detected("2D", 0.7),
		detected("10D", 0.6),
		detected("QD", 0.99),
		detected("QH", 0.97), // duplicate
		detected("7C", 0.2),  // low confidence
		{Card: nil, Confidence: 1},
	}

	facts := ToRoundFacts(cards, 0.5)

	assert.Equal(t, 6, facts.TotalCards)
	assert.Equal(t, 1, facts.Tricks())
	assert.Equal(t, 3, facts.Diamonds)
	assert.Equal(t, []entities.Suit{entities.Spades, entities.Hearts, entities.Diamonds}, facts.QueenSuits)
	assert.True(t, facts.KingOfHearts)
	assert.Equal(t, 3, facts.Ignored)
	assert.Equal(t, []string{"10D", "2D", "KH", "QD", "QH", "QS"}, facts.Cards)
}

func TestRoundFactsToRoundData(t *testing.T) {
	facts := &RoundFacts{
		TotalCards:   20,
		Diamonds:     15,
		QueenSuits:   []entities.Suit{entities.Hearts},
		KingOfHearts: true,
	}

	round := facts.ToRoundData()

	assert.Equal(t, 20, round.TotalCardsCaptured)
	assert.Equal(t, 15, round.DiamondCount)
	require.Len(t, round.Queens, 1)
	assert.False(t, round.Queens[0].IsDoubled)
	require.NotNil(t, round.KingOfHearts)
	assert.False(t, round.KingOfHearts.IsDoubled)
	assert.True(t, types.IsGameError(round.Validate(), types.ErrInvalidInput))

	facts.Diamonds = 3
	assert.NoError(t, facts.ToRoundData().Validate())
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(ClientConfig{APIKey: "k"})
	assert.True(t, types.IsGameError(err, types.ErrInvalidArgument))

	_, err = NewClient(ClientConfig{URL: "http://example.test"})
	assert.True(t, types.IsGameError(err, types.ErrInvalidArgument))
}

func TestClientDetect(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), string(body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predictions":[
			{"class":"QH","confidence":0.91,"x":1,"y":2},
			{"class":"10D","confidence":0.55},
			{"class":"joker","confidence":0.99}
		]}`)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{URL: server.URL + "/playing-cards/4", APIKey: "secret"})
	require.NoError(t, err)

	cards, err := client.Detect(context.Background(), image)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "QH", cards[0].Card.Code())
	assert.InDelta(t, 0.91, cards[0].Confidence, 0.0001)
	assert.Equal(t, "10D", cards[1].Card.Code())
}

func TestClientDetectErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		code    types.ErrorCode
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, types.ErrPermissionDenied, "API key was rejected"},
		{"forbidden", http.StatusForbidden, `{}`, types.ErrPermissionDenied, "API key was rejected"},
		{"rate limited", http.StatusTooManyRequests, `{}`, types.ErrRateLimited, "quota"},
		{"server error", http.StatusBadGateway, `{}`, types.ErrExternalSupplier, "status 502"},
		{"bad json", http.StatusOK, `not json`, types.ErrExternalSupplier, "unreadable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer server.Close()

			client, err := NewClient(ClientConfig{URL: server.URL, APIKey: "k"})
			require.NoError(t, err)

			_, err = client.Detect(context.Background(), []byte("img"))
			require.Error(t, err)
			assert.Equal(t, tc.code, types.CodeOf(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestClientDetectUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(ClientConfig{URL: url, APIKey: "k"})
	require.NoError(t, err)

	_, err = client.Detect(context.Background(), []byte("img"))
	assert.True(t, types.IsGameError(err, types.ErrExternalSupplier))
}

func TestClientDetectEmptyImage(t *testing.T) {
	client, err := NewClient(ClientConfig{URL: "http://example.test", APIKey: "k"})
	require.NoError(t, err)

	_, err = client.Detect(context.Background(), nil)
	assert.True(t, types.IsGameError(err, types.ErrInvalidArgument))
}
