package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fadedpez/cccounter/internal/logging"
	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/entities"
)

const maxResponseBytes = 1 << 20

// ClientConfig configures the HTTP classifier client
type ClientConfig struct {
	// URL is the model endpoint, e.g. https://detect.roboflow.com/playing-cards-ow27d/4
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client calls a hosted object-detection model that takes a base64 image
// body and answers with a list of predictions
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

type prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type detectResponse struct {
	Predictions []prediction `json:"predictions"`
}

// NewClient creates a classifier client. The API key is required.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "detector URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, types.WrapError(types.ErrInvalidArgument, "detector URL is invalid", err)
	}
	if cfg.APIKey == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "detector API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.Default,
	}, nil
}

// Detect sends the image to the classifier
func (c *Client) Detect(ctx context.Context, image []byte) ([]DetectedCard, error) {
	if len(image) == 0 {
		return nil, types.NewGameError(types.ErrInvalidArgument, "image is empty")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, types.WrapError(types.ErrExternalSupplier, "detector URL is invalid", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	body := strings.NewReader(base64.StdEncoding.EncodeToString(image))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return nil, types.WrapError(types.ErrExternalSupplier, "could not build detection request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.WrapError(types.ErrExternalSupplier, "card detection service is unreachable", err)
	}
	defer res.Body.Close()

	if err := statusError(res.StatusCode); err != nil {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return nil, err
	}

	var decoded detectResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, types.WrapError(types.ErrExternalSupplier, "card detection service sent an unreadable response", err)
	}

	cards := make([]DetectedCard, 0, len(decoded.Predictions))
	for _, p := range decoded.Predictions {
		card, err := entities.ParseCard(p.Class)
		if err != nil {
			c.logger.Debug("Skipping unrecognized detection class %q: %v", p.Class, err)
			continue
		}
		cards = append(cards, DetectedCard{Card: card, Confidence: p.Confidence, Class: p.Class})
	}
	return cards, nil
}

func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewGameError(types.ErrPermissionDenied, "the card detection API key was rejected")
	case status == http.StatusTooManyRequests:
		return types.NewGameError(types.ErrRateLimited, "the card detection quota is used up, try again later")
	default:
		return types.NewGameError(types.ErrExternalSupplier, fmt.Sprintf("card detection failed with status %d", status))
	}
}
