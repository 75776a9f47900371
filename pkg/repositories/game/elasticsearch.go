package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/cccounter/internal/logging"
	"github.com/fadedpez/cccounter/pkg/entities"
)

const indexDateLayout = "2006-01"

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL             string
	Username        string
	Password        string
	IndexPrefix     string
	RetentionPeriod time.Duration // How long monthly round indices are kept
	RotationPeriod  time.Duration // How often the scheduler checks for a new month
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:             "http://localhost:9200",
		IndexPrefix:     "cccounter",
		RetentionPeriod: 365 * 24 * time.Hour,
		RotationPeriod:  24 * time.Hour,
	}
}

// ElasticsearchRepository decorates another Repository and indexes every
// finalized round into a monthly index for analytics. Reads always go to the
// base repository.
type ElasticsearchRepository struct {
	baseRepo     Repository
	client       *elasticsearch.Client
	config       *ElasticsearchConfig
	indexPrefix  string
	logger       *logging.Logger
	now          func() time.Time
	mu           sync.Mutex
	currentIndex string
}

// NewElasticsearchRepository creates a new Elasticsearch repository
func NewElasticsearchRepository(baseRepo Repository, config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	defaults := DefaultElasticsearchConfig()
	if config.IndexPrefix == "" {
		config.IndexPrefix = defaults.IndexPrefix
	}
	if config.RetentionPeriod == 0 {
		config.RetentionPeriod = defaults.RetentionPeriod
	}
	if config.RotationPeriod == 0 {
		config.RotationPeriod = defaults.RotationPeriod
	}

	repo := &ElasticsearchRepository{
		baseRepo:    baseRepo,
		client:      client,
		config:      config,
		indexPrefix: config.IndexPrefix,
		logger:      logging.Default,
		now:         time.Now,
	}

	if err := repo.RotateIndices(context.Background()); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}

	return repo, nil
}

// indexName is the rounds index for the month of t
func (r *ElasticsearchRepository) indexName(t time.Time) string {
	return r.indexPrefix + "_rounds_" + t.UTC().Format(indexDateLayout)
}

// ensureIndex creates an index with the rounds mapping if it doesn't exist
func (r *ElasticsearchRepository) ensureIndex(ctx context.Context, name string) error {
	res, err := r.client.Indices.Exists([]string{name}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index exists: %w", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case 200:
		return nil
	case 404:
	default:
		return fmt.Errorf("error checking if index %s exists: status %d", name, res.StatusCode)
	}

	req := esapi.IndicesCreateRequest{
		Index: name,
		Body:  strings.NewReader(roundIndexMapping),
	}
	res, err = req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index %s: %s", name, res.String())
	}

	r.logger.Info("Created Elasticsearch index %s", name)
	return nil
}

// RotateIndices makes sure the current month's index exists and points new
// documents at it
func (r *ElasticsearchRepository) RotateIndices(ctx context.Context) error {
	name := r.indexName(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if name == r.currentIndex {
		return nil
	}
	if err := r.ensureIndex(ctx, name); err != nil {
		return err
	}
	r.currentIndex = name
	return nil
}

// CurrentIndex is the index new rounds are written to
func (r *ElasticsearchRepository) CurrentIndex() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentIndex
}

// IndexRound writes one round document
func (r *ElasticsearchRepository) IndexRound(ctx context.Context, round *entities.RoundRecord) error {
	if err := r.RotateIndices(ctx); err != nil {
		return fmt.Errorf("error rotating indices: %w", err)
	}

	jsonData, err := json.Marshal(newESRoundDocument(round))
	if err != nil {
		return fmt.Errorf("error marshaling round: %w", err)
	}

	res, err := r.client.Index(
		r.CurrentIndex(),
		bytes.NewReader(jsonData),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(fmt.Sprintf("%s-%d", round.GameID, round.Round)),
		r.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("error indexing round: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round: %s", res.String())
	}

	return nil
}

// SaveRound saves to the base repository, then indexes. Indexing failures
// are logged and do not fail the save.
func (r *ElasticsearchRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	if err := r.baseRepo.SaveRound(ctx, round); err != nil {
		return err
	}

	if err := r.IndexRound(ctx, round); err != nil {
		r.logger.Warn("Failed to index round %d of game %s: %v", round.Round, round.GameID, err)
	}
	return nil
}

// GetIndices lists the open indices matching pattern
func (r *ElasticsearchRepository) GetIndices(ctx context.Context, pattern string) ([]string, error) {
	res, err := r.client.Indices.Get(
		[]string{pattern},
		r.client.Indices.Get.WithContext(ctx),
		r.client.Indices.Get.WithExpandWildcards("open"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error getting indices: %s", res.String())
	}

	var indices map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&indices); err != nil {
		return nil, fmt.Errorf("error parsing indices response: %w", err)
	}

	indexNames := make([]string, 0, len(indices))
	for name := range indices {
		indexNames = append(indexNames, name)
	}
	sort.Strings(indexNames)

	return indexNames, nil
}

// PruneOldIndices deletes monthly indices older than the retention period
func (r *ElasticsearchRepository) PruneOldIndices(ctx context.Context) error {
	indices, err := r.GetIndices(ctx, r.indexPrefix+"_rounds_*")
	if err != nil {
		return err
	}

	cutoff := r.now().Add(-r.config.RetentionPeriod)
	prefix := r.indexPrefix + "_rounds_"
	for _, name := range indices {
		indexDate, err := time.Parse(indexDateLayout, strings.TrimPrefix(name, prefix))
		if err != nil {
			r.logger.Warn("Error parsing date from index name %s: %v", name, err)
			continue
		}

		// a month is only expired once all of it is past the cutoff
		if !indexDate.AddDate(0, 1, 0).Before(cutoff) {
			continue
		}

		req := esapi.IndicesDeleteRequest{Index: []string{name}}
		res, err := req.Do(ctx, r.client)
		if err != nil {
			r.logger.Error("Error deleting index %s: %v", name, err)
			continue
		}
		res.Body.Close()

		if res.IsError() {
			r.logger.Error("Error deleting index %s: %s", name, res.String())
			continue
		}
		r.logger.Info("Deleted index %s (older than retention period of %v)", name, r.config.RetentionPeriod)
	}

	return nil
}

// GetConfig returns the repository configuration
func (r *ElasticsearchRepository) GetConfig() ElasticsearchConfig {
	return *r.config
}

// GetIndexPrefix returns the index prefix
func (r *ElasticsearchRepository) GetIndexPrefix() string {
	return r.indexPrefix
}

// Pass-through operations

func (r *ElasticsearchRepository) SaveGame(ctx context.Context, game *entities.GameRecord) error {
	return r.baseRepo.SaveGame(ctx, game)
}

func (r *ElasticsearchRepository) GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error) {
	return r.baseRepo.GetGame(ctx, gameID)
}

func (r *ElasticsearchRepository) GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	return r.baseRepo.GetActiveGame(ctx, channelID)
}

func (r *ElasticsearchRepository) ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error) {
	return r.baseRepo.ListActiveGames(ctx)
}

func (r *ElasticsearchRepository) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error) {
	return r.baseRepo.GetChannelGames(ctx, channelID, limit)
}

func (r *ElasticsearchRepository) GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error) {
	return r.baseRepo.GetRounds(ctx, gameID)
}

// DeleteRounds only clears the base repository. Indexed documents are kept
// as an analytics trail.
func (r *ElasticsearchRepository) DeleteRounds(ctx context.Context, gameID string) error {
	return r.baseRepo.DeleteRounds(ctx, gameID)
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}
