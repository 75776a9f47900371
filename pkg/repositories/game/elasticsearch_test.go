package game

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBaseRepository is a mock implementation of the Repository interface for testing
type MockBaseRepository struct {
	mock.Mock
}

func (m *MockBaseRepository) SaveGame(ctx context.Context, game *entities.GameRecord) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockBaseRepository) GetGame(ctx context.Context, gameID string) (*entities.GameRecord, error) {
	args := m.Called(ctx, gameID)
	if game, ok := args.Get(0).(*entities.GameRecord); ok {
		return game, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBaseRepository) GetActiveGame(ctx context.Context, channelID string) (*entities.GameRecord, error) {
	args := m.Called(ctx, channelID)
	if game, ok := args.Get(0).(*entities.GameRecord); ok {
		return game, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBaseRepository) ListActiveGames(ctx context.Context) ([]*entities.GameRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.GameRecord), args.Error(1)
}

func (m *MockBaseRepository) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameRecord, error) {
	args := m.Called(ctx, channelID, limit)
	return args.Get(0).([]*entities.GameRecord), args.Error(1)
}

func (m *MockBaseRepository) SaveRound(ctx context.Context, round *entities.RoundRecord) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockBaseRepository) GetRounds(ctx context.Context, gameID string) ([]*entities.RoundRecord, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).([]*entities.RoundRecord), args.Error(1)
}

func (m *MockBaseRepository) DeleteRounds(ctx context.Context, gameID string) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockBaseRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeElasticsearch answers just enough of the REST API for the repository
type fakeElasticsearch struct {
	mu        sync.Mutex
	indices   map[string]bool
	documents map[string][]map[string]interface{}
	deleted   []string
	failIndex bool
}

func newFakeElasticsearch(indices ...string) *fakeElasticsearch {
	f := &fakeElasticsearch{
		indices:   make(map[string]bool),
		documents: make(map[string][]map[string]interface{}),
	}
	for _, name := range indices {
		f.indices[name] = true
	}
	return f
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	name := parts[0]

	switch {
	case req.Method == http.MethodHead:
		if f.indices[name] {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}

	case req.Method == http.MethodPut && len(parts) == 1:
		f.indices[name] = true
		io.WriteString(w, `{"acknowledged":true}`)

	case len(parts) >= 2 && parts[1] == "_doc":
		if f.failIndex {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"boom"}`)
			return
		}
		var doc map[string]interface{}
		json.NewDecoder(req.Body).Decode(&doc)
		f.documents[name] = append(f.documents[name], doc)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)

	case req.Method == http.MethodGet && strings.HasSuffix(name, "*"):
		prefix := strings.TrimSuffix(name, "*")
		out := make(map[string]interface{})
		for index := range f.indices {
			if strings.HasPrefix(index, prefix) {
				out[index] = map[string]interface{}{}
			}
		}
		json.NewEncoder(w).Encode(out)

	case req.Method == http.MethodDelete:
		delete(f.indices, name)
		f.deleted = append(f.deleted, name)
		io.WriteString(w, `{"acknowledged":true}`)

	default:
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func newTestESRepository(t *testing.T, fake *fakeElasticsearch, base Repository) *ElasticsearchRepository {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	repo, err := NewElasticsearchRepository(base, &ElasticsearchConfig{
		URL:             server.URL,
		IndexPrefix:     "test",
		RetentionPeriod: 90 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return repo
}

func TestElasticsearchRepositoryCreatesCurrentIndex(t *testing.T) {
	fake := newFakeElasticsearch()
	repo := newTestESRepository(t, fake, NewMemoryRepository())

	expected := "test_rounds_" + time.Now().UTC().Format("2006-01")
	assert.Equal(t, expected, repo.CurrentIndex())
	assert.True(t, fake.indices[expected])
	assert.Equal(t, "test", repo.GetIndexPrefix())
	assert.Equal(t, 24*time.Hour, repo.GetConfig().RotationPeriod)
}

func TestElasticsearchRepositoryRotatesMonthly(t *testing.T) {
	fake := newFakeElasticsearch()
	repo := newTestESRepository(t, fake, NewMemoryRepository())

	repo.now = func() time.Time { return time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.RotateIndices(context.Background()))

	assert.Equal(t, "test_rounds_2030-01", repo.CurrentIndex())
	assert.True(t, fake.indices["test_rounds_2030-01"])
}

func TestElasticsearchRepositorySaveRoundIndexes(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryRepository()
	require.NoError(t, base.SaveGame(ctx, newGame("g1", "channel1", baseTime)))

	fake := newFakeElasticsearch()
	repo := newTestESRepository(t, fake, base)

	require.NoError(t, repo.SaveRound(ctx, newRound("g1", 1, -180)))

	rounds, err := repo.GetRounds(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, rounds, 1)

	docs := fake.documents[repo.CurrentIndex()]
	require.Len(t, docs, 1)
	assert.Equal(t, "g1", docs[0]["game_id"])
	assert.EqualValues(t, -180, docs[0]["team1_score"])
	assert.EqualValues(t, -320, docs[0]["team2_score"])
	assert.EqualValues(t, -500, docs[0]["round_sum"])
}

func TestElasticsearchRepositoryIndexFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	round := newRound("g1", 1, -180)

	mockBaseRepo := new(MockBaseRepository)
	mockBaseRepo.On("SaveRound", mock.Anything, round).Return(nil)

	fake := newFakeElasticsearch()
	repo := newTestESRepository(t, fake, mockBaseRepo)
	fake.failIndex = true

	assert.NoError(t, repo.SaveRound(ctx, round))
	mockBaseRepo.AssertExpectations(t)
}

func TestElasticsearchRepositoryBaseFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	round := newRound("g1", 1, -180)

	mockBaseRepo := new(MockBaseRepository)
	mockBaseRepo.On("SaveRound", mock.Anything, round).Return(errors.New("disk full"))

	fake := newFakeElasticsearch()
	repo := newTestESRepository(t, fake, mockBaseRepo)

	assert.EqualError(t, repo.SaveRound(ctx, round), "disk full")
	assert.Empty(t, fake.documents)
	mockBaseRepo.AssertExpectations(t)
}

func TestElasticsearchRepositoryPrunesOldIndices(t *testing.T) {
	fake := newFakeElasticsearch("test_rounds_2020-01", "test_rounds_bogus")
	repo := newTestESRepository(t, fake, NewMemoryRepository())

	require.NoError(t, repo.PruneOldIndices(context.Background()))

	assert.Equal(t, []string{"test_rounds_2020-01"}, fake.deleted)
	assert.True(t, fake.indices[repo.CurrentIndex()])
	assert.True(t, fake.indices["test_rounds_bogus"])
}

func TestElasticsearchRepositoryPassThrough(t *testing.T) {
	ctx := context.Background()
	game := newGame("g1", "channel1", baseTime)

	mockBaseRepo := new(MockBaseRepository)
	mockBaseRepo.On("SaveGame", mock.Anything, game).Return(nil)
	mockBaseRepo.On("GetActiveGame", mock.Anything, "channel1").Return(game, nil)
	mockBaseRepo.On("DeleteRounds", mock.Anything, "g1").Return(nil)
	mockBaseRepo.On("Close").Return(nil)

	repo := newTestESRepository(t, newFakeElasticsearch(), mockBaseRepo)

	require.NoError(t, repo.SaveGame(ctx, game))
	active, err := repo.GetActiveGame(ctx, "channel1")
	require.NoError(t, err)
	assert.Equal(t, game, active)
	require.NoError(t, repo.DeleteRounds(ctx, "g1"))
	require.NoError(t, repo.Close())

	mockBaseRepo.AssertExpectations(t)
}
