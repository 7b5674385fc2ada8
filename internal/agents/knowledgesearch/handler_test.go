package knowledgesearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "helpdesk-assistant/internal/common/errors"
)

// ==========================
// Test Helpers
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func setupElasticsearch(t *testing.T, hits []article) *elasticsearch.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")

		wrapped := make([]map[string]interface{}, len(hits))
		for i, hit := range hits {
			wrapped[i] = map[string]interface{}{"_source": hit}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"hits": wrapped},
		})
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func testConfig() *Config {
	return &Config{
		Index:      "knowledge-articles",
		MaxResults: 3,
		CacheTTL:   time.Minute,
		Timeout:    5 * time.Second,
	}
}

// ==========================
// Search Tests
// ==========================

func TestSearchReturnsArticles(t *testing.T) {
	esClient := setupElasticsearch(t, []article{
		{Title: "Password Reset", Content: "Use the self-service portal to reset your password."},
		{Title: "VPN Setup", Content: "Install the VPN client from the software centre."},
	})
	mr, redisClient := setupRedis(t)

	handler := NewHandler(testConfig(), esClient, redisClient, &TestLogger{t})

	body, err := handler.Search(context.Background(), "how to reset password")

	require.NoError(t, err)
	assert.Contains(t, body, "Password Reset")
	assert.Contains(t, body, "self-service portal")
	assert.Contains(t, body, "VPN Setup")

	// Result is cached for the next identical query.
	cached, err := mr.Get("kb:search:how to reset password")
	require.NoError(t, err)
	assert.Equal(t, body, cached)
}

func TestSearchReturnsSentinelWhenNoHits(t *testing.T) {
	esClient := setupElasticsearch(t, nil)
	mr, redisClient := setupRedis(t)

	handler := NewHandler(testConfig(), esClient, redisClient, &TestLogger{t})

	body, err := handler.Search(context.Background(), "something nobody wrote about")

	require.NoError(t, err)
	assert.Equal(t, NotFoundSentinel, body)
	assert.Empty(t, mr.Keys())
}

func TestSearchServesFromCache(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	mock.ExpectGet("kb:search:cached query").SetVal("cached article body")

	// No Elasticsearch wired: a cache hit must not reach the index.
	handler := NewHandler(testConfig(), nil, redisClient, &TestLogger{t})

	body, err := handler.Search(context.Background(), "Cached Query")

	require.NoError(t, err)
	assert.Equal(t, "cached article body", body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheMissFallsThroughToIndex(t *testing.T) {
	esClient := setupElasticsearch(t, []article{
		{Title: "Printer Guide", Content: "Connect via the print server."},
	})

	redisClient, mock := redismock.NewClientMock()
	mock.ExpectGet("kb:search:printer help").RedisNil()
	mock.Regexp().ExpectSet("kb:search:printer help", `.*Printer Guide.*`, time.Minute).SetVal("OK")

	handler := NewHandler(testConfig(), esClient, redisClient, &TestLogger{t})

	body, err := handler.Search(context.Background(), "printer help")

	require.NoError(t, err)
	assert.Contains(t, body, "Printer Guide")
}

func TestSearchIndexError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"index_not_found_exception"}`))
	}))
	defer server.Close()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	_, redisClient := setupRedis(t)
	handler := NewHandler(testConfig(), esClient, redisClient, &TestLogger{t})

	_, err = handler.Search(context.Background(), "anything")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKnowledgeQueryFailed)
}

func TestSearchMissingIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	}))
	defer server.Close()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	_, redisClient := setupRedis(t)
	handler := NewHandler(testConfig(), esClient, redisClient, &TestLogger{t})

	_, err = handler.Search(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIndexNotFound))
}
