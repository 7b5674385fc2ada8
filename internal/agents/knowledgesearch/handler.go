package knowledgesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"

	apperrors "helpdesk-assistant/internal/common/errors"
)

// NotFoundSentinel is the contractual "no answer" value. Callers match it
// case-insensitively on the "not found" substring.
const NotFoundSentinel = "Not found in repository."

var (
	ErrKnowledgeQueryFailed = errors.New("KNOWLEDGE_LOOKUP_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config      *Config
	esClient    *elasticsearch.Client
	redisClient *redis.Client
	logger      Logger
}

func NewHandler(config *Config, esClient *elasticsearch.Client, redisClient *redis.Client, log Logger) *Handler {
	return &Handler{
		config:      config,
		esClient:    esClient,
		redisClient: redisClient,
		logger: log.With(map[string]interface{}{
			"agent": "knowledge-search",
		}),
	}
}

// Search queries the knowledge index and returns matched article content, or
// the not-found sentinel when nothing relevant exists. Results are served
// through a Redis read-through cache; cache errors degrade to a direct query.
func (h *Handler) Search(ctx context.Context, query string) (string, error) {
	cacheKey := h.buildCacheKey(query)

	if h.redisClient != nil {
		if val, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			h.logger.Info("knowledge cache hit", map[string]interface{}{
				"cacheKey": cacheKey,
			})
			return val, nil
		}
	}

	body, hitCount, err := h.queryElasticsearch(ctx, query)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return "", stdErr
		}
		return "", fmt.Errorf("%w: %v", ErrKnowledgeQueryFailed, err)
	}

	if hitCount == 0 {
		h.logger.Info("no knowledge articles matched", map[string]interface{}{
			"query": query,
		})
		return NotFoundSentinel, nil
	}

	if h.redisClient != nil {
		h.redisClient.Set(ctx, cacheKey, body, h.config.CacheTTL)
	}

	h.logger.Info("knowledge articles found", map[string]interface{}{
		"query":    query,
		"hitCount": hitCount,
	})

	return body, nil
}

func (h *Handler) buildCacheKey(query string) string {
	return "kb:search:" + strings.ToLower(strings.TrimSpace(query))
}

func (h *Handler) queryElasticsearch(ctx context.Context, query string) (string, int, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": h.config.MaxResults,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{h.config.Index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, h.esClient)
	if err != nil {
		return "", 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return "", 0, apperrors.NewIndexNotFoundError(h.config.Index)
		}
		return "", 0, fmt.Errorf("search failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", 0, err
	}

	if len(r.Hits.Hits) == 0 {
		return "", 0, nil
	}

	var sb strings.Builder
	for i, hit := range r.Hits.Hits {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if hit.Source.Title != "" {
			sb.WriteString(hit.Source.Title)
			sb.WriteString("\n")
		}
		sb.WriteString(hit.Source.Content)
	}

	return sb.String(), len(r.Hits.Hits), nil
}
