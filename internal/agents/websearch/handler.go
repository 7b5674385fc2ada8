package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "helpdesk-assistant/internal/common/errors"
)

var (
	ErrWebSearchFailed = errors.New("WEB_LOOKUP_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"agent": "web-search",
		}),
	}
}

// Search queries the web search API and returns a readable summary of the
// results. An empty result set comes back as free text, not an error.
func (h *Handler) Search(ctx context.Context, query string) (string, error) {
	output, err := h.execute(ctx, query)
	if err != nil {
		return "", err
	}
	return output.Summary, nil
}

func (h *Handler) execute(ctx context.Context, query string) (*Output, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.buildSearchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebSearchFailed, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, apperrors.NewSearchTimeoutError("web search")
		}
		return nil, fmt.Errorf("%w: %v", ErrWebSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search API returned %d", ErrWebSearchFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Items []struct {
			Link    string `json:"link"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebSearchFailed, err)
	}

	seen := make(map[string]bool)
	var sources []Source
	for _, item := range apiResponse.Items {
		if seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		sources = append(sources, Source{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}

	summary := h.generateSummary(query, sources)

	h.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"resultCount": len(sources),
	})

	return &Output{Sources: sources, Summary: summary}, nil
}

func (h *Handler) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(h.config.SearchAPIBaseURL)
	params := url.Values{}
	params.Add("key", h.config.SearchAPIKey)
	params.Add("cx", h.config.SearchEngineID)
	params.Add("q", query)
	params.Add("num", fmt.Sprintf("%d", h.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (h *Handler) generateSummary(query string, sources []Source) string {
	if len(sources) == 0 {
		return fmt.Sprintf("No web results found for %q.", query)
	}

	var sb strings.Builder
	for i, source := range sources {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("- %s: %s (%s)", source.Title, source.Snippet, source.URL))
	}
	return sb.String()
}
