package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"helpdesk-assistant/internal/common/config"
	apperrors "helpdesk-assistant/internal/common/errors"
)

// Inferencer is the single capability the agents need from the model service.
type Inferencer interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// Client calls a hosted text-generation endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

type inferRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type inferResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
	}
}

// Infer sends a prompt and returns the generated text.
func (c *Client) Infer(ctx context.Context, prompt string) (string, error) {
	reqBody := inferRequest{
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Client.Timeout") {
			return "", apperrors.NewLLMTimeoutError()
		}
		return "", apperrors.NewLLMRequestFailedError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewLLMRequestFailedError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewLLMRequestFailedError(
			fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(body)))
	}

	var inferResp inferResponse
	if err := json.Unmarshal(body, &inferResp); err != nil {
		return "", apperrors.NewLLMRequestFailedError(err)
	}

	if inferResp.Text == "" {
		return "", apperrors.NewLLMRequestFailedError(fmt.Errorf("empty response from model service"))
	}

	return inferResp.Text, nil
}
