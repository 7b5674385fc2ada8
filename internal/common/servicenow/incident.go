package servicenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"helpdesk-assistant/internal/common/config"
)

// Client talks to the ServiceNow incident table API with basic auth.
type Client struct {
	username   string
	password   string
	instance   string
	baseURL    string
	httpClient *http.Client
}

// IncidentPayload is the request body for incident creation. Optional fields
// are omitted when empty.
type IncidentPayload struct {
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Urgency          string `json:"urgency"`
	Impact           string `json:"impact"`
	CallerID         string `json:"caller_id,omitempty"`
	AssignmentGroup  string `json:"assignment_group,omitempty"`
	Category         string `json:"category,omitempty"`
}

// IncidentRecord is the relevant slice of the API's result object.
type IncidentRecord struct {
	Number string `json:"number"`
	SysID  string `json:"sys_id"`
}

type createIncidentResponse struct {
	Result IncidentRecord `json:"result"`
}

// StatusError captures a non-2xx response so callers can classify retriability.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("servicenow status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status is expected to resolve on retry.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func NewClient(cfg config.ServiceNowConfig) *Client {
	return &Client{
		username: cfg.Username,
		password: cfg.Password,
		instance: cfg.Instance,
		baseURL:  cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
	}
}

// NewClientWithBaseURL builds a client pointed at an explicit endpoint, used
// by tests against a local server.
func NewClientWithBaseURL(cfg config.ServiceNowConfig, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = baseURL
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = 15 * time.Second
	}
	return c
}

// CreateIncident POSTs a single incident. A non-2xx response is returned as a
// *StatusError; transport failures come back as-is.
func (c *Client) CreateIncident(ctx context.Context, payload *IncidentPayload) (*IncidentRecord, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal incident: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var createResp createIncidentResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if createResp.Result.SysID == "" {
		return nil, fmt.Errorf("no result in response")
	}

	return &createResp.Result, nil
}

// IncidentURL builds the deterministic deep link for a created incident.
func (c *Client) IncidentURL(sysID string) string {
	return fmt.Sprintf("https://%s.service-now.com/nav_to.do?uri=incident.do?sys_id=%s", c.instance, sysID)
}
