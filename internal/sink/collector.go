package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadmonitor/internal/models"
)

// CollectorClient syncs leads and conversations to the dashboard backend
// and fetches the monitored-subreddit override. An empty base URL disables
// every call silently.
type CollectorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCollectorClient creates a new collector API client. baseURL may be
// empty, which turns the client into a no-op.
func NewCollectorClient(baseURL string, logger *zap.Logger) *CollectorClient {
	return &CollectorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether a backend base URL is configured.
func (c *CollectorClient) Enabled() bool {
	return c.baseURL != ""
}

func (c *CollectorClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request to backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}
	return nil
}

// SyncLead posts a lead record to the dashboard backend.
func (c *CollectorClient) SyncLead(ctx context.Context, lead *models.Lead) error {
	if !c.Enabled() {
		return nil
	}
	return c.post(ctx, "/api/collector/lead", lead)
}

// SyncConversation posts a conversation summary to the dashboard backend.
func (c *CollectorClient) SyncConversation(ctx context.Context, summary *ConversationSummary) error {
	if !c.Enabled() {
		return nil
	}
	return c.post(ctx, "/api/collector/conversation", summary)
}

// FetchMonitoredSources fetches the subreddit list override from the
// dashboard. Callers fall back to their defaults on any error or an empty
// list.
func (c *CollectorClient) FetchMonitoredSources(ctx context.Context) ([]string, error) {
	if !c.Enabled() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/settings/monitored_subreddits", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request to backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}

	var response struct {
		List []string `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode source list: %w", err)
	}
	return response.List, nil
}
