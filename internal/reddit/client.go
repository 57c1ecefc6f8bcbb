// Package reddit is a minimal Reddit API client covering the calls the
// engine needs: subreddit listings, the unread inbox, private-message
// compose and mark-read.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"leadmonitor/internal/models"
)

const (
	tokenURL = "https://www.reddit.com/api/v1/access_token"
	apiBase  = "https://oauth.reddit.com"
)

// ErrNoCredentials is returned by NewClient when the Reddit OAuth
// credentials are not configured.
var ErrNoCredentials = errors.New("reddit credentials not configured")

// Client talks to the Reddit API using an OAuth refresh token.
type Client struct {
	clientID     string
	clientSecret string
	refreshToken string
	userAgent    string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	// Overridable in tests.
	tokenURL string
	apiBase  string
}

// NewClient creates a Reddit API client. All four credential fields are
// required.
func NewClient(clientID, clientSecret, refreshToken, username string, logger *zap.Logger) (*Client, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, ErrNoCredentials
	}
	if username == "" {
		username = "unknown_user"
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		userAgent:    fmt.Sprintf("web:leadmonitor:v1.0.0 (by /u/%s)", username),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:   logger,
		tokenURL: tokenURL,
		apiBase:  apiBase,
	}, nil
}

// token returns a valid access token, refreshing it when missing or close
// to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status: %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token endpoint returned empty access token")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	c.logger.Debug("Refreshed Reddit access token", zap.Int64("expires_in", tokenResp.ExpiresIn))
	return c.accessToken, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call reddit api: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("reddit api returned status: %d", resp.StatusCode)
	}
	return resp, nil
}

// thing is the generic envelope Reddit wraps every object in.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type postData struct {
	Name       string  `json:"name"` // fullname, e.g. t3_abc123
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
}

// ListNewPosts fetches the newest posts of a subreddit, up to limit.
func (c *Client) ListNewPosts(ctx context.Context, subreddit string, limit int) ([]models.Post, error) {
	path := fmt.Sprintf("/r/%s/new?limit=%s", url.PathEscape(subreddit), strconv.Itoa(limit))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list listing
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]models.Post, 0, len(list.Data.Children))
	for _, child := range list.Data.Children {
		var data postData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			c.logger.Warn("Skipping undecodable post", zap.Error(err))
			continue
		}
		posts = append(posts, models.Post{
			ID:        data.Name,
			Title:     data.Title,
			Body:      data.Selftext,
			Subreddit: data.Subreddit,
			Author:    data.Author,
			URL:       data.URL,
			CreatedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}

type messageData struct {
	Name      string `json:"name"` // fullname, e.g. t4_abc123
	Body      string `json:"body"`
	Author    string `json:"author"`
	Subreddit string `json:"subreddit"`
}

// ListUnreadMessages fetches the unread inbox. The sender variant is
// resolved here: messages authored by a user carry the username, messages
// from a subreddit (modmail and the like) carry the subreddit name.
func (c *Client) ListUnreadMessages(ctx context.Context) ([]models.InboundMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, "/message/unread?limit=25", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list listing
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode inbox: %w", err)
	}

	messages := make([]models.InboundMessage, 0, len(list.Data.Children))
	for _, child := range list.Data.Children {
		var data messageData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			c.logger.Warn("Skipping undecodable message", zap.Error(err))
			continue
		}
		from := models.Sender{Kind: models.SenderUser, Name: data.Author}
		if data.Author == "" {
			from = models.Sender{Kind: models.SenderSubreddit, Name: data.Subreddit}
		}
		messages = append(messages, models.InboundMessage{
			ID:   data.Name,
			From: from,
			Body: data.Body,
		})
	}
	return messages, nil
}

// SendDirectMessage sends a private message.
func (c *Client) SendDirectMessage(ctx context.Context, to, subject, body string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", body)

	resp, err := c.do(ctx, http.MethodPost, "/api/compose", form)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// MarkRead marks an inbox message as read by its fullname.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	form := url.Values{}
	form.Set("id", messageID)

	resp, err := c.do(ctx, http.MethodPost, "/api/read_message", form)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
