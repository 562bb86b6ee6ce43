package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
)

const PlatformName = "hubspot"

const apiBase = "https://api.hubapi.com"

// Publisher publishes blog posts through the HubSpot CMS API using a
// private app access token.
type Publisher struct {
	logger *zap.Logger
	client *http.Client
}

type createBlogPostRequest struct {
	Name           string `json:"name"`
	PostBody       string `json:"postBody"`
	PostSummary    string `json:"postSummary,omitempty"`
	ContentGroupID string `json:"contentGroupId"`
	State          string `json:"state"`
	AuthorName     string `json:"authorName,omitempty"`
}

type createBlogPostResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Publisher) Name() string {
	return PlatformName
}

func (p *Publisher) Publish(ctx context.Context, content publisher.Content, opts publisher.Options) (*publisher.Result, error) {
	accessToken := opts.Credentials["access_token"]
	contentGroupID := opts.Credentials["content_group_id"]
	if accessToken == "" || contentGroupID == "" {
		return &publisher.Result{
			Success: false,
			Error:   "hubspot credentials require access_token and content_group_id",
		}, nil
	}

	state := opts.Settings["state"]
	if state == "" {
		state = "PUBLISHED"
	}

	payload := createBlogPostRequest{
		Name:           content.Title,
		PostBody:       content.Body,
		PostSummary:    content.Summary,
		ContentGroupID: contentGroupID,
		State:          state,
		AuthorName:     content.Author,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blog post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/cms/v3/blogs/posts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("TIMEOUT: hubspot publish timed out: %w", err)
		}
		return nil, fmt.Errorf("NETWORK_ERROR: hubspot request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("RATE_LIMIT: hubspot returned 429")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("SERVER_ERROR: hubspot returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		p.logger.Warn("HubSpot rejected blog post",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &publisher.Result{
			Success: false,
			Error:   fmt.Sprintf("hubspot rejected blog post: status %d", resp.StatusCode),
			Details: map[string]string{"response": string(respBody)},
		}, nil
	}

	var created createBlogPostResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("failed to decode hubspot response: %w", err)
	}

	p.logger.Info("Published blog post to HubSpot",
		zap.String("content_id", content.ID),
		zap.String("post_id", created.ID))

	return &publisher.Result{
		Success:           true,
		PlatformContentID: created.ID,
		URL:               created.URL,
		PublishedAt:       time.Now(),
	}, nil
}
