package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
)

const PlatformName = "wordpress"

// Publisher publishes posts through the WordPress REST API using an
// application password.
type Publisher struct {
	logger *zap.Logger
	client *http.Client
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	Status  string `json:"status"`
}

type createPostResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
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
	siteURL := strings.TrimSuffix(opts.Credentials["site_url"], "/")
	username := opts.Credentials["username"]
	appPassword := opts.Credentials["app_password"]
	if siteURL == "" || username == "" || appPassword == "" {
		return &publisher.Result{
			Success: false,
			Error:   "wordpress credentials require site_url, username and app_password",
		}, nil
	}

	status := opts.Settings["post_status"]
	if status == "" {
		status = "publish"
	}

	payload := createPostRequest{
		Title:   content.Title,
		Content: content.Body,
		Excerpt: content.Summary,
		Status:  status,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post payload: %w", err)
	}

	endpoint := siteURL + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(username, appPassword)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("TIMEOUT: wordpress publish timed out: %w", err)
		}
		return nil, fmt.Errorf("NETWORK_ERROR: wordpress request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("RATE_LIMIT: wordpress returned 429")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("SERVER_ERROR: wordpress returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		// Client errors are reported back rather than retried.
		p.logger.Warn("WordPress rejected post",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &publisher.Result{
			Success: false,
			Error:   fmt.Sprintf("wordpress rejected post: status %d", resp.StatusCode),
			Details: map[string]string{"response": string(respBody)},
		}, nil
	}

	var created createPostResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("failed to decode wordpress response: %w", err)
	}

	p.logger.Info("Published post to WordPress",
		zap.String("content_id", content.ID),
		zap.Int("post_id", created.ID),
		zap.String("url", created.Link))

	return &publisher.Result{
		Success:           true,
		PlatformContentID: strconv.Itoa(created.ID),
		URL:               created.Link,
		PublishedAt:       time.Now(),
	}, nil
}
