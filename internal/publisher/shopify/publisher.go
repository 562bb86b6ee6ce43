package shopify

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

const PlatformName = "shopify"

const defaultAPIVersion = "2024-01"

// Publisher publishes blog articles through the Shopify Admin API.
type Publisher struct {
	logger     *zap.Logger
	client     *http.Client
	apiVersion string
}

type createArticleRequest struct {
	Article article `json:"article"`
}

type article struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	BodyHTML string `json:"body_html"`
	Tags     string `json:"tags,omitempty"`
	Summary  string `json:"summary_html,omitempty"`
}

type createArticleResponse struct {
	Article struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
		BlogID int64  `json:"blog_id"`
	} `json:"article"`
}

func NewPublisher(logger *zap.Logger, apiVersion string) *Publisher {
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &Publisher{
		logger:     logger,
		client:     &http.Client{Timeout: 30 * time.Second},
		apiVersion: apiVersion,
	}
}

func (p *Publisher) Name() string {
	return PlatformName
}

func (p *Publisher) Publish(ctx context.Context, content publisher.Content, opts publisher.Options) (*publisher.Result, error) {
	shopDomain := opts.Credentials["shop_domain"]
	accessToken := opts.Credentials["access_token"]
	blogID := opts.Credentials["blog_id"]
	if shopDomain == "" || accessToken == "" || blogID == "" {
		return &publisher.Result{
			Success: false,
			Error:   "shopify credentials require shop_domain, access_token and blog_id",
		}, nil
	}

	payload := createArticleRequest{
		Article: article{
			Title:    content.Title,
			Author:   content.Author,
			BodyHTML: content.Body,
			Tags:     strings.Join(content.Tags, ", "),
			Summary:  content.Summary,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode article payload: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/blogs/%s/articles.json",
		shopDomain, p.apiVersion, blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("TIMEOUT: shopify publish timed out: %w", err)
		}
		return nil, fmt.Errorf("NETWORK_ERROR: shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("RATE_LIMIT: shopify returned 429")
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("SERVER_ERROR: shopify returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		p.logger.Warn("Shopify rejected article",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &publisher.Result{
			Success: false,
			Error:   fmt.Sprintf("shopify rejected article: status %d", resp.StatusCode),
			Details: map[string]string{"response": string(respBody)},
		}, nil
	}

	var created createArticleResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("failed to decode shopify response: %w", err)
	}

	url := fmt.Sprintf("https://%s/blogs/%d/%s",
		shopDomain, created.Article.BlogID, created.Article.Handle)

	p.logger.Info("Published article to Shopify",
		zap.String("content_id", content.ID),
		zap.Int64("article_id", created.Article.ID))

	return &publisher.Result{
		Success:           true,
		PlatformContentID: strconv.FormatInt(created.Article.ID, 10),
		URL:               url,
		PublishedAt:       time.Now(),
	}, nil
}
