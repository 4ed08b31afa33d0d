package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDescriptionTimeout bounds best-effort detail page fetches.
const DefaultDescriptionTimeout = 5 * time.Second

// ClientConfig configures a Client.
type ClientConfig struct {
	UserAgent          string
	Headers            map[string]string
	PageTimeout        time.Duration
	DescriptionTimeout time.Duration
	Logger             *slog.Logger
}

// Client fetches listing pages, detail pages and JSON documents with fixed outbound headers.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	userAgent          string
	headers            map[string]string
	pageTimeout        time.Duration
	descriptionTimeout time.Duration
	logger             *slog.Logger
}

// NewClient creates a Client, filling zero values with defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultTimeout
	}
	if cfg.DescriptionTimeout <= 0 {
		cfg.DescriptionTimeout = DefaultDescriptionTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		userAgent:          cfg.UserAgent,
		headers:            headers,
		pageTimeout:        cfg.PageTimeout,
		descriptionTimeout: cfg.DescriptionTimeout,
		logger:             cfg.Logger,
	}
}

func (c *Client) options(timeout time.Duration, extra map[string]string, query url.Values) *Options {
	headers := make(map[string]string, len(c.headers)+len(extra))
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return &Options{
		Timeout:   timeout,
		UserAgent: c.userAgent,
		Headers:   headers,
		Query:     query,
	}
}

// Page fetches a listing page with the long timeout and parses it.
func (c *Client) Page(ctx context.Context, pageURL string) (*goquery.Document, error) {
	result, err := URL(ctx, pageURL, c.options(c.pageTimeout, nil, nil))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched page", "url", pageURL, "bytes", len(result.Body))
	return ParseDocument(result.Body, pageURL)
}

// Describe fetches a detail page with the short timeout and extracts its description text.
func (c *Client) Describe(ctx context.Context, detailURL string) (string, error) {
	result, err := URL(ctx, detailURL, c.options(c.descriptionTimeout, nil, nil))
	if err != nil {
		return "", err
	}
	return ExtractDescription(result.Body, detailURL)
}

// JSON fetches a JSON document and decodes it into out.
func (c *Client) JSON(ctx context.Context, apiURL string, headers map[string]string, query url.Values, timeout time.Duration, out any) error {
	if timeout <= 0 {
		timeout = c.pageTimeout
	}
	extra := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		extra[k] = v
	}
	result, err := URL(ctx, apiURL, c.options(timeout, extra, query))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result.Body, out); err != nil {
		return &Error{
			URL:        apiURL,
			Message:    "invalid JSON response",
			StatusCode: result.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// ParseDocument parses HTML and records pageURL as the document URL for link resolution.
func ParseDocument(body []byte, pageURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	if u, err := url.Parse(pageURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}
