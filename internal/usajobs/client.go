// Package usajobs is a client for the USAJobs search API.
package usajobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jonathan/job-scraper/internal/schemas"
	rootschemas "github.com/jonathan/job-scraper/schemas"
)

// DefaultBaseURL is the public search endpoint.
const DefaultBaseURL = "https://data.usajobs.gov/api/search"

// Defaults for paging.
const (
	DefaultResultsPerPage = 100
	DefaultMaxPages       = 2
	DefaultTimeout        = 15 * time.Second
)

// SourceDomain is recorded on every record produced from this API.
const SourceDomain = "usajobs.gov"

// JSONFetcher performs GET requests that return JSON. *fetch.Client satisfies it.
type JSONFetcher interface {
	JSON(ctx context.Context, apiURL string, headers map[string]string, query url.Values, timeout time.Duration, out any) error
}

// Config configures a Client. APIKey and UserEmail are issued by USAJobs and must come from
// configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	UserEmail      string
	ResultsPerPage int
	MaxPages       int
	Timeout        time.Duration
}

// Page is one decoded page of search results.
type Page struct {
	Number int
	// Count is the number of items the API reports on this page.
	Count int
	// Total is the number of items matching the query across all pages.
	Total int
	Items []Item
	// Invalid holds a *ParseError for every item that was skipped.
	Invalid []error
}

// Client queries the search API. It is safe for concurrent use.
type Client struct {
	cfg     Config
	host    string
	fetcher JSONFetcher
	items   *schemas.Validator
	logger  *slog.Logger
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config, fetcher JSONFetcher, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Field: "api_key", Message: "is required"}
	}
	if cfg.UserEmail == "" {
		return nil, &ConfigError{Field: "user_email", Message: "is required"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, &ConfigError{Field: "base_url", Message: "must be an absolute URL"}
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = DefaultResultsPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		cfg:     cfg,
		host:    base.Host,
		fetcher: fetcher,
		items:   schemas.MustCompile(rootschemas.USAJobsItem, rootschemas.MustRead(rootschemas.USAJobsItem)),
		logger:  logger,
	}, nil
}

// MaxPages returns the configured page limit per keyword.
func (c *Client) MaxPages() int {
	return c.cfg.MaxPages
}

// Search fetches one page of results for keyword. Pages are numbered from 1.
func (c *Client) Search(ctx context.Context, keyword string, page int) (*Page, error) {
	headers := map[string]string{
		"Host":              c.host,
		"User-Agent":        c.cfg.UserEmail,
		"Authorization-Key": c.cfg.APIKey,
	}
	query := url.Values{
		"Keyword":        {keyword},
		"ResultsPerPage": {strconv.Itoa(c.cfg.ResultsPerPage)},
		"Page":           {strconv.Itoa(page)},
		"Fields":         {"Full"},
	}

	var resp SearchResponse
	if err := c.fetcher.JSON(ctx, c.cfg.BaseURL, headers, query, c.cfg.Timeout, &resp); err != nil {
		return nil, err
	}

	result := &Page{
		Number: page,
		Count:  resp.SearchResult.SearchResultCount,
		Total:  resp.SearchResult.SearchResultCountAll,
	}
	for i, raw := range resp.SearchResult.SearchResultItems {
		item, err := c.decodeItem(i, raw)
		if err != nil {
			c.logger.Warn("skipping malformed search result", "keyword", keyword, "page", page, "error", err)
			result.Invalid = append(result.Invalid, err)
			continue
		}
		result.Items = append(result.Items, *item)
	}

	c.logger.Debug("fetched search page",
		"keyword", keyword, "page", page, "count", result.Count, "total", result.Total, "items", len(result.Items))
	return result, nil
}

func (c *Client) decodeItem(index int, raw json.RawMessage) (*Item, error) {
	if err := c.items.Validate(raw); err != nil {
		return nil, &ParseError{Index: index, Message: "item does not match schema", Cause: err}
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, &ParseError{Index: index, Message: "failed to decode item", Cause: err}
	}
	return &item, nil
}
