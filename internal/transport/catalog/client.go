// Package catalog is the HTTP client for the ONDC buyer backend catalog API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

const (
	// DefaultUserID is the backend user the search endpoint is called as.
	DefaultUserID = "searchUser"
	// DefaultTimeout bounds a single catalog request.
	DefaultTimeout = 30 * time.Second

	apiKeyHeader    = "wil-api-key"
	clientAPIsPath  = "/clientApis"
	maxResponseSize = 16 << 20
	categoriesLimit = 100
)

// Config holds the catalog API settings.
type Config struct {
	BaseURL string
	APIKey  string
	UserID  string
	Timeout time.Duration
	// RateLimit is requests per second; <= 0 disables limiting.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the catalog search and category endpoints.
type Client struct {
	base    string
	apiKey  string
	userID  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a catalog client. A base URL that already ends in /clientApis is used as-is.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("catalog base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("catalog base url: %w", err)
	}
	if !strings.HasSuffix(base, clientAPIsPath) {
		base += clientAPIsPath
	}

	userID := cfg.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = max(1, int(cfg.RateLimit))
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		userID:  userID,
		http:    httpClient,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Search runs a keyword search. Location is sent for geofencing only.
// Items that fail to decode are skipped and logged; an unknown envelope is ErrMalformedPayload.
func (c *Client) Search(ctx context.Context, q request.Keyword) ([]product.CatalogItem, error) {
	params := url.Values{}
	params.Set("name", q.Text)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("latitude", strconv.FormatFloat(q.Location.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Location.Longitude, 'f', -1, 64))
	if q.Location.CityCode != "" {
		params.Set("city", q.Location.CityCode)
	}

	body, err := c.get(ctx, "search", "/v2/search/"+url.PathEscape(c.userID), params)
	if err != nil {
		return nil, err
	}

	items, skipped, err := ParseItems(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("Skipped undecodable catalog items",
			zap.String("query", q.Text),
			zap.Int("skipped", skipped),
			zap.Int("decoded", len(items)),
		)
	}
	return items, nil
}

// Categories lists catalog categories.
func (c *Client) Categories(ctx context.Context) ([]category.Category, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(categoriesLimit))
	params.Set("page", "1")

	body, err := c.get(ctx, "categories", "/categories", params)
	if err != nil {
		return nil, err
	}
	return ParseCategories(body)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}

	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.CatalogRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s request: %w: %w", endpoint, domain.ErrCatalogUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	duration := time.Since(start)
	metrics.CatalogRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(duration.Seconds())
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w: %w", endpoint, domain.ErrCatalogUnavailable, err)
	}

	c.logger.Debug("Catalog request completed",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", endpoint, domain.NewUpstreamStatus(resp.StatusCode))
	}
	return body, nil
}
