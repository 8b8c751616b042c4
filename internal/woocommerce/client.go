// Package woocommerce is a read-only client for the WooCommerce wc/v3 REST
// API, the catalog provider behind the search snapshot.
package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	apiPrefix = "/wp-json/wc/v3/"

	// MaxPerPage is the largest page size wc/v3 accepts.
	MaxPerPage = 100

	maxPages = 1000
)

// ErrUnexpectedStatus is returned when the provider answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from catalog provider")

// Config holds the provider connection details.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

type page struct {
	body       []byte
	totalPages int
}

// Client calls the wc/v3 API with basic auth. Requests go through a circuit
// breaker so an unreachable provider fails fast during a rebuild.
type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[page]
	logger     *zap.Logger
}

// NewClient creates a provider client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[page](gobreaker.Settings{
		Name:        "woocommerce",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		key:        cfg.ConsumerKey,
		secret:     cfg.ConsumerSecret,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// ListProducts fetches one page of products. It also returns the page count
// reported in X-WP-TotalPages (0 when the header is missing).
func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(params.Page, 1)))
	q.Set("per_page", strconv.Itoa(perPage(params.PerPage)))
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.StockStatus != "" {
		q.Set("stock_status", params.StockStatus)
	}

	p, err := c.get(ctx, "products", q)
	if err != nil {
		return nil, 0, err
	}
	var products []Product
	if err := json.Unmarshal(p.body, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products page %d: %w", params.Page, err)
	}
	return products, p.totalPages, nil
}

// AllProducts walks every page of the products listing, stopping at the first
// empty page or at the reported page count.
func (c *Client) AllProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	var all []Product
	for pageNo := 1; pageNo <= maxPages; pageNo++ {
		params.Page = pageNo
		products, totalPages, err := c.ListProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, products...)
		c.logger.Debug("Fetched products page",
			zap.Int("page", pageNo),
			zap.Int("count", len(products)),
			zap.Int("total_pages", totalPages),
		)
		if len(products) == 0 || (totalPages > 0 && pageNo >= totalPages) {
			break
		}
	}
	return all, nil
}

// ListCategories fetches one page of product categories.
func (c *Client) ListCategories(ctx context.Context, pageNo, size int) ([]Category, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(pageNo, 1)))
	q.Set("per_page", strconv.Itoa(perPage(size)))

	p, err := c.get(ctx, "products/categories", q)
	if err != nil {
		return nil, 0, err
	}
	var categories []Category
	if err := json.Unmarshal(p.body, &categories); err != nil {
		return nil, 0, fmt.Errorf("decode categories page %d: %w", pageNo, err)
	}
	return categories, p.totalPages, nil
}

// AllCategories walks every page of the category listing.
func (c *Client) AllCategories(ctx context.Context) ([]Category, error) {
	all := []Category{}
	for pageNo := 1; pageNo <= maxPages; pageNo++ {
		categories, totalPages, err := c.ListCategories(ctx, pageNo, MaxPerPage)
		if err != nil {
			return nil, err
		}
		all = append(all, categories...)
		if len(categories) == 0 || (totalPages > 0 && pageNo >= totalPages) {
			break
		}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, resource string, query url.Values) (page, error) {
	u := c.baseURL + apiPrefix + resource + "?" + query.Encode()

	return c.breaker.Execute(func() (page, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return page{}, fmt.Errorf("create request: %w", err)
		}
		if c.key != "" || c.secret != "" {
			req.SetBasicAuth(c.key, c.secret)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Catalog provider request failed", zap.String("resource", resource), zap.Error(err))
			return page{}, fmt.Errorf("get %s: %w", resource, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return page{}, fmt.Errorf("read %s response: %w", resource, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return page{}, fmt.Errorf("%w: %s returned %d: %s", ErrUnexpectedStatus, resource, resp.StatusCode, excerpt(body))
		}

		total, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
		return page{body: body, totalPages: total}, nil
	})
}

func perPage(n int) int {
	if n <= 0 || n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

func excerpt(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
